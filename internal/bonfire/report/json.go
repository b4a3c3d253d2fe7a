package report

import (
	"fmt"
	"io"

	"github.com/tidwall/sjson"

	"github.com/shiroemons/go-bonfire/internal/bonfire/models"
)

// setter は sjson.SetBytes を続けて呼び出し、最初のエラーを保持します
type setter struct {
	data []byte
	err  error
}

func (s *setter) set(path string, value any) {
	if s.err != nil {
		return
	}
	s.data, s.err = sjson.SetBytes(s.data, path, value)
}

func (s *setter) setRaw(path, raw string) {
	if s.err != nil {
		return
	}
	s.data, s.err = sjson.SetRawBytes(s.data, path, []byte(raw))
}

// ListJSON はスロット一覧をJSONに変換します
func ListJSON(info models.SaveInfo) ([]byte, error) {
	s := &setter{data: []byte(`{}`)}
	s.set("path", info.Path)
	s.set("title", info.Title)
	s.set("display_name", info.DisplayName)
	s.set("currency_label", CurrencyLabel(info.Title))
	s.set("size", info.Size)
	s.set("records", info.Records)
	s.setRaw("slots", "[]")
	for i, slot := range info.Slots {
		prefix := fmt.Sprintf("slots.%d.", i)
		s.set(prefix+"slot", slot.Slot)
		s.set(prefix+"name", slot.Name)
		s.set(prefix+"record", slot.Record)
		s.set(prefix+"currency", slot.Currency)
		if slot.Err != nil {
			s.set(prefix+"error", slot.Err.Error())
		}
	}
	return s.data, s.err
}

// PatchJSON は書き換え結果をJSONに変換します
func PatchJSON(sum models.PatchSummary) ([]byte, error) {
	s := &setter{data: []byte(`{}`)}
	s.set("input", sum.InputPath)
	s.set("output", sum.OutputPath)
	if sum.BackupPath != "" {
		s.set("backup", sum.BackupPath)
	}
	s.set("title", sum.Title)
	s.set("target", sum.Target)
	s.setRaw("changes", "[]")
	for i, c := range sum.Changes {
		prefix := fmt.Sprintf("changes.%d.", i)
		s.set(prefix+"slot", c.Slot)
		s.set(prefix+"name", c.Name)
		s.set(prefix+"record", c.Record)
		s.set(prefix+"before", c.Before)
		s.set(prefix+"after", c.After)
	}
	return s.data, s.err
}

// WriteJSON は JSON の末尾に改行を付けて出力します
func WriteJSON(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
