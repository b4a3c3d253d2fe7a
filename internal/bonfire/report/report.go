// Package report はスロット一覧と書き換え結果を整形して出力します
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shiroemons/go-bonfire/internal/bonfire/models"
	"github.com/shiroemons/go-bonfire/pkg/sl2"
)

// CurrencyLabel はタイトルの通貨の呼び名を返します
func CurrencyLabel(title string) string {
	if title == sl2.ProfileOf(sl2.ER).Name {
		return "ルーン"
	}
	return "ソウル"
}

// NewSaveInfo は復号済みのセーブファイルから一覧表示用の情報を作ります。
// 通貨の値が読み取れないスロットは Currency が nil になり、Err に理由が入ります。
func NewSaveInfo(path string, size int, save *sl2.Save) models.SaveInfo {
	p := save.Profile()
	info := models.SaveInfo{
		Path:        path,
		Title:       p.Name,
		DisplayName: p.DisplayName,
		Size:        size,
		Records:     len(save.Container().Records),
	}

	occ := save.Slots()
	for _, slot := range occ.Sorted() {
		currency, err := save.Currency(slot)
		info.Slots = append(info.Slots, models.SlotInfo{
			Slot:     slot,
			Name:     occ[slot],
			Record:   slot,
			Currency: currency,
			Err:      err,
		})
	}
	return info
}

// NewPatchSummary は書き換え結果を出力用の形に変換します
func NewPatchSummary(input, output, backup string, p sl2.Profile, target uint32, res *sl2.PatchResult) models.PatchSummary {
	sum := models.PatchSummary{
		InputPath:  input,
		OutputPath: output,
		BackupPath: backup,
		Title:      p.Name,
		Target:     target,
	}
	for _, c := range res.Slots {
		sum.Changes = append(sum.Changes, models.SlotChange{
			Slot:   c.Slot,
			Name:   c.Name,
			Record: c.Record,
			Before: c.Before,
			After:  c.After,
		})
	}
	return sum
}

// formatValues は通貨の値を "/" 区切りで整形します
func formatValues(values []uint32) string {
	if values == nil {
		return "?"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, "/")
}

// WriteList はスロット一覧をテキストで出力します
func WriteList(w io.Writer, info models.SaveInfo) error {
	label := CurrencyLabel(info.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "タイトル: %s (%s)\n", info.DisplayName, info.Title)
	fmt.Fprintf(&b, "ファイル: %s (%d バイト, %d レコード)\n", info.Path, info.Size, info.Records)

	if len(info.Slots) == 0 {
		b.WriteString("使用中のスロットはありません\n")
	}
	for _, s := range info.Slots {
		fmt.Fprintf(&b, "スロット #%d 使用中 キャラクター名: [%s] %s: %s", s.Slot, s.Name, label, formatValues(s.Currency))
		if s.Err != nil {
			fmt.Fprintf(&b, " (読み取り失敗: %v)", s.Err)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WritePatch は書き換え結果をテキストで出力します
func WritePatch(w io.Writer, sum models.PatchSummary) error {
	label := CurrencyLabel(sum.Title)

	var b strings.Builder
	for _, c := range sum.Changes {
		fmt.Fprintf(&b, "スロット #%d [%s] の%sを設定しました: %s -> %s\n", c.Slot, c.Name, label, formatValues(c.Before), formatValues(c.After))
	}
	if sum.BackupPath != "" {
		fmt.Fprintf(&b, "バックアップ: %s\n", sum.BackupPath)
	}
	fmt.Fprintf(&b, "完了: %s に書き込みました\n", sum.OutputPath)

	_, err := io.WriteString(w, b.String())
	return err
}
