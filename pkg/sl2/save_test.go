package sl2_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"github.com/shiroemons/go-bonfire/pkg/bnd4"
	"github.com/shiroemons/go-bonfire/pkg/bnd4/bnd4test"
	"github.com/shiroemons/go-bonfire/pkg/crypto"
	"github.com/shiroemons/go-bonfire/pkg/sl2"
	"github.com/shiroemons/go-bonfire/pkg/sl2/sl2test"
)

func TestSave_EndToEnd(t *testing.T) {
	p := sl2.ProfileOf(sl2.DSR)
	data := sl2test.Build(p, map[int]sl2test.Character{
		3: {Name: "Testerino", Currency: 12345},
	})
	orig := bytes.Clone(data)

	s, err := sl2.Open(data, p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := s.Slots(); len(got) != 1 || got[3] != "Testerino" {
		t.Fatalf("Slots() = %v", got)
	}

	res, err := s.Patch(999_999_999, sl2.AllSlots)
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if !bytes.Equal(data, orig) {
		t.Error("Patch() が入力を書き換えました")
	}
	if len(res.Data) != len(data) {
		t.Fatalf("len(Data) = %d, want %d", len(res.Data), len(data))
	}

	if len(res.Slots) != 1 {
		t.Fatalf("len(Slots) = %d, want 1", len(res.Slots))
	}
	change := res.Slots[0]
	if change.Slot != 3 || change.Name != "Testerino" || change.Record != 3 {
		t.Errorf("SlotChange = %+v", change)
	}
	if !slices.Equal(change.Before, []uint32{12345, 12345}) {
		t.Errorf("Before = %v", change.Before)
	}
	if !slices.Equal(change.After, []uint32{999_999_999, 999_999_999}) {
		t.Errorf("After = %v", change.After)
	}

	// レコード #3 のデータ領域以外は変化しない
	rec := s.Container().Records[3]
	if !bytes.Equal(res.Data[:rec.DataOffset], data[:rec.DataOffset]) {
		t.Error("レコード #3 より前のバイトが変化しています")
	}
	if !bytes.Equal(res.Data[rec.End():], data[rec.End():]) {
		t.Error("レコード #3 より後ろのバイトが変化しています")
	}

	reopened, err := sl2.Open(res.Data, p)
	if err != nil {
		t.Fatalf("Open(patched) error = %v", err)
	}
	got, err := reopened.Currency(3)
	if err != nil {
		t.Fatalf("Currency(3) error = %v", err)
	}
	if !slices.Equal(got, []uint32{999_999_999, 999_999_999}) {
		t.Errorf("Currency(3) = %v", got)
	}

	c, err := bnd4.Parse(res.Data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	sum := crypto.Checksum(c.Payload(c.Records[3]))
	if !bytes.Equal(c.Checksum(c.Records[3]), sum[:]) {
		t.Error("チェックサムが再計算されていません")
	}
}

func TestSave_SlotNotOccupied(t *testing.T) {
	p := sl2.ProfileOf(sl2.DSR)
	data := sl2test.Build(p, map[int]sl2test.Character{
		3: {Name: "Testerino", Currency: 12345},
	})

	s, err := sl2.Open(data, p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	res, err := s.Patch(999_999_999, sl2.Slot(7))
	if !errors.Is(err, sl2.ErrSlotNotOccupied) {
		t.Fatalf("Patch(7) error = %v, want %v", err, sl2.ErrSlotNotOccupied)
	}
	if res != nil {
		t.Error("エラー時に結果が返されました")
	}

	if _, err := s.Currency(7); !errors.Is(err, sl2.ErrSlotNotOccupied) {
		t.Errorf("Currency(7) error = %v, want %v", err, sl2.ErrSlotNotOccupied)
	}
}

func TestSave_RejectedTargets(t *testing.T) {
	p := sl2.ProfileOf(sl2.DSR)
	s, err := sl2.Open(sl2test.Build(p, map[int]sl2test.Character{3: {Name: "Testerino", Currency: 12345}}), p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	for _, target := range []uint32{0, 1_000_000_000} {
		res, err := s.Patch(target, sl2.AllSlots)
		if !errors.Is(err, sl2.ErrValueOutOfRange) {
			t.Errorf("Patch(%d) error = %v, want %v", target, err, sl2.ErrValueOutOfRange)
		}
		if res != nil {
			t.Errorf("Patch(%d) がエラー時に結果を返しました", target)
		}
	}
}

func TestSave_PatchAllTitles(t *testing.T) {
	for _, title := range sl2.Titles() {
		t.Run(title.String(), func(t *testing.T) {
			p := sl2.ProfileOf(title)
			chars := sampleChars(p)
			data := sl2test.Build(p, chars)

			s, err := sl2.Open(data, p)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			res, err := s.Patch(50_000, sl2.AllSlots)
			if err != nil {
				t.Fatalf("Patch() error = %v", err)
			}
			if len(res.Slots) != len(chars) {
				t.Fatalf("len(Slots) = %d, want %d", len(res.Slots), len(chars))
			}

			reopened, err := sl2.Open(res.Data, p)
			if err != nil {
				t.Fatalf("Open(patched) error = %v", err)
			}
			for slot, ch := range chars {
				got, err := reopened.Currency(slot)
				if err != nil {
					t.Fatalf("Currency(%d) error = %v", slot, err)
				}
				want := max(ch.Currency, 50_000)
				for i, v := range got {
					if v != want {
						t.Errorf("スロット #%d field[%d] = %d, want %d", slot, i, v, want)
					}
				}
			}
		})
	}
}

func TestSave_PatchSingleSlot(t *testing.T) {
	p := sl2.ProfileOf(sl2.DS2)
	data := sl2test.Build(p, map[int]sl2test.Character{
		1: {Name: "Lucatiel", Currency: 10},
		4: {Name: "Benhart", Currency: 20},
	})

	s, err := sl2.Open(data, p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	res, err := s.Patch(1000, sl2.Slot(4))
	if err != nil {
		t.Fatalf("Patch(4) error = %v", err)
	}
	if len(res.Slots) != 1 || res.Slots[0].Slot != 4 || res.Slots[0].Record != 4 {
		t.Fatalf("Slots = %+v", res.Slots)
	}

	reopened, err := sl2.Open(res.Data, p)
	if err != nil {
		t.Fatalf("Open(patched) error = %v", err)
	}
	if got, _ := reopened.Currency(1); !slices.Equal(got, []uint32{10, 10, 10}) {
		t.Errorf("Currency(1) = %v, want 変化なし", got)
	}
	if got, _ := reopened.Currency(4); !slices.Equal(got, []uint32{1000, 1000, 1000}) {
		t.Errorf("Currency(4) = %v", got)
	}
}

func TestSave_Idempotent(t *testing.T) {
	p := sl2.ProfileOf(sl2.DS3)
	data := sl2test.Build(p, sampleChars(p))

	s, err := sl2.Open(data, p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	first, err := s.Patch(123_456, sl2.AllSlots)
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}

	s2, err := sl2.Open(first.Data, p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	second, err := s2.Patch(123_456, sl2.AllSlots)
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("同じ値で2回適用すると結果が変化しました")
	}
}

func TestOpen_Workers(t *testing.T) {
	p := sl2.ProfileOf(sl2.DSR)
	data := sl2test.Build(p, sampleChars(p))

	seq, err := sl2.Open(data, p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	par, err := sl2.Open(data, p, sl2.WithWorkers(4))
	if err != nil {
		t.Fatalf("Open(WithWorkers) error = %v", err)
	}

	if len(seq.Plaintexts()) != len(par.Plaintexts()) {
		t.Fatalf("レコード数が一致しません")
	}
	for i := range seq.Plaintexts() {
		if !bytes.Equal(seq.Plaintexts()[i].Data, par.Plaintexts()[i].Data) {
			t.Errorf("レコード #%d の平文が一致しません", i)
		}
	}
}

func TestOpen_Errors(t *testing.T) {
	p := sl2.ProfileOf(sl2.DSR)

	tests := []struct {
		name    string
		data    []byte
		workers int
		wantErr error
	}{
		{
			name:    "BND4ではない",
			data:    []byte("not a save file at all"),
			wantErr: bnd4.ErrBadMagic,
		},
		{
			name: "スロット一覧のレコードがない",
			data: bnd4test.Build(
				bnd4test.Entry{Name: bnd4test.RecordName(0), Payload: bnd4test.Seal(p.Key, bnd4test.IV(1), []byte("x"))},
			),
			wantErr: bnd4.ErrTruncated,
		},
		{
			name:    "並列復号中のエラー",
			data:    withBrokenRecord(p, 5),
			workers: 4,
			wantErr: crypto.ErrNotBlockAligned,
		},
		{
			name:    "逐次復号中のエラー",
			data:    withBrokenRecord(p, 5),
			workers: 1,
			wantErr: crypto.ErrNotBlockAligned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sl2.Open(tt.data, p, sl2.WithWorkers(tt.workers))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Open() error = %v, want %v", err, tt.wantErr)
			}
			if !bnd4.IsFormatError(err) {
				t.Errorf("Open() error = %T, want *bnd4.FormatError", err)
			}
		})
	}
}

// withBrokenRecord は broken 番目のレコードだけブロック境界に揃っていないセーブファイルを返します
func withBrokenRecord(p sl2.Profile, broken int) []byte {
	plains := sl2test.Plaintexts(p, nil)
	entries := make([]bnd4test.Entry, len(plains))
	for i, plain := range plains {
		payload := bnd4test.Seal(p.Key, bnd4test.IV(byte(i)), plain)
		if i == broken {
			payload = payload[:len(payload)-3]
		}
		entries[i] = bnd4test.Entry{Name: bnd4test.RecordName(i), Payload: payload}
	}
	return bnd4test.Build(entries...)
}

func TestSave_PatchNonASCIIName(t *testing.T) {
	for _, title := range []sl2.Title{sl2.DS3, sl2.ER} {
		for _, name := range []string{"José", "Ñandú", "アストラ"} {
			t.Run(title.String()+"/"+name, func(t *testing.T) {
				p := sl2.ProfileOf(title)
				slot := p.Slots.FirstSlot + 2
				data := sl2test.Build(p, map[int]sl2test.Character{
					slot: {Name: name, Currency: 4321},
				})

				s, err := sl2.Open(data, p)
				if err != nil {
					t.Fatalf("Open() error = %v", err)
				}
				if got := s.Slots()[slot]; got != name {
					t.Fatalf("Slots()[%d] = %q, want %q", slot, got, name)
				}

				res, err := s.Patch(999_999_999, sl2.AllSlots)
				if err != nil {
					t.Fatalf("Patch() error = %v", err)
				}
				if got := res.Slots[0].Before; got[0] != 4321 {
					t.Errorf("Before = %v, want 4321", got)
				}

				patched, err := sl2.Open(res.Data, p)
				if err != nil {
					t.Fatalf("Open(patched) error = %v", err)
				}
				got, err := patched.Currency(slot)
				if err != nil {
					t.Fatalf("Currency() error = %v", err)
				}
				for i, v := range got {
					if v != 999_999_999 {
						t.Errorf("currency[%d] = %d, want 999999999", i, v)
					}
				}
			})
		}
	}
}

func TestOpen_OversizedLengthPrefix(t *testing.T) {
	p := sl2.ProfileOf(sl2.DSR)
	chars := map[int]sl2test.Character{
		3: {Name: "Testerino", Currency: 12345},
	}
	data := withLengthPrefix(p, chars, 7, 5000)

	s, err := sl2.Open(data, p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	pt := s.Plaintexts()[7]
	if !pt.Truncated() {
		t.Error("Truncated() = false, want true")
	}
	if pt.DeclaredLength != 5000 {
		t.Errorf("DeclaredLength = %d, want 5000", pt.DeclaredLength)
	}
	if len(pt.Data) >= 5000 || len(pt.Data) < sl2test.CharacterRecordLen {
		t.Errorf("len(Data) = %d", len(pt.Data))
	}
	if s.Plaintexts()[3].Truncated() {
		t.Error("正常なレコードが切り詰められています")
	}

	// 切り詰めたレコードに触れない書き換えは成功する
	res, err := s.Patch(999_999_999, sl2.AllSlots)
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	rec := s.Container().Records[7]
	end := rec.DataOffset + rec.Size
	if !bytes.Equal(res.Data[rec.DataOffset:end], data[rec.DataOffset:end]) {
		t.Error("レコード #7 が変化しています")
	}

	if got, err := sl2.Detect(data, "save.sl2"); err != nil || got.Title != sl2.DSR {
		t.Errorf("Detect() = %v, %v, want dsr", got.Name, err)
	}
}

func TestSave_PatchTruncatedRecord(t *testing.T) {
	p := sl2.ProfileOf(sl2.DSR)
	chars := map[int]sl2test.Character{
		3: {Name: "Testerino", Currency: 12345},
	}
	data := withLengthPrefix(p, chars, 3, 5000)

	s, err := sl2.Open(data, p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_, err = s.Patch(999_999_999, sl2.Slot(3))
	if !errors.Is(err, crypto.ErrBadLengthPrefix) {
		t.Errorf("Patch() error = %v, want %v", err, crypto.ErrBadLengthPrefix)
	}
	if !bnd4.IsFormatError(err) {
		t.Errorf("Patch() error = %T, want *bnd4.FormatError", err)
	}
}

// withLengthPrefix は rec 番目のレコードの長さプレフィックスを declared に書き換えたセーブファイルを返します
func withLengthPrefix(p sl2.Profile, chars map[int]sl2test.Character, rec int, declared uint32) []byte {
	plains := sl2test.Plaintexts(p, chars)
	entries := make([]bnd4test.Entry, len(plains))
	for i, plain := range plains {
		iv := bnd4test.IV(byte(i))
		payload := bnd4test.Seal(p.Key, iv, plain)
		if i == rec {
			framed := crypto.FrameLength(plain)
			binary.LittleEndian.PutUint32(framed, declared)
			body, err := crypto.EncryptCBC(p.Key, iv, framed)
			if err != nil {
				panic(err)
			}
			payload = append(bytes.Clone(iv), body...)
		}
		entries[i] = bnd4test.Entry{Name: bnd4test.RecordName(i), Payload: payload}
	}
	return bnd4test.Build(entries...)
}
