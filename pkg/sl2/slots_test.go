package sl2_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/shiroemons/go-bonfire/pkg/bnd4"
	"github.com/shiroemons/go-bonfire/pkg/sl2"
	"github.com/shiroemons/go-bonfire/pkg/sl2/sl2test"
)

func indexPlaintext(p sl2.Profile, chars map[int]sl2test.Character) *sl2.Plaintext {
	return &sl2.Plaintext{Index: p.IndexRecord, Data: sl2test.IndexRecord(p, chars)}
}

func TestReadSlots(t *testing.T) {
	tests := []struct {
		title sl2.Title
		slots []int
	}{
		{sl2.DSR, []int{0, 3, 9}},
		{sl2.DS2, []int{1, 10}},
		{sl2.DS3, []int{5}},
		{sl2.ER, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.title.String(), func(t *testing.T) {
			p := sl2.ProfileOf(tt.title)
			chars := map[int]sl2test.Character{}
			for _, s := range tt.slots {
				chars[s] = sl2test.Character{Name: "Knight" + string(rune('A'+s))}
			}

			occ, err := sl2.ReadSlots(indexPlaintext(p, chars), p)
			if err != nil {
				t.Fatalf("ReadSlots() error = %v", err)
			}
			if !slices.Equal(occ.Sorted(), tt.slots) {
				t.Errorf("Sorted() = %v, want %v", occ.Sorted(), tt.slots)
			}
			for s, ch := range chars {
				if occ[s] != ch.Name {
					t.Errorf("occ[%d] = %q, want %q", s, occ[s], ch.Name)
				}
			}
		})
	}
}

func TestReadSlots_Empty(t *testing.T) {
	for _, title := range sl2.Titles() {
		p := sl2.ProfileOf(title)
		occ, err := sl2.ReadSlots(indexPlaintext(p, nil), p)
		if err != nil {
			t.Fatalf("%s: ReadSlots() error = %v", title, err)
		}
		if len(occ) != 0 {
			t.Errorf("%s: len(occ) = %d, want 0", title, len(occ))
		}
	}
}

func TestReadSlots_MarkerValues(t *testing.T) {
	tests := []struct {
		name   string
		title  sl2.Title
		marker byte
		want   bool
	}{
		{"unified 0", sl2.DSR, 0x00, false},
		{"unified 1", sl2.DSR, 0x01, true},
		{"unified ff", sl2.DS3, 0xff, true},
		{"index-zero 0", sl2.DS2, 0x00, false},
		{"index-zero 1", sl2.DS2, 0x01, true},
		{"index-zero 80", sl2.DS2, 0x80, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := sl2.ProfileOf(tt.title)
			slot := p.Slots.FirstSlot + 2
			pt := indexPlaintext(p, map[int]sl2test.Character{slot: {Name: "Oscar"}})

			at := p.Slots.FlagsOffset + 2
			if p.Slots.Family == sl2.IndexZero {
				at = p.Slots.MarkerOffset + p.Slots.Stride*2
			}
			pt.Data[at] = tt.marker

			occ, err := sl2.ReadSlots(pt, p)
			if err != nil {
				t.Fatalf("ReadSlots() error = %v", err)
			}
			if _, ok := occ[slot]; ok != tt.want {
				t.Errorf("スロット #%d の使用中判定 = %v, want %v", slot, ok, tt.want)
			}
		})
	}
}

func TestReadSlots_NameTruncation(t *testing.T) {
	p := sl2.ProfileOf(sl2.DSR)

	tests := []struct {
		name  string
		field []byte
		want  string
	}{
		{
			name:  "NUL文字で切り詰め",
			field: append(sl2test.EncodeName("Anri"), 0, 0, 'X', 0),
			want:  "Anri",
		},
		{
			name:  "最大長でNULなし",
			field: sl2test.EncodeName("Lautrec-of-Ca"),
			want:  "Lautrec-of-Ca",
		},
		{
			name:  "上位バイトが0の文字の直後も正しく切り詰め",
			field: append(sl2test.EncodeName("AĀ"), 0, 0),
			want:  "AĀ",
		},
		{
			name:  "先頭がNUL",
			field: []byte{0, 0, 'Z', 0},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := indexPlaintext(p, map[int]sl2test.Character{0: {Name: "x"}})
			field := pt.Data[p.Slots.NameOffset : p.Slots.NameOffset+p.Slots.NameMaxChars*2]
			clear(field)
			copy(field, tt.field)

			occ, err := sl2.ReadSlots(pt, p)
			if err != nil {
				t.Fatalf("ReadSlots() error = %v", err)
			}
			if occ[0] != tt.want {
				t.Errorf("occ[0] = %q, want %q", occ[0], tt.want)
			}
		})
	}
}

func TestReadSlots_WrongIndexRecord(t *testing.T) {
	p := sl2.ProfileOf(sl2.ER)
	pt := indexPlaintext(p, nil)
	pt.Index = 3

	_, err := sl2.ReadSlots(pt, p)
	if !errors.Is(err, sl2.ErrWrongIndexRecord) {
		t.Errorf("ReadSlots() error = %v, want %v", err, sl2.ErrWrongIndexRecord)
	}
}

func TestReadSlots_Truncated(t *testing.T) {
	for _, title := range sl2.Titles() {
		t.Run(title.String(), func(t *testing.T) {
			p := sl2.ProfileOf(title)
			pt := indexPlaintext(p, map[int]sl2test.Character{p.Slots.FirstSlot + 9: {Name: "Patches"}})
			pt.Data = pt.Data[:p.Slots.NameOffset+p.Slots.Stride*9+4]

			_, err := sl2.ReadSlots(pt, p)
			if !errors.Is(err, bnd4.ErrTruncated) {
				t.Errorf("ReadSlots() error = %v, want %v", err, bnd4.ErrTruncated)
			}
		})
	}
}

func TestOccupancySorted(t *testing.T) {
	occ := sl2.Occupancy{7: "c", 0: "a", 3: "b"}
	if got := occ.Sorted(); !slices.Equal(got, []int{0, 3, 7}) {
		t.Errorf("Sorted() = %v", got)
	}
	if got := (sl2.Occupancy{}).Sorted(); len(got) != 0 {
		t.Errorf("空のOccupancy の Sorted() = %v", got)
	}
}
