package sl2

import (
	"fmt"
	"maps"
	"slices"

	"github.com/shiroemons/go-bonfire/pkg/bnd4"
)

// Occupancy は使用中スロットの番号とキャラクター名の対応です
type Occupancy map[int]string

// Sorted はスロット番号を昇順で返します
func (o Occupancy) Sorted() []int {
	return slices.Sorted(maps.Keys(o))
}

// ReadSlots はスロット一覧レコードから使用中スロットを読み取ります。
// スロット番号は Unified 方式では0始まり、IndexZero 方式では1始まりです。
func ReadSlots(pt *Plaintext, p Profile) (Occupancy, error) {
	if pt.Index != p.IndexRecord {
		return nil, fmt.Errorf("%w: レコード #%d (%s はレコード #%d)", ErrWrongIndexRecord, pt.Index, p.Name, p.IndexRecord)
	}

	l := p.Slots
	occ := make(Occupancy)

	for i := 0; i < SlotCount; i++ {
		marker := l.FlagsOffset + i
		if l.Family == IndexZero {
			marker = l.MarkerOffset + l.Stride*i
		}
		if marker >= len(pt.Data) {
			return nil, bnd4.NewFormatError("スロット一覧", pt.Index, bnd4.ErrTruncated)
		}
		if pt.Data[marker] == 0 {
			continue
		}

		start := l.NameOffset + l.Stride*i
		end := start + l.NameMaxChars*2
		if end > len(pt.Data) {
			return nil, bnd4.NewFormatError("キャラクター名", pt.Index, bnd4.ErrTruncated)
		}

		name, err := decodeName(pt.Data[start:end])
		if err != nil {
			return nil, bnd4.NewFormatError("キャラクター名", pt.Index, err)
		}
		occ[i+l.FirstSlot] = name
	}

	return occ, nil
}
