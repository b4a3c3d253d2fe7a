package sl2

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/shiroemons/go-bonfire/pkg/bnd4"
)

// 設定できるソウル(ルーン)の範囲
const (
	MinTarget = 1
	MaxTarget = 999_999_999
)

const fieldSize = 4

// ValidateTarget は設定値が範囲内か確認します
func ValidateTarget(target uint32) error {
	if target < MinTarget || target > MaxTarget {
		return fmt.Errorf("%w: %d (%d から %d)", ErrValueOutOfRange, target, MinTarget, MaxTarget)
	}
	return nil
}

// currencyOffsets はソウル(ルーン)フィールドの平文内オフセットを求めます
func currencyOffsets(data []byte, p Profile, name string) ([]int, error) {
	base := 0
	if p.Currency.Strategy == NameAnchored {
		pos, err := FindAnchor(data, name)
		if err != nil {
			return nil, err
		}
		base = pos
	}

	offsets := make([]int, 0, len(p.Currency.Offsets))
	for _, rel := range p.Currency.Offsets {
		at := base + rel
		if at < 0 || at+fieldSize > len(data) {
			if p.Currency.Strategy == NameAnchored {
				return nil, fmt.Errorf("%w: %q の位置 %d からのフィールド %d が範囲外です", ErrPatternNotFound, name, base, rel)
			}
			return nil, bnd4.NewFormatError("ソウルフィールド", -1, bnd4.ErrTruncated)
		}
		offsets = append(offsets, at)
	}
	return offsets, nil
}

// ReadCurrency は現在のソウル(ルーン)フィールドの値を返します。
// name は NameAnchored 方式のタイトルでのみ使用されます。
func ReadCurrency(data []byte, p Profile, name string) ([]uint32, error) {
	offsets, err := currencyOffsets(data, p, name)
	if err != nil {
		return nil, err
	}

	values := make([]uint32, len(offsets))
	for i, at := range offsets {
		values[i] = binary.LittleEndian.Uint32(data[at:])
	}
	return values, nil
}

// PatchCurrency はソウル(ルーン)フィールドを target に引き上げた新しい平文を返します。
// 現在値が target 以上のフィールドは変更しません。入力は変更しません。
func PatchCurrency(data []byte, p Profile, name string, target uint32) ([]byte, error) {
	if err := ValidateTarget(target); err != nil {
		return nil, err
	}

	offsets, err := currencyOffsets(data, p, name)
	if err != nil {
		return nil, err
	}

	out := bytes.Clone(data)
	for _, at := range offsets {
		if binary.LittleEndian.Uint32(out[at:]) < target {
			binary.LittleEndian.PutUint32(out[at:], target)
		}
	}
	return out, nil
}
