package bnd4

import "fmt"

// Fragment はレコード1件ぶんの差し替え内容です
type Fragment struct {
	Record   Record
	Checksum [ChecksumSize]byte
	Blob     []byte // IV || 暗号文、または非暗号化タイトルのペイロード
}

// Splice はレコードのデータ領域を チェックサム || blob に置き換えた新しいバッファを返します。
// 元のバッファは変更しません。
func Splice(data []byte, rec Record, sum [ChecksumSize]byte, blob []byte) ([]byte, error) {
	return ApplyFragments(data, []Fragment{{Record: rec, Checksum: sum, Blob: blob}})
}

// ApplyFragments は複数の差し替えをまとめて適用した新しいバッファを返します。
// すべての差し替えを検証してからコピーするため、途中で失敗しても部分的に書き換えられた結果は返りません。
func ApplyFragments(data []byte, frags []Fragment) ([]byte, error) {
	for _, f := range frags {
		if err := f.validate(len(data)); err != nil {
			return nil, err
		}
	}

	out := make([]byte, len(data))
	copy(out, data)

	for _, f := range frags {
		start := f.Record.DataOffset
		copy(out[start:start+ChecksumSize], f.Checksum[:])
		copy(out[start+ChecksumSize:f.Record.End()], f.Blob)
	}

	return out, nil
}

// validate は差し替え内容がレコードの領域にちょうど収まるか確認します
func (f Fragment) validate(bufLen int) error {
	if ChecksumSize+len(f.Blob) != f.Record.Size {
		return NewFormatError("差し替え", f.Record.Index,
			fmt.Errorf("%w: %d バイト (期待値 %d)", ErrLengthMismatch, ChecksumSize+len(f.Blob), f.Record.Size))
	}
	if f.Record.DataOffset < 0 || f.Record.End() > bufLen {
		return NewFormatError("差し替え", f.Record.Index, ErrTruncated)
	}
	return nil
}
