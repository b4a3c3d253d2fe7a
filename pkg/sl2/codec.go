package sl2

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/shiroemons/go-bonfire/pkg/bnd4"
	"github.com/shiroemons/go-bonfire/pkg/crypto"
)

// Plaintext は復号済みのレコードです
type Plaintext struct {
	Index          int
	Data           []byte // 復号済みの平文 (呼び出し側が所有する複製)
	DeclaredLength int    // 長さプレフィックスの値 (暗号化なしのタイトルでは -1)
	IV             []byte
}

// Truncated は長さプレフィックスが本体より長く、平文を切り詰めたかどうかを返します
func (pt *Plaintext) Truncated() bool {
	return pt.DeclaredLength > len(pt.Data)
}

// Decrypt はレコードのデータ領域を復号します。
// 暗号化なしのタイトルではチェックサム以降をそのまま複製して返します。
func Decrypt(c *bnd4.Container, rec bnd4.Record, p Profile) (*Plaintext, error) {
	payload := c.Payload(rec)

	if !p.Encrypted() {
		return &Plaintext{
			Index:          rec.Index,
			Data:           bytes.Clone(payload),
			DeclaredLength: -1,
		}, nil
	}

	if len(payload) < bnd4.IVSize+crypto.LengthPrefixSize {
		return nil, bnd4.NewFormatError("復号", rec.Index, bnd4.ErrBadRecordSize)
	}

	iv := payload[:bnd4.IVSize]
	body, err := crypto.DecryptCBC(p.Key, iv, payload[bnd4.IVSize:])
	if err != nil {
		if errors.Is(err, crypto.ErrNotBlockAligned) {
			return nil, bnd4.NewFormatError("復号", rec.Index, err)
		}
		return nil, fmt.Errorf("レコード #%d の復号: %w", rec.Index, err)
	}

	data, declared, err := crypto.UnframeLength(body)
	if err != nil {
		return nil, bnd4.NewFormatError("長さプレフィックス", rec.Index, err)
	}

	return &Plaintext{
		Index:          rec.Index,
		Data:           data,
		DeclaredLength: declared,
		IV:             bytes.Clone(iv),
	}, nil
}

// Encrypt は平文を暗号化し、レコードに書き戻すデータとチェックサムを返します。
// 生成されたデータ長がレコードの領域と一致しない場合は ErrLengthMismatch を返します。
func Encrypt(pt *Plaintext, rec bnd4.Record, p Profile) ([]byte, [bnd4.ChecksumSize]byte, error) {
	var blob []byte

	if !p.Encrypted() {
		blob = bytes.Clone(pt.Data)
	} else {
		body, err := crypto.EncryptCBC(p.Key, pt.IV, crypto.FrameLength(pt.Data))
		if err != nil {
			return nil, [bnd4.ChecksumSize]byte{}, fmt.Errorf("レコード #%d の暗号化: %w", rec.Index, err)
		}
		blob = make([]byte, 0, len(pt.IV)+len(body))
		blob = append(blob, pt.IV...)
		blob = append(blob, body...)
	}

	if len(blob) != rec.PayloadSize() {
		return nil, [bnd4.ChecksumSize]byte{}, bnd4.NewFormatError("暗号化", rec.Index,
			fmt.Errorf("%w: %d バイト (期待値 %d)", bnd4.ErrLengthMismatch, len(blob), rec.PayloadSize()))
	}

	return blob, crypto.Checksum(blob), nil
}
