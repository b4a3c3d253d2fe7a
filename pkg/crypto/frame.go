package crypto

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"
)

// LengthPrefixSize は平文先頭の長さフィールドのバイト長です
const LengthPrefixSize = 4

// ChecksumSize はレコードチェックサムのバイト長です
const ChecksumSize = md5.Size

// PaddingLen は長さ payloadLen の平文に付与するパディング長を返します。
// 長さプレフィックス(4バイト)込みでブロック境界に揃っている場合は0です。
func PaddingLen(payloadLen int) int {
	padLen := BlockSize - ((payloadLen + LengthPrefixSize) % BlockSize)
	if padLen == BlockSize {
		return 0
	}
	return padLen
}

// Pad は長さ payloadLen の平文用パディングを返します。
// 各バイトはパディング長と同じ値になります (PKCS#7 と異なり、揃っている場合は付与しません)。
func Pad(payloadLen int) []byte {
	padLen := PaddingLen(payloadLen)
	return bytes.Repeat([]byte{byte(padLen)}, padLen)
}

// FrameLength は 長さプレフィックス || 平文 || パディング を組み立てます
func FrameLength(payload []byte) []byte {
	pad := Pad(len(payload))
	out := make([]byte, 0, LengthPrefixSize+len(payload)+len(pad))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)
	out = append(out, pad...)
	return out
}

// UnframeLength は復号済みの本体から長さプレフィックスを読み取り、宣言長ぶんの平文を返します。
// 宣言長より後ろのバイトはパディングとして破棄されます。
// 宣言長が本体より長い場合は本体の末尾までに切り詰め、宣言長はそのまま返します。
// 戻り値の平文は新しく確保したスライスです。
func UnframeLength(body []byte) ([]byte, int, error) {
	if len(body) < LengthPrefixSize {
		return nil, 0, fmt.Errorf("%w: 本体が %d バイトしかありません", ErrBadLengthPrefix, len(body))
	}

	declared := int(int32(binary.LittleEndian.Uint32(body[:LengthPrefixSize])))
	if declared < 0 {
		return nil, declared, fmt.Errorf("%w: 宣言長 %d", ErrBadLengthPrefix, declared)
	}

	n := min(declared, len(body)-LengthPrefixSize)
	out := make([]byte, n)
	copy(out, body[LengthPrefixSize:LengthPrefixSize+n])
	return out, declared, nil
}

// Checksum はデータのMD5ダイジェストを返します
func Checksum(data []byte) [ChecksumSize]byte {
	return md5.Sum(data)
}
