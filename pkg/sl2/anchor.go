package sl2

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"rsc.io/binaryregexp"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeAnchor はキャラクター名を復号済みデータ内での表現 (BOMなしUTF-16LE) に変換します
func EncodeAnchor(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: キャラクター名が空です", ErrPatternNotFound)
	}
	return utf16le.NewEncoder().Bytes([]byte(name))
}

// FindAnchor はデータ内でキャラクター名が最初に現れる位置を返します
func FindAnchor(data []byte, name string) (int, error) {
	anchor, err := EncodeAnchor(name)
	if err != nil {
		return -1, err
	}

	re, err := binaryregexp.Compile(bytePattern(anchor))
	if err != nil {
		return -1, fmt.Errorf("%w: %q: %w", ErrPatternNotFound, name, err)
	}
	loc := re.FindIndex(data)
	if loc == nil {
		return -1, fmt.Errorf("%w: %q", ErrPatternNotFound, name)
	}
	return loc[0], nil
}

// bytePattern は各バイトを \xHH でエスケープし、そのバイト列だけに一致するパターンを返します
func bytePattern(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 4)
	for _, c := range b {
		fmt.Fprintf(&sb, `\x%02x`, c)
	}
	return sb.String()
}

// decodeName はUTF-16LEの名前領域を文字列に変換します。
// 2バイト境界上の最初のNUL文字で切り詰め、見つからなければ領域全体を使います。
func decodeName(field []byte) (string, error) {
	end := len(field) &^ 1
	for i := 0; i+1 < len(field); i += 2 {
		if binary.LittleEndian.Uint16(field[i:]) == 0 {
			end = i
			break
		}
	}
	decoded, err := utf16le.NewDecoder().Bytes(field[:end])
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// IsASCII は名前がASCII文字だけで構成されているかを返します。
// 名前を手がかりにするタイトルで非ASCIIの名前を使っている場合の警告に使います。
func IsASCII(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			return false
		}
	}
	return true
}
