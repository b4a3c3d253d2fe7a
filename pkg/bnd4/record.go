package bnd4

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// Record はコンテナ内の1レコードの位置情報を表します。
// 暗号文の長さはパッチ前後で変わらないため、解析後に値が変わることはありません。
type Record struct {
	Index        int
	Size         int // チェックサム(16バイト)を含むデータ領域の長さ
	DataOffset   int
	NameOffset   int
	FooterLength int
	Name         string // 例: USER_DATA000
}

// End はデータ領域の終端オフセットを返します
func (r Record) End() int {
	return r.DataOffset + r.Size
}

// PayloadSize はチェックサムを除いたデータ領域の長さを返します
func (r Record) PayloadSize() int {
	return r.Size - ChecksumSize
}

// decodeName はレコード名領域を文字列に変換します。
// Unicodeフラグが立っていない場合は Shift-JIS として扱います。
func decodeName(field []byte, isUnicode bool) (string, error) {
	if !isUnicode {
		if n := bytes.IndexByte(field, 0); n >= 0 {
			field = field[:n]
		}
		return japanese.ShiftJIS.NewDecoder().String(string(field))
	}

	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(field)
	if err != nil {
		return "", err
	}
	name := string(decoded)
	if n := strings.IndexRune(name, 0); n >= 0 {
		name = name[:n]
	}
	return name, nil
}
