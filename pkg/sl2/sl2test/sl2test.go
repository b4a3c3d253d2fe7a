// Package sl2test はテスト用のセーブファイルを組み立てるユーティリティを提供します
package sl2test

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"

	"github.com/shiroemons/go-bonfire/pkg/bnd4/bnd4test"
	"github.com/shiroemons/go-bonfire/pkg/sl2"
)

const (
	// RecordCount は組み立てるセーブファイルのレコード数 (スロット10件 + スロット一覧)
	RecordCount = 11

	// CharacterRecordLen はキャラクターデータレコードの平文長
	CharacterRecordLen = 1001

	// AnchorOffset は名前を手がかりにするタイトルで、キャラクター名を置く平文内の位置
	AnchorOffset = 400
)

// Character はスロットに配置するキャラクターです
type Character struct {
	Name     string
	Currency uint32
}

// Build はタイトル p のセーブファイルを組み立てます。
// chars のキーはタイトルの表示上のスロット番号です。
func Build(p sl2.Profile, chars map[int]Character) []byte {
	plains := Plaintexts(p, chars)

	entries := make([]bnd4test.Entry, len(plains))
	for i, plain := range plains {
		payload := plain
		if p.Encrypted() {
			payload = bnd4test.Seal(p.Key, bnd4test.IV(byte(0x10*i+1)), plain)
		}
		entries[i] = bnd4test.Entry{Name: bnd4test.RecordName(i), Payload: payload}
	}
	return bnd4test.Build(entries...)
}

// Plaintexts は Build が暗号化する前の各レコードの平文を返します
func Plaintexts(p sl2.Profile, chars map[int]Character) [][]byte {
	plains := make([][]byte, RecordCount)
	for i := range plains {
		plains[i] = make([]byte, CharacterRecordLen)
	}
	plains[p.IndexRecord] = IndexRecord(p, chars)

	for slot, ch := range chars {
		plains[slot] = CharacterRecord(p, ch)
	}
	return plains
}

// IndexRecord はスロット一覧レコードの平文を組み立てます
func IndexRecord(p sl2.Profile, chars map[int]Character) []byte {
	l := p.Slots
	size := l.NameOffset + l.Stride*(sl2.SlotCount-1) + l.NameMaxChars*2 + 7
	if l.Family == sl2.Unified && l.FlagsOffset+sl2.SlotCount > size {
		size = l.FlagsOffset + sl2.SlotCount
	}
	data := make([]byte, size)

	for slot, ch := range chars {
		i := slot - l.FirstSlot
		if l.Family == sl2.IndexZero {
			data[l.MarkerOffset+l.Stride*i] = 1
		} else {
			data[l.FlagsOffset+i] = 1
		}
		name := EncodeName(ch.Name)
		if len(name) > l.NameMaxChars*2 {
			name = name[:l.NameMaxChars*2]
		}
		copy(data[l.NameOffset+l.Stride*i:], name)
	}
	return data
}

// CharacterRecord はキャラクターデータレコードの平文を組み立てます
func CharacterRecord(p sl2.Profile, ch Character) []byte {
	data := make([]byte, CharacterRecordLen)

	base := 0
	if p.Currency.Strategy == sl2.NameAnchored {
		base = AnchorOffset
		copy(data[AnchorOffset:], EncodeName(ch.Name))
	}
	for _, rel := range p.Currency.Offsets {
		binary.LittleEndian.PutUint32(data[base+rel:], ch.Currency)
	}
	return data
}

// EncodeName は名前をBOMなしUTF-16LEに変換します
func EncodeName(name string) []byte {
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(name))
	if err != nil {
		panic(err)
	}
	return b
}
