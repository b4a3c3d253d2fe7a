// Package bnd4test はテスト用のBND4コンテナを組み立てるユーティリティを提供します
package bnd4test

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/shiroemons/go-bonfire/pkg/bnd4"
	"github.com/shiroemons/go-bonfire/pkg/crypto"
)

// Entry はコンテナに格納するレコード1件です
type Entry struct {
	Name    string
	Payload []byte // チェックサムより後ろのデータ領域
}

// RecordName は n 番目のレコード名 (USER_DATA000 形式) を返します
func RecordName(n int) string {
	return fmt.Sprintf("USER_DATA%03d", n)
}

// Build はエントリを順に並べたBND4コンテナを返します。
// チェックサムはペイロードのMD5で埋められます。
func Build(entries ...Entry) []byte {
	count := len(entries)
	namesStart := bnd4.HeaderSize + bnd4.RecordHeaderSize*count
	dataStart := namesStart + bnd4.NameFieldSize*count

	total := dataStart
	for _, e := range entries {
		total += bnd4.ChecksumSize + len(e.Payload)
	}

	buf := make([]byte, total)
	copy(buf, bnd4.Magic)
	binary.LittleEndian.PutUint32(buf[12:], uint32(count))
	buf[48] = 1

	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	dataOffset := dataStart
	for i, e := range entries {
		hdr := buf[bnd4.HeaderSize+bnd4.RecordHeaderSize*i:]
		copy(hdr, bnd4.RecordMagic)

		size := bnd4.ChecksumSize + len(e.Payload)
		nameOffset := namesStart + bnd4.NameFieldSize*i
		binary.LittleEndian.PutUint32(hdr[8:], uint32(size))
		binary.LittleEndian.PutUint32(hdr[16:], uint32(dataOffset))
		binary.LittleEndian.PutUint32(hdr[20:], uint32(nameOffset))

		name, err := enc.Bytes([]byte(e.Name))
		if err != nil {
			panic(err)
		}
		copy(buf[nameOffset:nameOffset+bnd4.NameFieldSize], name)

		sum := crypto.Checksum(e.Payload)
		copy(buf[dataOffset:], sum[:])
		copy(buf[dataOffset+bnd4.ChecksumSize:], e.Payload)
		dataOffset += size
	}

	return buf
}

// Seal は平文を IV || AES-CBC(長さ || 平文 || パディング) の形に暗号化します
func Seal(key, iv, plain []byte) []byte {
	body, err := crypto.EncryptCBC(key, iv, crypto.FrameLength(plain))
	if err != nil {
		panic(err)
	}
	out := make([]byte, 0, len(iv)+len(body))
	out = append(out, iv...)
	return append(out, body...)
}

// IV はテスト用の決定的なIVを返します
func IV(seed byte) []byte {
	iv := make([]byte, bnd4.IVSize)
	for i := range iv {
		iv[i] = seed + byte(i)*3
	}
	return iv
}
