// Package bnd4 はSL2セーブファイルの外側コンテナ (BND4形式) を読み書きするためのパッケージです。
//
// コンテナはヘッダ(64バイト)、固定長のレコードヘッダ(32バイト)の配列、
// そして各レコードの名前領域とデータ領域で構成されます。
// このパッケージはタイトルに依存しない処理のみを扱い、暗号化されたペイロードには触れません。
//
// 基本的な使い方:
//
//	c, err := bnd4.Parse(data)
//	if err != nil {
//	    return err
//	}
//	for _, rec := range c.Records {
//	    payload := c.Payload(rec)
//	    // ペイロードを処理...
//	}
package bnd4

import (
	"bytes"
	"encoding/binary"
)

// BND4 コンテナの定数
const (
	// Magic はコンテナ先頭の識別子
	Magic = "BND4"

	// HeaderSize はコンテナヘッダのバイト長
	HeaderSize = 0x40

	// RecordHeaderSize はレコードヘッダ1件のバイト長
	RecordHeaderSize = 0x20

	// NameFieldSize はレコード名領域のバイト長 (UTF-16 で12文字)
	NameFieldSize = 24

	// ChecksumSize はデータ領域先頭のチェックサムのバイト長
	ChecksumSize = 16

	// IVSize はチェックサム直後のIVのバイト長
	IVSize = 16

	// ヘッダ内のオフセット
	recordCountOffset = 12
	unicodeFlagOffset = 48

	// レコードヘッダ内のオフセット
	recordSizeOffset         = 8
	recordDataOffsetOffset   = 16
	recordNameOffsetOffset   = 20
	recordFooterLengthOffset = 24
)

// RecordMagic はレコードヘッダ先頭の8バイト
var RecordMagic = []byte{0x50, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}

// Container は解析済みのBND4コンテナを表します。
// Data は呼び出し元のバッファをそのまま参照しており、このパッケージが書き換えることはありません。
type Container struct {
	Data        []byte
	RecordCount int32
	Unicode     bool
	Records     []Record
}

// Parse はバッファをBND4コンテナとして解析します。
// バッファの内容は変更しません。
func Parse(data []byte) (*Container, error) {
	if len(data) < len(Magic) || !bytes.Equal(data[:len(Magic)], []byte(Magic)) {
		return nil, NewFormatError("ヘッダ検証", -1, ErrBadMagic)
	}
	if len(data) < HeaderSize {
		return nil, NewFormatError("ヘッダ読み込み", -1, ErrTruncated)
	}

	count := int32(binary.LittleEndian.Uint32(data[recordCountOffset:]))
	if count < 0 {
		return nil, NewFormatError("ヘッダ読み込み", -1, ErrBadRecordCount)
	}
	if int64(HeaderSize)+int64(count)*RecordHeaderSize > int64(len(data)) {
		return nil, NewFormatError("レコードヘッダ読み込み", -1, ErrTruncated)
	}

	c := &Container{
		Data:        data,
		RecordCount: count,
		Unicode:     data[unicodeFlagOffset] == 1,
		Records:     make([]Record, 0, count),
	}

	for i := 0; i < int(count); i++ {
		rec, err := c.parseRecordHeader(i)
		if err != nil {
			return nil, err
		}
		c.Records = append(c.Records, rec)
	}

	return c, nil
}

// parseRecordHeader は i 番目のレコードヘッダを解析します
func (c *Container) parseRecordHeader(i int) (Record, error) {
	pos := HeaderSize + RecordHeaderSize*i
	hdr := c.Data[pos : pos+RecordHeaderSize]

	if !bytes.Equal(hdr[:len(RecordMagic)], RecordMagic) {
		return Record{}, NewFormatError("レコードヘッダ検証", i, ErrBadRecordMagic)
	}

	rec := Record{
		Index:        i,
		Size:         int(int32(binary.LittleEndian.Uint32(hdr[recordSizeOffset:]))),
		DataOffset:   int(int32(binary.LittleEndian.Uint32(hdr[recordDataOffsetOffset:]))),
		NameOffset:   int(int32(binary.LittleEndian.Uint32(hdr[recordNameOffsetOffset:]))),
		FooterLength: int(int32(binary.LittleEndian.Uint32(hdr[recordFooterLengthOffset:]))),
	}

	if rec.Size < ChecksumSize {
		return Record{}, NewFormatError("レコードヘッダ読み込み", i, ErrBadRecordSize)
	}
	if rec.DataOffset < 0 || rec.DataOffset+rec.Size > len(c.Data) {
		return Record{}, NewFormatError("データ領域", i, ErrTruncated)
	}
	if rec.NameOffset < 0 || rec.NameOffset+NameFieldSize > len(c.Data) {
		return Record{}, NewFormatError("名前領域", i, ErrTruncated)
	}

	name, err := decodeName(c.Data[rec.NameOffset:rec.NameOffset+NameFieldSize], c.Unicode)
	if err != nil {
		return Record{}, NewFormatError("名前領域", i, err)
	}
	rec.Name = name

	return rec, nil
}

// Record はインデックス i のレコードを返します
func (c *Container) Record(i int) (Record, bool) {
	if i < 0 || i >= len(c.Records) {
		return Record{}, false
	}
	return c.Records[i], true
}

// Checksum はレコードに格納されているチェックサムを返します
func (c *Container) Checksum(rec Record) []byte {
	return c.Data[rec.DataOffset : rec.DataOffset+ChecksumSize]
}

// Payload はチェックサムを除いたレコードのデータ領域を返します (暗号化タイトルではIVを含みます)
func (c *Container) Payload(rec Record) []byte {
	return c.Data[rec.DataOffset+ChecksumSize : rec.DataOffset+rec.Size]
}
