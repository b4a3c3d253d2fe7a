package bnd4_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/shiroemons/go-bonfire/pkg/bnd4"
	"github.com/shiroemons/go-bonfire/pkg/bnd4/bnd4test"
	"github.com/shiroemons/go-bonfire/pkg/crypto"
)

func threeRecords() []byte {
	return bnd4test.Build(
		bnd4test.Entry{Name: bnd4test.RecordName(0), Payload: bytes.Repeat([]byte{0x11}, 48)},
		bnd4test.Entry{Name: bnd4test.RecordName(1), Payload: bytes.Repeat([]byte{0x22}, 64)},
		bnd4test.Entry{Name: bnd4test.RecordName(2), Payload: bytes.Repeat([]byte{0x33}, 32)},
	)
}

func TestParse(t *testing.T) {
	data := threeRecords()

	c, err := bnd4.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.RecordCount != 3 || len(c.Records) != 3 {
		t.Fatalf("RecordCount = %d, len(Records) = %d, want 3", c.RecordCount, len(c.Records))
	}
	if !c.Unicode {
		t.Error("Unicode = false, want true")
	}

	wantSizes := []int{64, 80, 48}
	for i, rec := range c.Records {
		if rec.Index != i {
			t.Errorf("Records[%d].Index = %d", i, rec.Index)
		}
		if rec.Size != wantSizes[i] {
			t.Errorf("Records[%d].Size = %d, want %d", i, rec.Size, wantSizes[i])
		}
		if rec.Name != bnd4test.RecordName(i) {
			t.Errorf("Records[%d].Name = %q, want %q", i, rec.Name, bnd4test.RecordName(i))
		}
		sum := crypto.Checksum(c.Payload(rec))
		if !bytes.Equal(c.Checksum(rec), sum[:]) {
			t.Errorf("Records[%d] のチェックサムが一致しません", i)
		}
	}

	if !bytes.Equal(c.Payload(c.Records[1]), bytes.Repeat([]byte{0x22}, 64)) {
		t.Error("Payload() が期待する領域を返しません")
	}
}

func TestParse_Empty(t *testing.T) {
	c, err := bnd4.Parse(bnd4test.Build())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(c.Records) != 0 {
		t.Errorf("len(Records) = %d, want 0", len(c.Records))
	}
	if _, ok := c.Record(0); ok {
		t.Error("Record(0) は存在しないはずです")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func([]byte) []byte
		wantErr   error
		wantIndex int
	}{
		{
			name:      "マジック不一致",
			mutate:    func(b []byte) []byte { b[0] = 'X'; return b },
			wantErr:   bnd4.ErrBadMagic,
			wantIndex: -1,
		},
		{
			name:      "4バイト未満",
			mutate:    func(b []byte) []byte { return b[:3] },
			wantErr:   bnd4.ErrBadMagic,
			wantIndex: -1,
		},
		{
			name:      "ヘッダが途中で切れている",
			mutate:    func(b []byte) []byte { return b[:40] },
			wantErr:   bnd4.ErrTruncated,
			wantIndex: -1,
		},
		{
			name: "負のレコード数",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[12:], 0xffffffff)
				return b
			},
			wantErr:   bnd4.ErrBadRecordCount,
			wantIndex: -1,
		},
		{
			name: "レコード数がバッファを超える",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[12:], 100000)
				return b
			},
			wantErr:   bnd4.ErrTruncated,
			wantIndex: -1,
		},
		{
			name: "2番目のレコードマジック不一致",
			mutate: func(b []byte) []byte {
				b[bnd4.HeaderSize+bnd4.RecordHeaderSize*2] = 0x51
				return b
			},
			wantErr:   bnd4.ErrBadRecordMagic,
			wantIndex: 2,
		},
		{
			name: "データ領域がバッファ外",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[bnd4.HeaderSize+bnd4.RecordHeaderSize+8:], 1<<20)
				return b
			},
			wantErr:   bnd4.ErrTruncated,
			wantIndex: 1,
		},
		{
			name: "レコードサイズがチェックサムより小さい",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[bnd4.HeaderSize+8:], 4)
				return b
			},
			wantErr:   bnd4.ErrBadRecordSize,
			wantIndex: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bnd4.Parse(tt.mutate(threeRecords()))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			var fe *bnd4.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("Parse() error = %T, want *FormatError", err)
			}
			if fe.Index != tt.wantIndex {
				t.Errorf("FormatError.Index = %d, want %d", fe.Index, tt.wantIndex)
			}
			if !bnd4.IsFormatError(err) {
				t.Error("IsFormatError() = false")
			}
		})
	}
}

func TestParse_DoesNotModifyInput(t *testing.T) {
	data := threeRecords()
	orig := append([]byte(nil), data...)

	if _, err := bnd4.Parse(data); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !bytes.Equal(data, orig) {
		t.Error("Parse() が入力を書き換えました")
	}
}

func TestParse_ShiftJISName(t *testing.T) {
	data := threeRecords()
	data[48] = 0

	c, err := bnd4.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Unicode {
		t.Error("Unicode = true, want false")
	}
	// UTF-16 の "U\x00S\x00..." を Shift-JIS として読むと最初のNULで切れる
	if c.Records[0].Name != "U" {
		t.Errorf("Name = %q, want %q", c.Records[0].Name, "U")
	}
}
