package sl2

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/shiroemons/go-bonfire/pkg/bnd4"
	"github.com/shiroemons/go-bonfire/pkg/crypto"
)

// Selector は書き換え対象のスロットです
type Selector int

// AllSlots は使用中のすべてのスロットを対象にします
const AllSlots Selector = -1

// Slot は番号 n のスロットを対象にするSelectorを返します
func Slot(n int) Selector {
	return Selector(n)
}

// Option は Open の動作を変更します
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers はレコードを並列に復号するワーカー数を設定します。1以下の場合は逐次処理です。
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Save は復号済みのセーブファイルです
type Save struct {
	profile    Profile
	container  *bnd4.Container
	plaintexts []*Plaintext
	slots      Occupancy
}

// SlotChange はスロット1つぶんの書き換え結果です
type SlotChange struct {
	Slot   int
	Name   string
	Record int
	Before []uint32
	After  []uint32
}

// PatchResult は Patch の結果です
type PatchResult struct {
	Data  []byte // 書き換え後のセーブファイル全体 (入力と同じ長さ)
	Slots []SlotChange
}

// Open はセーブファイルを解析し、すべてのレコードを復号してスロット一覧を読み取ります。
// data は変更されません。
func Open(data []byte, p Profile, opts ...Option) (*Save, error) {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	c, err := bnd4.Parse(data)
	if err != nil {
		return nil, err
	}
	if _, ok := c.Record(p.IndexRecord); !ok {
		return nil, bnd4.NewFormatError("スロット一覧", p.IndexRecord, bnd4.ErrTruncated)
	}

	pts, err := decryptAll(c, p, o.workers)
	if err != nil {
		return nil, err
	}

	occ, err := ReadSlots(pts[p.IndexRecord], p)
	if err != nil {
		return nil, err
	}

	return &Save{
		profile:    p,
		container:  c,
		plaintexts: pts,
		slots:      occ,
	}, nil
}

// decryptAll はすべてのレコードを復号します
func decryptAll(c *bnd4.Container, p Profile, workers int) ([]*Plaintext, error) {
	pts := make([]*Plaintext, len(c.Records))

	if workers <= 1 {
		for i, rec := range c.Records {
			pt, err := Decrypt(c, rec, p)
			if err != nil {
				return nil, err
			}
			pts[i] = pt
		}
		return pts, nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, rec := range c.Records {
		g.Go(func() error {
			pt, err := Decrypt(c, rec, p)
			if err != nil {
				return err
			}
			pts[i] = pt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pts, nil
}

// Profile はタイトル定義を返します
func (s *Save) Profile() Profile {
	return s.profile
}

// Container は解析済みのコンテナを返します
func (s *Save) Container() *bnd4.Container {
	return s.container
}

// Plaintexts はレコード順の復号済みデータを返します
func (s *Save) Plaintexts() []*Plaintext {
	return s.plaintexts
}

// Slots は使用中スロットを返します
func (s *Save) Slots() Occupancy {
	return s.slots
}

// Currency は使用中スロットの現在のソウル(ルーン)の値を返します
func (s *Save) Currency(slot int) ([]uint32, error) {
	name, ok := s.slots[slot]
	if !ok {
		return nil, fmt.Errorf("%w: スロット #%d", ErrSlotNotOccupied, slot)
	}
	pt, err := s.slotPlaintext(slot)
	if err != nil {
		return nil, err
	}
	return ReadCurrency(pt.Data, s.profile, name)
}

// slotPlaintext はスロットのキャラクターデータを持つレコードを返します
func (s *Save) slotPlaintext(slot int) (*Plaintext, error) {
	if slot < 0 || slot >= len(s.plaintexts) {
		return nil, bnd4.NewFormatError("キャラクターデータ", slot, bnd4.ErrTruncated)
	}
	return s.plaintexts[slot], nil
}

// Patch は対象スロットのソウル(ルーン)を target に引き上げたセーブファイルを返します。
// いずれかのスロットで失敗した場合は何も書き換えずにエラーを返します。
func (s *Save) Patch(target uint32, sel Selector) (*PatchResult, error) {
	if err := ValidateTarget(target); err != nil {
		return nil, err
	}

	targets := s.slots.Sorted()
	if sel != AllSlots {
		if _, ok := s.slots[int(sel)]; !ok {
			return nil, fmt.Errorf("%w: スロット #%d", ErrSlotNotOccupied, int(sel))
		}
		targets = []int{int(sel)}
	}

	result := &PatchResult{}
	frags := make([]bnd4.Fragment, 0, len(targets))

	for _, slot := range targets {
		change, frag, err := s.patchSlot(slot, target)
		if err != nil {
			return nil, fmt.Errorf("スロット #%d: %w", slot, err)
		}
		result.Slots = append(result.Slots, change)
		frags = append(frags, frag)
	}

	out, err := bnd4.ApplyFragments(s.container.Data, frags)
	if err != nil {
		return nil, err
	}
	result.Data = out
	return result, nil
}

// patchSlot はスロット1つぶんの差し替え内容を作ります
func (s *Save) patchSlot(slot int, target uint32) (SlotChange, bnd4.Fragment, error) {
	name := s.slots[slot]
	pt, err := s.slotPlaintext(slot)
	if err != nil {
		return SlotChange{}, bnd4.Fragment{}, err
	}
	rec := s.container.Records[pt.Index]
	if pt.Truncated() {
		return SlotChange{}, bnd4.Fragment{}, bnd4.NewFormatError("暗号化", rec.Index,
			fmt.Errorf("%w: 宣言長 %d, 利用可能 %d", crypto.ErrBadLengthPrefix, pt.DeclaredLength, len(pt.Data)))
	}

	before, err := ReadCurrency(pt.Data, s.profile, name)
	if err != nil {
		return SlotChange{}, bnd4.Fragment{}, err
	}
	patched, err := PatchCurrency(pt.Data, s.profile, name, target)
	if err != nil {
		return SlotChange{}, bnd4.Fragment{}, err
	}
	after, err := ReadCurrency(patched, s.profile, name)
	if err != nil {
		return SlotChange{}, bnd4.Fragment{}, err
	}

	declared := len(patched)
	if !s.profile.Encrypted() {
		declared = -1
	}
	blob, sum, err := Encrypt(&Plaintext{
		Index:          pt.Index,
		Data:           patched,
		DeclaredLength: declared,
		IV:             pt.IV,
	}, rec, s.profile)
	if err != nil {
		return SlotChange{}, bnd4.Fragment{}, err
	}

	return SlotChange{
			Slot:   slot,
			Name:   name,
			Record: rec.Index,
			Before: before,
			After:  after,
		}, bnd4.Fragment{
			Record:   rec,
			Checksum: sum,
			Blob:     blob,
		}, nil
}
