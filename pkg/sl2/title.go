// Package sl2 はタイトルごとのSL2セーブファイル定義と、レコードの復号・スロット読み取り・ソウル(ルーン)書き換えを提供します。
//
// 対応タイトル:
//   - dsr: DARK SOULS REMASTERED
//   - ds2: DARK SOULS II: Scholar of the First Sin
//   - ds3: DARK SOULS III
//   - er:  ELDEN RING (暗号化なし)
//
// タイトル固有の値はすべて Profile にまとめられており、各処理は Profile を引数として受け取ります。
package sl2

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// Title は対応タイトルを表します
type Title int

// 対応タイトル
const (
	DSR Title = iota
	DS2
	DS3
	ER
)

// String はタイトルの短縮名を返します
func (t Title) String() string {
	if p, ok := profiles[t]; ok {
		return p.Name
	}
	return fmt.Sprintf("Title(%d)", int(t))
}

// SlotFamily はスロット一覧の格納方式です
type SlotFamily int

const (
	// Unified は使用中フラグが連続したバイト列に並ぶ方式 (dsr, ds3, er)
	Unified SlotFamily = iota
	// IndexZero は先頭レコード内のマーカーバイトで判定する方式 (ds2)
	IndexZero
)

// SlotCount はセーブファイル内のスロット数です
const SlotCount = 10

// SlotLayout はスロット一覧レコード内の配置です
type SlotLayout struct {
	Family       SlotFamily
	FlagsOffset  int // Unified: 使用中フラグ (1スロット1バイト)
	MarkerOffset int // IndexZero: スロット i のマーカーは MarkerOffset + Stride*i
	NameOffset   int // スロット i の名前は NameOffset + Stride*i
	Stride       int
	NameMaxChars int // UTF-16 の文字数
	FirstSlot    int // 表示上のスロット番号の開始値
}

// CurrencyStrategy はソウル(ルーン)フィールドの探し方です
type CurrencyStrategy int

const (
	// FixedOffsets は平文内の固定オフセット
	FixedOffsets CurrencyStrategy = iota
	// NameAnchored はキャラクター名の出現位置からの相対オフセット
	NameAnchored
)

// CurrencyLayout はソウル(ルーン)フィールドの配置です
type CurrencyLayout struct {
	Strategy CurrencyStrategy
	Offsets  []int
}

// Profile はタイトル1つぶんの定義です
type Profile struct {
	Title        Title
	Name         string
	DisplayName  string
	Key          []byte // nil の場合は暗号化なし
	IndexRecord  int    // スロット一覧を持つレコード
	Slots        SlotLayout
	Currency     CurrencyLayout
	SaveFileName string
}

// Encrypted はレコードが暗号化されているかどうかを返します
func (p Profile) Encrypted() bool {
	return p.Key != nil
}

func mustKey(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

var profiles = map[Title]Profile{
	DSR: {
		Title:       DSR,
		Name:        "dsr",
		DisplayName: "DARK SOULS REMASTERED",
		Key:         mustKey("0123456789abcdeffedcba9876543210"),
		IndexRecord: 10,
		Slots: SlotLayout{
			Family:       Unified,
			FlagsOffset:  176,
			NameOffset:   192,
			Stride:       400,
			NameMaxChars: 13,
		},
		Currency:     CurrencyLayout{Strategy: FixedOffsets, Offsets: []int{224, 228}},
		SaveFileName: "DRAKS0005.sl2",
	},
	DS2: {
		Title:       DS2,
		Name:        "ds2",
		DisplayName: "DARK SOULS II: Scholar of the First Sin",
		Key:         mustKey("599f9b699640a55236ee2d70835ec744"),
		IndexRecord: 0,
		Slots: SlotLayout{
			Family:       IndexZero,
			MarkerOffset: 892,
			NameOffset:   1286,
			Stride:       496,
			NameMaxChars: 14,
			FirstSlot:    1,
		},
		Currency:     CurrencyLayout{Strategy: FixedOffsets, Offsets: []int{60, 64, 68}},
		SaveFileName: "DS2SOFS0000.sl2",
	},
	DS3: {
		Title:       DS3,
		Name:        "ds3",
		DisplayName: "DARK SOULS III",
		Key:         mustKey("fd464d695e69a39a10e319a7ace8b7fa"),
		IndexRecord: 10,
		Slots: SlotLayout{
			Family:       Unified,
			FlagsOffset:  4244,
			NameOffset:   4254,
			Stride:       554,
			NameMaxChars: 16,
		},
		Currency:     CurrencyLayout{Strategy: NameAnchored, Offsets: []int{-20, -16}},
		SaveFileName: "DS30000.sl2",
	},
	ER: {
		Title:       ER,
		Name:        "er",
		DisplayName: "ELDEN RING",
		IndexRecord: 10,
		Slots: SlotLayout{
			Family:       Unified,
			FlagsOffset:  6484,
			NameOffset:   6494,
			Stride:       588,
			NameMaxChars: 16,
		},
		Currency:     CurrencyLayout{Strategy: NameAnchored, Offsets: []int{-48, -44}},
		SaveFileName: "ER0000.sl2",
	},
}

// Titles は対応タイトルを定義順に返します
func Titles() []Title {
	return []Title{DSR, DS2, DS3, ER}
}

// ProfileOf はタイトルの定義を返します。
// 戻り値のスライスは複製されているため、呼び出し側で変更しても定義には影響しません。
func ProfileOf(t Title) Profile {
	p, ok := profiles[t]
	if !ok {
		panic(fmt.Sprintf("sl2: 未定義のタイトル %d", int(t)))
	}
	p.Key = slices.Clone(p.Key)
	p.Currency.Offsets = slices.Clone(p.Currency.Offsets)
	return p
}

// Lookup は短縮名 (dsr, ds2, ds3, er) からタイトル定義を返します。大文字小文字は区別しません。
func Lookup(name string) (Profile, error) {
	for _, t := range Titles() {
		if strings.EqualFold(profiles[t].Name, strings.TrimSpace(name)) {
			return ProfileOf(t), nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownTitle, name)
}

// Names は対応タイトルの短縮名の一覧を返します
func Names() []string {
	names := make([]string, 0, len(profiles))
	for _, t := range Titles() {
		names = append(names, profiles[t].Name)
	}
	return names
}
