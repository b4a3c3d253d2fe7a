package sl2

import "errors"

var (
	// ErrUnknownTitle は対応していないタイトルが指定された、または判別できなかった場合のエラー
	ErrUnknownTitle = errors.New("対応していないタイトルです")

	// ErrAmbiguousTitle は複数のタイトルとして解釈でき、判別できない場合のエラー
	ErrAmbiguousTitle = errors.New("タイトルを一つに特定できません")

	// ErrWrongIndexRecord はスロット一覧を持たないレコードを読もうとした場合のエラー
	ErrWrongIndexRecord = errors.New("スロット一覧を持つレコードではありません")

	// ErrPatternNotFound はキャラクター名を手がかりにしたフィールド検索に失敗した場合のエラー
	ErrPatternNotFound = errors.New("復号済みデータ内にキャラクター名が見つかりません")

	// ErrSlotNotOccupied は指定されたスロットが使用されていない場合のエラー
	ErrSlotNotOccupied = errors.New("指定されたスロットは使用されていません")

	// ErrValueOutOfRange は設定値が範囲外の場合のエラー
	ErrValueOutOfRange = errors.New("設定値が範囲外です")
)
