package config

import "errors"

var (
	// ErrInvalidNum は設定値が範囲外の場合のエラー
	ErrInvalidNum = errors.New("-n には 1 から 999999999 までの値を指定してください")

	// ErrInvalidSlot はスロット番号が範囲外の場合のエラー
	ErrInvalidSlot = errors.New("-s には -1 から 10 までの値を指定してください")

	// ErrMissingOutput は出力先が指定されていない場合のエラー
	ErrMissingOutput = errors.New("出力先 (-o) を指定してください")

	// ErrListWithOutput は -l と -o が同時に指定された場合のエラー
	ErrListWithOutput = errors.New("-l と -o は同時に指定できません")

	// ErrTooManyArgs は入力ファイルが複数指定された場合のエラー
	ErrTooManyArgs = errors.New("入力ファイルは1つだけ指定してください")

	// ErrLoadConfig は設定ファイルの読み込みに失敗した場合のエラー
	ErrLoadConfig = errors.New("設定ファイルの読み込みに失敗しました")
)
