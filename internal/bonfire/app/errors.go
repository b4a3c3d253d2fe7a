package app

import "errors"

var (
	// ErrNoSaveFile はセーブファイルが指定されず、自動検出もできなかった場合のエラー
	ErrNoSaveFile = errors.New(".sl2ファイルが見つかりません。入力ファイルを引数で指定してください")

	// ErrReadFile はファイルの読み込みに失敗した場合のエラー
	ErrReadFile = errors.New("ファイルの読み込みに失敗しました")

	// ErrWriteFile はファイルの書き込みに失敗した場合のエラー
	ErrWriteFile = errors.New("ファイルの書き込みに失敗しました")

	// ErrInputIsDirectory は入力にディレクトリが指定された場合のエラー
	ErrInputIsDirectory = errors.New("入力にはディレクトリではなく.sl2ファイルを指定してください")

	// ErrSelectTitle はタイトルを決定できなかった場合のエラー
	ErrSelectTitle = errors.New("タイトルを決定できませんでした。-g でタイトルを指定してください")
)
