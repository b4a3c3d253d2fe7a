package fileutil

import "errors"

var (
	// ErrCreateDirectory は出力先ディレクトリの作成に失敗した場合のエラー
	ErrCreateDirectory = errors.New("出力先ディレクトリの作成に失敗しました")

	// ErrWriteFile はファイルの書き込みに失敗した場合のエラー
	ErrWriteFile = errors.New("ファイルの書き込みに失敗しました")

	// ErrGetCurrentDirectory はカレントディレクトリを取得できない場合のエラー
	ErrGetCurrentDirectory = errors.New("カレントディレクトリを取得できませんでした")

	// ErrGetExecutablePath は実行ファイルのパスを取得できない場合のエラー
	ErrGetExecutablePath = errors.New("実行ファイルのパスを取得できませんでした")

	// ErrReadDirectory はディレクトリ内のファイル一覧を取得できない場合のエラー
	ErrReadDirectory = errors.New("ディレクトリ内のファイル一覧を取得できませんでした")

	// ErrMultipleSaveFiles は複数の.sl2ファイルが見つかった場合のエラー
	ErrMultipleSaveFiles = errors.New("複数の.sl2ファイルが見つかりました。使用するファイルを引数で指定してください")

	// ErrNotBackup はzstd形式のバックアップではない場合のエラー
	ErrNotBackup = errors.New("バックアップファイルではありません")
)
