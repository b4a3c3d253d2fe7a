package crypto

import "errors"

var (
	// ErrCipherPrecondition はキーまたはIVの長さが不正な場合のエラー (タイトル定義の誤り)
	ErrCipherPrecondition = errors.New("暗号パラメータが不正です")

	// ErrNotBlockAligned はデータがブロック境界に揃っていない場合のエラー
	ErrNotBlockAligned = errors.New("データがブロック境界に揃っていません")

	// ErrBadLengthPrefix は長さプレフィックスが不正な場合のエラー
	ErrBadLengthPrefix = errors.New("長さプレフィックスが不正です")
)
