package bnd4

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic は先頭の識別子が "BND4" でない場合のエラー
	ErrBadMagic = errors.New("BND4ヘッダが見つかりません")

	// ErrBadRecordMagic はレコードヘッダの識別子が一致しない場合のエラー
	ErrBadRecordMagic = errors.New("レコードヘッダの識別子が一致しません")

	// ErrBadRecordCount はレコード数が負の場合のエラー
	ErrBadRecordCount = errors.New("レコード数が不正です")

	// ErrBadRecordSize はレコードサイズが不正な場合のエラー
	ErrBadRecordSize = errors.New("レコードサイズが不正です")

	// ErrTruncated はバッファが途中で切れている場合のエラー
	ErrTruncated = errors.New("データが途中で切れています")

	// ErrLengthMismatch は差し替えデータの長さがレコードと一致しない場合のエラー
	ErrLengthMismatch = errors.New("データ長がレコードサイズと一致しません")
)

// FormatError はコンテナの形式が不正な場合のエラー
type FormatError struct {
	Op    string // 実行していた操作
	Index int    // レコード番号 (コンテナ全体の場合は -1)
	Err   error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *FormatError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s (レコード #%d): %v", e.Op, e.Index, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap は元のエラーを返します
func (e *FormatError) Unwrap() error {
	return e.Err
}

// NewFormatError は新しいFormatErrorを作成します
func NewFormatError(op string, index int, err error) *FormatError {
	return &FormatError{
		Op:    op,
		Index: index,
		Err:   err,
	}
}

// IsFormatError はエラーがコンテナ形式のエラーかどうかを返します
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
