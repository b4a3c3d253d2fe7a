// Package crypto はSL2セーブファイルのレコード暗号化で使用されるアルゴリズムを提供します。
//
// 主な機能:
//   - DecryptCBC / EncryptCBC: AES-128-CBC によるレコード本体の復号・暗号化
//   - FrameLength / UnframeLength: 長さプレフィックス付き平文の組み立てと分解
//   - Pad / PaddingLen: SL2独自のパディング規則
//   - Checksum: レコードのMD5チェックサム
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

const (
	// KeySize はレコード暗号化キーのバイト長です (AES-128)
	KeySize = 16

	// BlockSize は暗号ブロック長です
	BlockSize = aes.BlockSize
)

// newBlock はキーとIVの長さを検証して暗号ブロックを生成します
func newBlock(key, iv []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: キー長 %d (期待値 %d)", ErrCipherPrecondition, len(key), KeySize)
	}
	if len(iv) != BlockSize {
		return nil, fmt.Errorf("%w: IV長 %d (期待値 %d)", ErrCipherPrecondition, len(iv), BlockSize)
	}
	return aes.NewCipher(key)
}

// DecryptCBC は AES-128-CBC で暗号文を復号した新しいスライスを返します。
// 入力は変更しません。
func DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := newBlock(key, iv)
	if err != nil {
		return nil, err
	}
	if len(ciphertext)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d バイト", ErrNotBlockAligned, len(ciphertext))
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

// EncryptCBC は AES-128-CBC で平文を暗号化した新しいスライスを返します。
// 平文はブロック境界に揃っている必要があります (パディングは呼び出し側で付与します)。
func EncryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	block, err := newBlock(key, iv)
	if err != nil {
		return nil, err
	}
	if len(plaintext)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d バイト", ErrNotBlockAligned, len(plaintext))
	}

	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plaintext)
	return out, nil
}
