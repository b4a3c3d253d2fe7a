package fileutil

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/shiroemons/go-bonfire/internal/bonfire/interfaces"
)

// BackupExt はバックアップファイルの拡張子
const BackupExt = ".bak.zst"

// BackupPath は入力ファイルに対応するバックアップファイルのパスを返します
func BackupPath(inputPath string) string {
	return inputPath + BackupExt
}

// Compress はデータをzstdで圧縮します
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress はzstdで圧縮されたデータを展開します
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		if errors.Is(err, zstd.ErrMagicMismatch) {
			return nil, ErrNotBackup
		}
		return nil, fmt.Errorf("%w: %w", ErrNotBackup, err)
	}
	return out, nil
}

// WriteBackup は元のセーブファイルを圧縮して <入力>.bak.zst に書き出し、そのパスを返します
func WriteBackup(fs interfaces.FileSystem, inputPath string, data []byte) (string, error) {
	compressed, err := Compress(data)
	if err != nil {
		return "", err
	}
	path := BackupPath(inputPath)
	if err := fs.WriteFile(path, compressed, 0644); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFile, path, err)
	}
	return path, nil
}

// ReadBackup はバックアップファイルを読み込んで展開します
func ReadBackup(fs interfaces.FileSystem, backupPath string) ([]byte, error) {
	compressed, err := fs.ReadFile(backupPath)
	if err != nil {
		return nil, err
	}
	data, err := Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", backupPath, err)
	}
	return data, nil
}
