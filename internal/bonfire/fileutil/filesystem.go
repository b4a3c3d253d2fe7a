package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shiroemons/go-bonfire/internal/bonfire/interfaces"
)

// OSFileSystem は実際のOSファイルシステムを使用する実装
type OSFileSystem struct{}

// NewOSFileSystem は新しいOSFileSystemを作成します
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// FileExists はファイルが存在するか確認します
func (fs *OSFileSystem) FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// ReadFile はファイルを読み込みます
func (fs *OSFileSystem) ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}

// WriteFile はファイルを書き込みます
func (fs *OSFileSystem) WriteFile(filename string, data []byte, perm uint32) error {
	return os.WriteFile(filename, data, os.FileMode(perm))
}

// MkdirAll はディレクトリを作成します
func (fs *OSFileSystem) MkdirAll(path string, perm uint32) error {
	return os.MkdirAll(path, os.FileMode(perm))
}

// Stat はファイル情報を取得します
func (fs *OSFileSystem) Stat(name string) (interfaces.FileInfo, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// ReadDir はディレクトリを読み込みます
func (fs *OSFileSystem) ReadDir(dirname string) ([]interfaces.DirEntry, error) {
	entries, err := os.ReadDir(dirname)
	if err != nil {
		return nil, err
	}

	result := make([]interfaces.DirEntry, len(entries))
	for i, entry := range entries {
		result[i] = entry
	}
	return result, nil
}

// Getwd は現在の作業ディレクトリを取得します
func (fs *OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// Executable は実行ファイルのパスを取得します
func (fs *OSFileSystem) Executable() (string, error) {
	return os.Executable()
}

// SaveFileFinderWithFS は.sl2ファイルの検索を行います
type SaveFileFinderWithFS struct {
	fs interfaces.FileSystem
}

// NewSaveFileFinderWithFS は新しいSaveFileFinderWithFSを作成します
func NewSaveFileFinderWithFS(fs interfaces.FileSystem) *SaveFileFinderWithFS {
	return &SaveFileFinderWithFS{fs: fs}
}

// Find はカレントディレクトリ、次に実行ファイルと同じディレクトリから.sl2ファイルを検索します。
// 見つからない場合は空文字列を返します。
func (f *SaveFileFinderWithFS) Find() (string, error) {
	currentDir, err := f.fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGetCurrentDirectory, err)
	}

	saveFiles, err := f.findInDir(currentDir)
	if err != nil {
		return "", err
	}

	// カレントディレクトリで見つかった場合は他のディレクトリは検索しない
	if len(saveFiles) == 0 {
		execPath, err := f.fs.Executable()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrGetExecutablePath, err)
		}
		execDir := filepath.Dir(execPath)
		if execDir != currentDir {
			saveFiles, err = f.findInDir(execDir)
			if err != nil {
				return "", err
			}
		}
	}

	switch len(saveFiles) {
	case 0:
		return "", nil
	case 1:
		return saveFiles[0], nil
	default:
		return "", f.createMultipleFilesError(saveFiles)
	}
}

// findInDir は指定されたディレクトリ内の.sl2ファイルを検索します
func (f *SaveFileFinderWithFS) findInDir(dir string) ([]string, error) {
	files, err := f.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadDirectory, dir, err)
	}

	var saveFiles []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if SaveFilePattern.MatchString(file.Name()) {
			saveFiles = append(saveFiles, filepath.Join(dir, file.Name()))
		}
	}
	return saveFiles, nil
}

// createMultipleFilesError は複数の.sl2ファイルが見つかった場合のエラーを生成します
func (f *SaveFileFinderWithFS) createMultipleFilesError(saveFiles []string) error {
	fileNames := make([]string, len(saveFiles))
	for i, path := range saveFiles {
		fileNames[i] = filepath.Base(path)
	}
	return fmt.Errorf("%w: %s", ErrMultipleSaveFiles, strings.Join(fileNames, ", "))
}
