// Package interfaces はbonfireコマンドで使用するインターフェースを定義します
package interfaces

import (
	"context"
)

// FileSystem はファイルシステム操作のインターフェース
type FileSystem interface {
	FileExists(filename string) bool
	ReadFile(filename string) ([]byte, error)
	WriteFile(filename string, data []byte, perm uint32) error
	MkdirAll(path string, perm uint32) error
	Stat(name string) (FileInfo, error)
	ReadDir(dirname string) ([]DirEntry, error)
	Getwd() (string, error)
	Executable() (string, error)
}

// FileInfo はファイル情報のインターフェース
type FileInfo interface {
	Name() string
	IsDir() bool
}

// DirEntry はディレクトリエントリのインターフェース
type DirEntry interface {
	Name() string
	IsDir() bool
}

// SaveFileFinder は.sl2ファイルを検索するインターフェースです
type SaveFileFinder interface {
	Find() (string, error)
}

// Watcher はファイルの更新を監視するインターフェースです
type Watcher interface {
	Watch(ctx context.Context, path string, onChange func() error) error
}

// Logger はログ出力のインターフェース
type Logger interface {
	Printf(format string, a ...any)
}
