// Package mocks はテスト用のモック実装を提供します
package mocks

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/shiroemons/go-bonfire/internal/bonfire/interfaces"
)

// MockFileSystem はテスト用のファイルシステムモック
type MockFileSystem struct {
	Files      map[string][]byte
	Perms      map[string]uint32
	Dirs       map[string]bool
	WorkingDir string
	ExecPath   string
	Error      error // すべての操作で返すエラー
	WriteError error // 書き込み系の操作だけで返すエラー
	Writes     []string
}

// NewMockFileSystem は新しいMockFileSystemを作成します
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files:      make(map[string][]byte),
		Perms:      make(map[string]uint32),
		Dirs:       make(map[string]bool),
		WorkingDir: "/test/dir",
		ExecPath:   "/test/exec/program",
	}
}

func notExist(name string) error {
	return fmt.Errorf("%s: %w", name, fs.ErrNotExist)
}

// FileExists はファイルが存在するか確認します
func (m *MockFileSystem) FileExists(filename string) bool {
	_, exists := m.Files[filename]
	return exists
}

// ReadFile はファイルを読み込みます。呼び出し側が書き換えても影響しないよう複製を返します。
func (m *MockFileSystem) ReadFile(filename string) ([]byte, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	data, exists := m.Files[filename]
	if !exists {
		return nil, notExist(filename)
	}
	return append([]byte(nil), data...), nil
}

// WriteFile はファイルを書き込みます
func (m *MockFileSystem) WriteFile(filename string, data []byte, perm uint32) error {
	if m.Error != nil {
		return m.Error
	}
	if m.WriteError != nil {
		return m.WriteError
	}
	m.Files[filename] = append([]byte(nil), data...)
	m.Perms[filename] = perm
	m.Writes = append(m.Writes, filename)
	return nil
}

// MkdirAll はディレクトリを作成します
func (m *MockFileSystem) MkdirAll(path string, perm uint32) error {
	if m.Error != nil {
		return m.Error
	}
	if m.WriteError != nil {
		return m.WriteError
	}
	m.Dirs[path] = true
	return nil
}

// Stat はファイル情報を取得します
func (m *MockFileSystem) Stat(name string) (interfaces.FileInfo, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	if _, exists := m.Files[name]; exists {
		return &MockFileInfo{name: filepath.Base(name), isDir: false}, nil
	}
	if _, exists := m.Dirs[name]; exists {
		return &MockFileInfo{name: filepath.Base(name), isDir: true}, nil
	}
	return nil, notExist(name)
}

// ReadDir はディレクトリを読み込みます。エントリは名前順に並びます。
func (m *MockFileSystem) ReadDir(dirname string) ([]interfaces.DirEntry, error) {
	if m.Error != nil {
		return nil, m.Error
	}

	var names []string
	isDir := map[string]bool{}
	for path := range m.Files {
		if filepath.Dir(path) == dirname {
			names = append(names, filepath.Base(path))
		}
	}
	for path := range m.Dirs {
		if filepath.Dir(path) == dirname && path != dirname {
			names = append(names, filepath.Base(path))
			isDir[filepath.Base(path)] = true
		}
	}

	if len(names) == 0 && !m.Dirs[dirname] {
		return nil, notExist(dirname)
	}

	sort.Strings(names)
	entries := make([]interfaces.DirEntry, len(names))
	for i, name := range names {
		entries[i] = &MockDirEntry{name: name, isDir: isDir[name]}
	}
	return entries, nil
}

// Getwd は現在の作業ディレクトリを返します
func (m *MockFileSystem) Getwd() (string, error) {
	if m.Error != nil {
		return "", m.Error
	}
	return m.WorkingDir, nil
}

// Executable は実行ファイルのパスを返します
func (m *MockFileSystem) Executable() (string, error) {
	if m.Error != nil {
		return "", m.Error
	}
	return m.ExecPath, nil
}

// MockFileInfo はテスト用のFileInfo実装
type MockFileInfo struct {
	name  string
	isDir bool
}

// Name はファイル名を返します
func (fi *MockFileInfo) Name() string {
	return fi.name
}

// IsDir はディレクトリかどうかを返します
func (fi *MockFileInfo) IsDir() bool {
	return fi.isDir
}

// MockDirEntry はテスト用のDirEntry実装
type MockDirEntry struct {
	name  string
	isDir bool
}

// Name はエントリ名を返します
func (de *MockDirEntry) Name() string {
	return de.name
}

// IsDir はディレクトリかどうかを返します
func (de *MockDirEntry) IsDir() bool {
	return de.isDir
}
