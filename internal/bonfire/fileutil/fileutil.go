// Package fileutil はファイル操作のユーティリティ関数を提供します
package fileutil

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shiroemons/go-bonfire/internal/bonfire/interfaces"
	"github.com/shiroemons/go-bonfire/pkg/sl2"
)

var (
	// SaveFilePattern はセーブファイル (*.sl2) のパターン
	SaveFilePattern = regexp.MustCompile(`(?i)\.sl2$`)

	// unsafeNameChars はダンプ時のファイル名に使えない文字
	unsafeNameChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)
)

// GenerateOutputFilename は入力ファイル名から出力ファイル名を生成します。
// -o を省略した書き換えの出力先に使います。
func GenerateOutputFilename(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "_patched" + ext
}

// DumpFileName はレコードを書き出すときのファイル名を返します
func DumpFileName(rec int, name string) string {
	name = strings.TrimSpace(unsafeNameChars.ReplaceAllString(name, "_"))
	if name == "" || name == "." || name == ".." {
		return fmt.Sprintf("record%03d", rec)
	}
	return name
}

// DumpRecords は復号済みの各レコードを dir/<レコード名> に書き出し、書き出したパスを返します
func DumpRecords(fs interfaces.FileSystem, dir string, save *sl2.Save) ([]string, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateDirectory, err)
	}

	records := save.Container().Records
	paths := make([]string, 0, len(records))
	for _, pt := range save.Plaintexts() {
		path := filepath.Join(dir, DumpFileName(pt.Index, records[pt.Index].Name))
		if err := fs.WriteFile(path, pt.Data, 0644); err != nil {
			return paths, fmt.Errorf("%w: %s: %w", ErrWriteFile, path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
