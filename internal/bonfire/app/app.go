// Package app はアプリケーションのメインロジックを実装します
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shiroemons/go-bonfire/internal/bonfire/config"
	apperrors "github.com/shiroemons/go-bonfire/internal/bonfire/errors"
	"github.com/shiroemons/go-bonfire/internal/bonfire/fileutil"
	"github.com/shiroemons/go-bonfire/internal/bonfire/interfaces"
	"github.com/shiroemons/go-bonfire/internal/bonfire/report"
	"github.com/shiroemons/go-bonfire/internal/bonfire/watch"
	"github.com/shiroemons/go-bonfire/pkg/bnd4"
	"github.com/shiroemons/go-bonfire/pkg/sl2"
)

// App はアプリケーションのメインロジックを管理します
type App struct {
	config *config.Config
	logger *config.DebugLogger
	fs     interfaces.FileSystem
	finder interfaces.SaveFileFinder
	watch  interfaces.Watcher
	stdout io.Writer
	stderr io.Writer
}

// Options はAppの設定オプション
type Options struct {
	FileSystem     interfaces.FileSystem
	SaveFileFinder interfaces.SaveFileFinder
	Watcher        interfaces.Watcher
	Stdout         io.Writer
	Stderr         io.Writer
}

// New は新しいAppを作成します
func New(cfg *config.Config) *App {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions は新しいAppをオプション付きで作成します
func NewWithOptions(cfg *config.Config, opts Options) *App {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := config.NewDebugLoggerWithWriter(cfg.DebugMode, stderr)

	fs := opts.FileSystem
	if fs == nil {
		fs = fileutil.NewOSFileSystem()
	}

	finder := opts.SaveFileFinder
	if finder == nil {
		finder = fileutil.NewSaveFileFinderWithFS(fs)
	}

	watcher := opts.Watcher
	if watcher == nil {
		watcher = watch.New(logger)
	}

	return &App{
		config: cfg,
		logger: logger,
		fs:     fs,
		finder: finder,
		watch:  watcher,
		stdout: stdout,
		stderr: stderr,
	}
}

// loaded は読み込んで復号したセーブファイルです
type loaded struct {
	path string
	data []byte
	save *sl2.Save
}

// Run はアプリケーションを実行します
func (a *App) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if a.config.RestorePath != "" {
		return a.restore(ctx)
	}

	input, err := a.resolveInput()
	if err != nil {
		return err
	}

	if a.config.Watch {
		return a.watchSave(ctx, input)
	}

	s, err := a.load(ctx, input)
	if err != nil {
		return err
	}

	if a.config.KeepDecrypted != "" {
		if err := a.dump(s); err != nil {
			return err
		}
	}

	if a.config.List {
		return a.list(s)
	}
	return a.patch(ctx, s)
}

// resolveInput は入力ファイルを決定します。指定がなければ自動検出します。
func (a *App) resolveInput() (string, error) {
	if in := a.config.InputPath; in != "" {
		if info, err := a.fs.Stat(in); err == nil && info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrInputIsDirectory, in)
		}
		return in, nil
	}

	found, err := a.finder.Find()
	if err != nil {
		return "", err
	}
	if found == "" {
		var names []string
		for _, t := range sl2.Titles() {
			names = append(names, sl2.ProfileOf(t).SaveFileName)
		}
		return "", fmt.Errorf("%w (%s)", ErrNoSaveFile, strings.Join(names, ", "))
	}
	a.logger.Printf("自動検出したセーブファイル %s を使用します", filepath.Base(found))
	return found, nil
}

// selectProfile は -g の指定、またはセーブファイルの内容からタイトルを決定します
func (a *App) selectProfile(path string, data []byte) (sl2.Profile, error) {
	if a.config.Game != "" {
		return sl2.Lookup(a.config.Game)
	}

	p, err := sl2.Detect(data, filepath.Base(path))
	if err != nil {
		return sl2.Profile{}, fmt.Errorf("%w: %w", ErrSelectTitle, err)
	}
	a.logger.Printf("タイトルを %s と判定しました", p.Name)
	return p, nil
}

// load はセーブファイルを読み込み、すべてのレコードを復号します
func (a *App) load(ctx context.Context, path string) (*loaded, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := a.fs.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewSaveError("読み込み", path, fmt.Errorf("%w: %w", ErrReadFile, err))
	}

	p, err := a.selectProfile(path, data)
	if err != nil {
		return nil, apperrors.NewSaveError("タイトル判定", path, err)
	}

	save, err := sl2.Open(data, p, sl2.WithWorkers(a.config.Workers))
	if err != nil {
		if bnd4.IsFormatError(err) {
			err = fmt.Errorf("%w: %w", apperrors.ErrInvalidSave, err)
		}
		return nil, apperrors.NewSaveError("復号", path, err)
	}

	if a.logger.Enabled() {
		records := save.Container().Records
		for _, pt := range save.Plaintexts() {
			a.logger.Debug().
				Int("record", pt.Index).
				Str("name", records[pt.Index].Name).
				Int("size", len(pt.Data)).
				Int("declared", pt.DeclaredLength).
				Hex("iv", pt.IV).
				Msg("レコードを復号しました")
		}
	}

	a.warnNames(p, save.Slots())
	return &loaded{path: path, data: data, save: save}, nil
}

// warnNames は名前を手がかりにするタイトルで、ASCII以外の文字を含む名前を警告します
func (a *App) warnNames(p sl2.Profile, occ sl2.Occupancy) {
	if p.Currency.Strategy != sl2.NameAnchored {
		return
	}
	for _, slot := range occ.Sorted() {
		if !sl2.IsASCII(occ[slot]) {
			fmt.Fprintf(a.stderr, "警告: スロット #%d のキャラクター名 [%s] にASCII以外の文字が含まれています。%sの書き換えに失敗する場合があります\n",
				slot, occ[slot], report.CurrencyLabel(p.Name))
		}
	}
}

// dump は復号済みのレコードを書き出します
func (a *App) dump(s *loaded) error {
	paths, err := fileutil.DumpRecords(a.fs, a.config.KeepDecrypted, s.save)
	if err != nil {
		return apperrors.NewSaveError("復号データの保存", a.config.KeepDecrypted, err)
	}
	a.logger.Printf("復号済みのレコード %d 件を %s に保存しました", len(paths), a.config.KeepDecrypted)
	return nil
}

// list はスロット一覧を出力します
func (a *App) list(s *loaded) error {
	info := report.NewSaveInfo(s.path, len(s.data), s.save)
	if a.config.JSON {
		data, err := report.ListJSON(info)
		if err != nil {
			return err
		}
		return report.WriteJSON(a.stdout, data)
	}
	return report.WriteList(a.stdout, info)
}

// patch は通貨を書き換えたセーブファイルを出力します
func (a *App) patch(ctx context.Context, s *loaded) error {
	target := uint32(a.config.Num)
	sel := sl2.AllSlots
	if a.config.Slot != int(sl2.AllSlots) {
		sel = sl2.Slot(a.config.Slot)
		a.logger.Printf("スロット #%d を %d に設定します", a.config.Slot, target)
	} else {
		a.logger.Printf("使用中のすべてのスロットを %d に設定します", target)
	}

	res, err := s.save.Patch(target, sel)
	if err != nil {
		return apperrors.NewSaveError("書き換え", s.path, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var backup string
	if a.config.Backup {
		backup, err = fileutil.WriteBackup(a.fs, s.path, s.data)
		if err != nil {
			return apperrors.NewSaveError("バックアップ", s.path, err)
		}
		a.logger.Printf("バックアップを %s に保存しました", backup)
	}

	out := a.config.OutputPath
	if out == "" {
		out = fileutil.GenerateOutputFilename(s.path)
	}
	if err := a.fs.WriteFile(out, res.Data, 0644); err != nil {
		return apperrors.NewSaveError("書き込み", out, fmt.Errorf("%w: %w", ErrWriteFile, err))
	}

	sum := report.NewPatchSummary(s.path, out, backup, s.save.Profile(), target, res)
	if a.config.JSON {
		data, err := report.PatchJSON(sum)
		if err != nil {
			return err
		}
		return report.WriteJSON(a.stdout, data)
	}
	return report.WritePatch(a.stdout, sum)
}

// restore はバックアップを展開して -o に書き出します
func (a *App) restore(ctx context.Context) error {
	src := a.config.RestorePath
	data, err := fileutil.ReadBackup(a.fs, src)
	if err != nil {
		return apperrors.NewSaveError("復元", src, err)
	}
	if _, err := bnd4.Parse(data); err != nil {
		return apperrors.NewSaveError("復元", src, fmt.Errorf("%w: %w", apperrors.ErrInvalidSave, err))
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	out := a.config.OutputPath
	if err := a.fs.WriteFile(out, data, 0644); err != nil {
		return apperrors.NewSaveError("書き込み", out, fmt.Errorf("%w: %w", ErrWriteFile, err))
	}
	fmt.Fprintf(a.stdout, "%s を %s に復元しました\n", src, out)
	return nil
}

// watchSave はスロット一覧を表示し、セーブファイルが更新されるたびに表示し直します
func (a *App) watchSave(ctx context.Context, path string) error {
	refresh := func() error {
		s, err := a.load(ctx, path)
		if err != nil {
			return err
		}
		return a.list(s)
	}

	if err := refresh(); err != nil {
		return err
	}
	return a.watch.Watch(ctx, path, func() error {
		if err := refresh(); err != nil {
			fmt.Fprintf(a.stderr, "警告: %v\n", err)
			return err
		}
		return nil
	})
}
