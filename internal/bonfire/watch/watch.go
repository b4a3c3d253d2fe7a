// Package watch はセーブファイルの更新を監視します
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shiroemons/go-bonfire/internal/bonfire/interfaces"
)

// DefaultDebounce は連続した書き込みをまとめる待ち時間の既定値です
const DefaultDebounce = 500 * time.Millisecond

// ErrWatch は監視を開始できなかった場合のエラー
var ErrWatch = errors.New("ファイルの監視を開始できませんでした")

// Watcher はfsnotifyでファイルの更新を監視します
type Watcher struct {
	logger   interfaces.Logger
	debounce time.Duration
}

// New は新しいWatcherを作成します
func New(logger interfaces.Logger) *Watcher {
	return &Watcher{logger: logger, debounce: DefaultDebounce}
}

// WithDebounce は待ち時間を変更したWatcherを返します
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	return &Watcher{logger: w.logger, debounce: d}
}

// Watch は path が書き換えられるたびに onChange を呼び出します。
// ゲームはセーブファイルを置き換えることがあるため、親ディレクトリを監視します。
// ctx が終了すると nil を返します。onChange のエラーはログに出力して監視を続けます。
func (w *Watcher) Watch(ctx context.Context, path string, onChange func() error) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWatch, filepath.Dir(target), err)
	}
	w.logger.Printf("監視を開始しました: %s", target)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !matches(event, target) {
				continue
			}
			w.logger.Printf("更新を検知しました: %s", event)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("監視エラー: %v", err)
		case <-fire:
			fire = nil
			if err := onChange(); err != nil {
				w.logger.Printf("更新の処理に失敗しました: %v", err)
			}
		}
	}
}

// matches は event が監視対象のファイルへの書き込みかどうかを返します
func matches(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
