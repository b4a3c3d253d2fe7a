package config

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DebugLogger はデバッグ出力を管理します
type DebugLogger struct {
	enabled bool
	logger  zerolog.Logger
}

// NewDebugLoggerWithWriter は出力先を指定してDebugLoggerを作成します
func NewDebugLoggerWithWriter(enabled bool, w io.Writer) *DebugLogger {
	level := zerolog.Disabled
	if enabled {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.TimeOnly}
	return &DebugLogger{
		enabled: enabled,
		logger:  zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

// Enabled はデバッグモードが有効かどうかを返します
func (d *DebugLogger) Enabled() bool {
	return d.enabled
}

// Printf はデバッグモードが有効な場合のみメッセージを表示します
func (d *DebugLogger) Printf(format string, a ...any) {
	if d.enabled {
		d.logger.Debug().Msgf(strings.TrimRight(format, "\n"), a...)
	}
}

// Debug は構造化されたデバッグイベントを返します。無効な場合は何も出力しないイベントです。
func (d *DebugLogger) Debug() *zerolog.Event {
	return d.logger.Debug()
}
