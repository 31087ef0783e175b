// Package logger はブリッジ全体で共有する診断用テキストシンクを提供する
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

// nopHandler はすべてのレコードを破棄する slog.Handler
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

// level は Init で作ったロガーのレベル。実行中に SetLevel で変更できる
var level slog.LevelVar

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger は使用するロガーを差し替える。nil を渡すと出力を無効にする
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// L は現在のロガーを返す
func L() *slog.Logger {
	return loggerPtr.Load()
}

// Init は設定されたレベルでテキスト形式のロガーを w に向けて構成する
func Init(w io.Writer, lvl string) *slog.Logger {
	level.Set(ParseLevel(lvl))
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &level}))
	SetLogger(l)
	return l
}

// SetLevel は Init で構成したロガーのレベルを変更する
func SetLevel(lvl string) {
	level.Set(ParseLevel(lvl))
}

// ParseLevel はレベル名を slog.Level に変換する。不明な値は info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
