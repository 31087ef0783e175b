package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultSilent(t *testing.T) {
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if L().Enabled(context.Background(), level) {
			t.Errorf("default logger enabled for %v", level)
		}
	}
}

func TestInitWritesAtLevel(t *testing.T) {
	orig := L()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	Init(&buf, "warn")

	L().Info("hidden")
	L().Warn("visible", "x", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record leaked at warn level: %s", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "x=1") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestSetLoggerNil(t *testing.T) {
	orig := L()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(nil)
	if L() == nil {
		t.Fatal("L() returned nil")
	}
	if L().Enabled(context.Background(), slog.LevelError) {
		t.Error("nil logger should restore silent default")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetLevel(t *testing.T) {
	orig := L()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	Init(&buf, "error")
	L().Info("before")
	SetLevel("debug")
	L().Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Errorf("level change not applied: %s", out)
	}
}
