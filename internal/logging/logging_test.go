package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func newTestLogger(t *testing.T, level Level) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.Console = &buf
	l, err := New(cfg)
	require.NoError(t, err)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }
	return l, &buf
}

func TestLoggerFormat(t *testing.T) {
	l, buf := newTestLogger(t, LevelInfo)

	l.Info("scanner", "Scan complete", F("titles", 12), F("files", 40))
	l.Error("audit", "Probe failed", errors.New("exit status 1"), F("path", "a.mkv"))

	assert.Equal(t,
		"2026-01-02T15:04:05Z [INFO] [scanner] Scan complete | titles=12 | files=40\n"+
			"2026-01-02T15:04:05Z [ERROR] [audit] Probe failed | error=exit status 1 | path=a.mkv\n",
		buf.String())
}

func TestLoggerLevelFilter(t *testing.T) {
	l, buf := newTestLogger(t, LevelWarn)

	l.Debug("x", "debug")
	l.Info("x", "info")
	assert.Empty(t, buf.String())

	l.Warn("x", "warn")
	assert.Contains(t, buf.String(), "[WARN] [x] warn")

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	l.Debug("x", "now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "jellyname.log")
	cfg := DefaultConfig()
	cfg.File = path
	cfg.Console = &bytes.Buffer{}

	l, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, path, l.FilePath())

	l.Info("test", "to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] [test] to file")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("x", "dropped", errors.New("boom"))
	assert.Empty(t, l.FilePath())
	assert.NoError(t, l.Close())
}
