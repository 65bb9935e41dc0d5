package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"collabboard/internal/pkg/config"
)

func initFileLogger(t *testing.T, cfg config.LogConfig) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	cfg.Format = "json"
	cfg.Output = "file"
	cfg.FilePath = path
	require.NoError(t, Init(&cfg))
	t.Cleanup(func() { _ = Close() })
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	require.NoError(t, Log.Sync())
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(raw)), "\n")
}

func TestNamedUsesComponentLevel(t *testing.T) {
	path := initFileLogger(t, config.LogConfig{
		Level:      "warn",
		Components: map[string]string{"realtime": "debug", "gorm": "error"},
	})

	Named("realtime").Debug("frame in")
	Named("realtime.bus").Debug("relay")
	Named("task").Info("hidden")
	Named("task").Warn("slow")
	Named("gorm").Warn("hidden too")

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"logger":"realtime"`)
	assert.Contains(t, lines[0], `"msg":"frame in"`)
	assert.Contains(t, lines[1], `"logger":"realtime.bus"`)
	assert.Contains(t, lines[2], `"msg":"slow"`)
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init(&config.LogConfig{Level: "loud"}))
	assert.Error(t, Init(&config.LogConfig{Level: "info", Components: map[string]string{"gorm": "chatty"}}))
}

func TestNamedBeforeInitIsNop(t *testing.T) {
	require.NoError(t, Close())
	l := Named("realtime")
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestConnFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zap.New(core).Info("joined", ConnFields("c-1", 7)...)

	entry := logs.All()[0]
	ctx := entry.ContextMap()
	assert.Equal(t, "c-1", ctx["conn_id"])
	assert.Equal(t, int64(7), ctx["user_id"])
}

func TestGormWriterRaisesSlowAndFailedSQL(t *testing.T) {
	path := initFileLogger(t, config.LogConfig{Level: "info"})
	w := NewGormWriter()

	w.Printf("%s\n[%.3fms] [rows:%v] %s", "repo.go:10", 1.5, 1, "SELECT 1")
	w.Printf("%s %s\n[%.3fms] [rows:%v] %s", "repo.go:11", "SLOW SQL >= 200ms", 250.0, 1, "SELECT 2")
	w.Printf("%s %s\n[%.3fms] [rows:%v] %s", "repo.go:12", errors.New("boom"), 1.0, 0, "SELECT 3")

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"level":"INFO"`)
	assert.Contains(t, lines[0], `"logger":"gorm"`)
	assert.Contains(t, lines[1], `"level":"WARN"`)
	assert.Contains(t, lines[2], `"level":"WARN"`)
}
