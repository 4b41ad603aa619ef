package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("Error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestHelpersRespectLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text", slog.LevelWarn)
	defer Disable()

	Info("hidden")
	Debugf("hidden %d", 1)
	Warning("walked back more than once", "walkbacks", 2)
	Errorf("failed %s", "badly")
	Always("summary")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "walkbacks=2")
	assert.Contains(t, out, "failed badly")
	assert.Contains(t, out, "level=ALWAYS")
}

func TestDisabledLoggerDropsMessages(t *testing.T) {
	Disable()
	assert.NotPanics(t, func() {
		Info("dropped")
		Warningf("dropped %d", 1)
		Always("dropped")
	})
}

func TestInitializeWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.log")
	cfg := DefaultConfig()
	cfg.ConsoleEnabled = false
	cfg.FileEnabled = true
	cfg.FilePath = path
	require.NoError(t, Initialize(cfg))
	defer Disable()

	Info("Starting simulation", "iterations", 10)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "Starting simulation", entry["msg"])
	assert.Equal(t, float64(10), entry["iterations"])
}

func TestInitializeFileWithoutPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FileEnabled = true
	cfg.FilePath = ""
	assert.Error(t, Initialize(cfg))
}

func TestMultiHandlerFansOut(t *testing.T) {
	var text, js bytes.Buffer
	h := newMultiHandler(
		newHandler(&text, "text", slog.LevelInfo),
		newHandler(&js, "json", slog.LevelError),
	)
	l := slog.New(h).With("run", "abc")
	l.Info("info only")
	l.Error("both")

	assert.Contains(t, text.String(), "info only")
	assert.Contains(t, text.String(), "run=abc")
	assert.NotContains(t, js.String(), "info only")
	assert.Contains(t, js.String(), `"run":"abc"`)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
iterations: 10
logging:
  level: DEBUG
  console_format: json
  file_max_backups: 2
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Level)
	assert.Equal(t, "json", cfg.ConsoleFormat)
	assert.Equal(t, 2, cfg.FileMaxBackups)
	assert.Equal(t, 10, cfg.FileMaxSizeMB)

	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("LOG_FILE_ENABLED", "true")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Level)
	assert.True(t, cfg.FileEnabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
