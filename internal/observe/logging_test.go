// file: internal/observe/logging_test.go
package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range testCases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("view loaded", "screen", "suivi", "generation", 3)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "debug is below the level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "view loaded", entry["msg"])
	assert.Equal(t, "suivi", entry["screen"])
	assert.EqualValues(t, 3, entry["generation"])
	assert.Contains(t, entry, "source")
}

func TestInitLogger_File(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	path := filepath.Join(t.TempDir(), "logs", "gestionbc.log")
	closer := InitLogger("debug", LogFile{Path: path})
	slog.Debug("written to file", "k", "v")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"written to file"`)
}

func TestInitLogger_StdoutOnly(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	closer := InitLogger("info", LogFile{})
	assert.NoError(t, closer.Close())
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}
