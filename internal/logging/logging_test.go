package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"ERROR", slog.LevelError},
		{"Debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewWritesJSONToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movinv.log")

	logger, cleanup, err := New("info", path)
	require.NoError(t, err)
	defer cleanup()

	logger.Info("analysis started", "session_id", 7)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"analysis started"`)
	assert.Contains(t, string(data), `"session_id":7`)
}

func TestNewBadLogFilePath(t *testing.T) {
	_, _, err := New("info", filepath.Join(t.TempDir(), "missing", "movinv.log"))
	assert.Error(t, err)
}
