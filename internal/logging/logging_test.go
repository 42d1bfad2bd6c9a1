package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"trace", LevelTrace, true},
		{"DEBUG", LevelDebug, true},
		{" info ", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"WARN", LevelWarn, true},
		{"error", LevelError, true},
		{"loud", LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, err == nil, tt.in)
	}
}

func TestNew_JSONFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "warn", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "url", "https://example.com")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "https://example.com", rec["url"])
}

func TestNew_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "trace", Output: &buf})
	require.NoError(t, err)

	logger.Log(context.Background(), LevelTrace, "deep")
	assert.Contains(t, buf.String(), "level=TRACE")
}

func TestNew_LevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("TRUSTGATE_LOG_LEVEL", "error")

	var buf bytes.Buffer
	logger, level, err := New(Options{Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, LevelError, level.Level())

	logger.Warn("hidden")
	assert.Empty(t, buf.String())
}

func TestNew_BadLevelStillUsable(t *testing.T) {
	var buf bytes.Buffer
	logger, level, err := New(Options{Level: "noisy", Output: &buf})
	require.Error(t, err)
	require.NotNil(t, logger)
	assert.Equal(t, LevelInfo, level.Level())
}

func TestNew_UnknownFormat(t *testing.T) {
	_, _, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}
