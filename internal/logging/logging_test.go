package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "json", "info")

	logger.Debug("hidden")
	logger.Info("password reset requested", "email", "a@x.com")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "only the info line should be written")
	assert.Equal(t, "password reset requested", entry["msg"])
	assert.Equal(t, "a@x.com", entry["email"])
}

func TestNewLogger_TextIncludesSource(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "", "debug")

	logger.Debug("hello")

	assert.Contains(t, buf.String(), "source=")
	assert.Contains(t, buf.String(), "msg=hello")
}
