package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "json")
	log.Debug("hello", "voter_id", "AB12CD34")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "votegate", line["service"])
	assert.Equal(t, "AB12CD34", line["voter_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestMaskContact(t *testing.T) {
	assert.Equal(t, "j***@example.com", MaskContact("jane@example.com"))
	assert.Equal(t, "***1234", MaskContact("+15550001234"))
	assert.Equal(t, "***", MaskContact("12"))
}
