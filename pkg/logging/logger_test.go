package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	dec := json.NewDecoder(buf)
	for dec.More() {
		var e LogEntry
		require.NoError(t, dec.Decode(&e))
		entries = append(entries, e)
	}
	return entries
}

func TestJSONLoggerOutputShape(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)
	logger.Info("layer sealed", String("layer", "power"), Int("count", 3))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "layer sealed", entries[0].Message)
	assert.Equal(t, "power", entries[0].Fields["layer"])
	assert.Equal(t, float64(3), entries[0].Fields["count"])

	_, err := time.Parse(time.RFC3339Nano, entries[0].Time)
	assert.NoError(t, err)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)
	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, "ERROR", entries[1].Level)

	logger.SetLevel(DebugLevel)
	logger.Debug("now visible")
	entries = decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "DEBUG", entries[0].Level)
}

func TestWithFieldsInherited(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSONLogger(&buf, InfoLevel)
	child := base.With(String("session_id", "abc"))
	child.Info("op", String("ref", "R1"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].Fields["session_id"])
	assert.Equal(t, "R1", entries[0].Fields["ref"])

	// The parent does not pick up the child's fields.
	base.Info("plain")
	entries = decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Fields, "session_id")
}

func TestCallSiteFieldsOverridePreset(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel).With(String("layer", "old"))
	logger.Info("op", String("layer", "new"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Fields["layer"])
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, Field{Key: "ref", Value: "R1"}, Ref("R1"))
	assert.Equal(t, Field{Key: "layer", Value: "power"}, Layer("power"))
	assert.Equal(t, Field{Key: "version", Value: uint64(4)}, Version(4))
	assert.Equal(t, Field{Key: "count", Value: 2}, Count(2))

	err := errors.New("boom")
	assert.Equal(t, Field{Key: "error", Value: "boom"}, Error(err))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("anything else"))
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("discarded", String("k", "v"))
	assert.Equal(t, logger, logger.With(String("k", "v")))
}
