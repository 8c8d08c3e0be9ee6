package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m), buf.String())
	return m
}

func TestLogger_ErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "storefront", Level: zerolog.DebugLevel, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithUserID(ctx, 42)
	log.Error(ctx, "checkout failed", errors.New("boom"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "req-123", entry["request_id"])
	assert.EqualValues(t, 42, entry["user_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "storefront", entry["service"])
	assert.Contains(t, entry, "stack")
}

func TestLogger_WarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Level: zerolog.DebugLevel, Output: buf})
	log.Warn(context.Background(), "no stack")
	assert.NotContains(t, decodeLine(t, buf), "stack")

	buf.Reset()
	log = New(Options{Level: zerolog.DebugLevel, Output: buf, WarnStack: true})
	log.Warn(context.Background(), "with stack")
	assert.Contains(t, decodeLine(t, buf), "stack")
}

func TestLogger_LevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Level: zerolog.WarnLevel, Output: buf})
	log.Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())
}

func TestLogger_WithFieldsDoesNotLeakToParent(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Output: buf})

	parent := context.Background()
	_ = log.WithFields(parent, map[string]any{"path": "/cart"})
	log.Info(parent, "plain")

	assert.NotContains(t, decodeLine(t, buf), "path")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
}
