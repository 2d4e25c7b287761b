package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextAttributesAreAttached(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info").With("component", "test")

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), 7)
	log.InfoContext(ctx, "request accepted", "request_id_field", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "request accepted", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.EqualValues(t, 7, rec["user_id"])
	assert.Equal(t, "test", rec["component"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")
	log.Info("hidden")
	assert.Zero(t, buf.Len())
	log.Warn("shown")
	assert.NotZero(t, buf.Len())
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
