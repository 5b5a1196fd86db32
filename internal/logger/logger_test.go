package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextAddsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { InitWithWriter("test", &bytes.Buffer{}) })

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-9")
	CtxInfo(ctx, "barter accepted", "barter_id", "b-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "barter accepted", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "user-9", entry["user_id"])
	assert.Equal(t, "b-1", entry["barter_id"])
}

func TestWorkerLogLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { InitWithWriter("test", &bytes.Buffer{}) })

	WorkerLog("presence_sweeper", "sweep", nil)
	assert.Empty(t, buf.String(), "successful runs are debug-level")

	WorkerLog("presence_sweeper", "sweep", assert.AnError)
	assert.Contains(t, buf.String(), "worker operation failed")
	assert.Contains(t, buf.String(), "presence_sweeper")
}
