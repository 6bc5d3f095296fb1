package kafka

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
)

func TestSerializeToMessage_Success(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 30, 0, 0, time.UTC)
	o := domain.Outcome{Station: "41001", Path: "data/41001.parquet", Rows: 42, Skipped: 1, FinishedAt: now}

	msg, err := serializeToMessage(o)
	require.NoError(t, err)

	assert.Equal(t, []byte("41001"), msg.Key)
	assert.JSONEq(t, `{"station":"41001","status":"ok","path":"data/41001.parquet","rows":42,"skipped_lines":1,"finished_at":"2024-01-15T00:30:00Z"}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "outcome", msg.Headers[0].Key)
	assert.Equal(t, []byte("ok"), msg.Headers[0].Value)
	assert.Equal(t, "finished_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_Failure(t *testing.T) {
	o := domain.Outcome{Station: "NOPE1", Err: domain.Fail("NOPE1", domain.Unavailable, nil)}

	msg, err := serializeToMessage(o)
	require.NoError(t, err)

	assert.Contains(t, string(msg.Value), `"status":"unavailable"`)
	assert.Contains(t, string(msg.Value), `"error":"station NOPE1: unavailable: data unavailable"`)
	assert.NotContains(t, string(msg.Value), `"path"`)
	assert.Equal(t, []byte("unavailable"), msg.Headers[0].Value)
}

func TestPublish_EmptyIsNoop(t *testing.T) {
	w := NewWriter([]string{"localhost:1"}, "outcomes", slog.Default())
	t.Cleanup(func() { _ = w.Close() })

	assert.NoError(t, w.Publish(context.Background(), nil))
}
