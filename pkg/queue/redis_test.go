package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalHub/pkg/logger"
)

func TestNewRedisQueueAppliesDefaults(t *testing.T) {
	q := NewRedisQueue(nil, "dispatch", Config{}, logger.Nop())

	assert.Equal(t, 1, q.cfg.Workers)
	assert.Equal(t, 3, q.cfg.RetryLimit)
	assert.Equal(t, 2*time.Second, q.cfg.RetryDelay)
}

func TestRegisterKeepsFirstHandler(t *testing.T) {
	q := NewRedisQueue(nil, "dispatch", Config{}, logger.Nop())

	var called string
	q.Register("push.broadcast", func(ctx context.Context, payload json.RawMessage) error {
		called = "first"
		return nil
	})
	q.Register("push.broadcast", func(ctx context.Context, payload json.RawMessage) error {
		called = "second"
		return nil
	})

	h, ok := q.handlers["push.broadcast"]
	require.True(t, ok)
	require.NoError(t, h(context.Background(), nil))
	assert.Equal(t, "first", called)
}

func TestParsePayloadRejectsMalformedJSON(t *testing.T) {
	type job struct {
		Title string `json:"title"`
	}

	got, err := ParsePayload[job](json.RawMessage(`{"title":"tp1 hit"}`))
	require.NoError(t, err)
	assert.Equal(t, "tp1 hit", got.Title)

	_, err = ParsePayload[job](json.RawMessage(`{broken`))
	assert.Error(t, err)
}
