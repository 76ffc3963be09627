package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Handler processes one task payload.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Task is a queued delivery job. Attempts counts handler failures so a
// task is dropped after the retry limit instead of looping forever.
type Task struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Config contains queue tuning.
type Config struct {
	Workers    int
	RetryLimit int
	RetryDelay time.Duration
}

// ParsePayload decodes a raw task payload into T.
func ParsePayload[T any](payload json.RawMessage) (*T, error) {
	var result T
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &result, nil
}
