package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"SignalHub/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisQueue is a Redis list backed task queue: LPUSH to enqueue, BRPOP
// in worker loops. Delivery is at-least-once; a worker that dies between
// pop and handle loses the task, which the dispatch layer accepts.
type RedisQueue struct {
	client   *redis.Client
	key      string
	cfg      Config
	log      *logger.Logger
	handlers map[string]Handler
	mu       sync.RWMutex
	wg       sync.WaitGroup
	stopOnce sync.Once
	cancel   context.CancelFunc
}

// NewRedisQueue creates a queue on the given list key.
func NewRedisQueue(client *redis.Client, key string, cfg Config, log *logger.Logger) *RedisQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &RedisQueue{
		client:   client,
		key:      key,
		cfg:      cfg,
		log:      log,
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a task type. Must be called before Start.
func (q *RedisQueue) Register(taskType string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.handlers[taskType]; ok {
		q.log.Warn("queue handler already registered", logger.String("type", taskType))
		return
	}
	q.handlers[taskType] = h
}

// Enqueue pushes a task onto the list.
func (q *RedisQueue) Enqueue(ctx context.Context, taskType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	t := Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	return q.client.LPush(ctx, q.key, b).Err()
}

// Start launches worker goroutines that drain the list.
func (q *RedisQueue) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel

	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
	q.log.Info("queue: started",
		logger.Int("workers", q.cfg.Workers),
		logger.String("key", q.key),
	)
}

// Stop signals workers and waits for them to drain in-flight tasks.
func (q *RedisQueue) Stop(ctx context.Context) error {
	var stopErr error
	q.stopOnce.Do(func() {
		if q.cancel != nil {
			q.cancel()
		}
		done := make(chan struct{})
		go func() {
			q.wg.Wait()
			close(done)
		}()
		select {
		case <-ctx.Done():
			stopErr = fmt.Errorf("timeout waiting for queue workers: %w", ctx.Err())
		case <-done:
		}
	})
	return stopErr
}

func (q *RedisQueue) worker(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := q.client.BRPop(ctx, 2*time.Second, q.key).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			q.log.Error("queue: pop error", logger.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var t Task
		if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
			q.log.Warn("queue: drop malformed task", logger.Error(err))
			continue
		}

		q.mu.RLock()
		h, ok := q.handlers[t.Type]
		q.mu.RUnlock()
		if !ok {
			q.log.Warn("queue: drop task with unknown type", logger.String("type", t.Type))
			continue
		}

		if err := h(ctx, t.Payload); err != nil {
			t.Attempts++
			if t.Attempts >= q.cfg.RetryLimit {
				q.log.Error("queue: drop task after retries",
					logger.String("task_id", t.ID),
					logger.String("type", t.Type),
					logger.Int("attempts", t.Attempts),
					logger.Error(err),
				)
				continue
			}
			q.log.Warn("queue: requeue task",
				logger.String("task_id", t.ID),
				logger.String("type", t.Type),
				logger.Int("attempt", t.Attempts),
				logger.Error(err),
			)
			time.Sleep(q.cfg.RetryDelay)
			if b, merr := json.Marshal(t); merr == nil {
				if perr := q.client.LPush(context.Background(), q.key, b).Err(); perr != nil {
					q.log.Error("queue: requeue failed, task lost", logger.Error(perr))
				}
			}
		}
	}
}
