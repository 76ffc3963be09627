package repository

import (
	"context"
	"errors"

	"SignalHub/internal/domain/models"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Provider adapts exactly one upstream market-data source. Implementations
// never propagate upstream failures: a network error, timeout or malformed
// payload yields an empty result and a log line, so one bad provider cannot
// abort a multi-provider search. Retry policy belongs to the caller.
type Provider interface {
	ID() string
	Search(ctx context.Context, query string) ([]models.RawAsset, error)
	Quote(ctx context.Context, symbol string) (*models.RawQuote, error)
	// Popular returns the provider's head-of-list or top-by-volume slice.
	Popular(ctx context.Context, n int) ([]models.RawAsset, error)
	// Count returns the provider-reported instrument total, 0 if unknown.
	Count(ctx context.Context) int
}

// QuoteStream is a live ticker feed used to keep quote caches warm.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.RawQuote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// SignalStore is the persistence contract for signals. The store assigns
// id and createdAt when absent. Status and follower updates are partial
// writes and must not clobber unrelated fields.
type SignalStore interface {
	Create(ctx context.Context, s *models.Signal) (*models.Signal, error)
	GetByID(ctx context.Context, id string) (*models.Signal, error)
	ListActive(ctx context.Context) ([]*models.Signal, error)
	ListAll(ctx context.Context) ([]*models.Signal, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	IncrementFollowers(ctx context.Context, id string, delta int) (int, error)
	Delete(ctx context.Context, id string) error
	Health(ctx context.Context) error
	Close() error
}

// MirrorStore is the low-latency read projection of the signal store.
// Writes are best-effort and eventually consistent; the primary store
// remains the source of truth.
type MirrorStore interface {
	Save(ctx context.Context, s *models.Signal) error
	Remove(ctx context.Context, id string) error
}

// EventPublisher puts lifecycle events on the bus, keyed by signal id.
type EventPublisher interface {
	Publish(ctx context.Context, ev *models.SignalEvent) error
	Close() error
}

// EventLog is the append-only audit sink for lifecycle events.
type EventLog interface {
	Append(ctx context.Context, ev *models.SignalEvent) error
}

// Pusher is the consumed notification boundary. Both operations are
// best-effort and non-transactional.
type Pusher interface {
	Broadcast(ctx context.Context, title, body string, data map[string]string) (int, error)
	SendToPrincipal(ctx context.Context, principalID, title, body string, data map[string]string) (bool, error)
}

// SubscriberDirectory tracks which principals follow a signal. Plan
// entitlement checks live behind the push gateway, not here.
type SubscriberDirectory interface {
	Follow(ctx context.Context, signalID, principalID string) (bool, error)
	Followers(ctx context.Context, signalID string) ([]string, error)
}

// Authorizer validates that a principal may publish or mutate signals.
// Supplied by an external collaborator; the in-repo implementation is a
// config-driven allowlist.
type Authorizer interface {
	CanPublish(ctx context.Context, p models.Principal) error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordProviderRequest(provider, op, result string)
	RecordProviderLatency(provider string, seconds float64)
	RecordCacheLookup(cache, outcome string)
	RecordSignalCreated(pair string)
	RecordStatusTransition(status string)
	RecordDispatch(kind, result string)
	RecordError(kind string)
}
