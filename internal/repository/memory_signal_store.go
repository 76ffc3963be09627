package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
)

// MemorySignalStore is the in-process SignalStore used for development
// and tests. Listing order is newest first; a sequence number breaks
// ties between signals created in the same instant.
type MemorySignalStore struct {
	mu   sync.RWMutex
	m    map[string]memEntry
	next uint64
}

type memEntry struct {
	sig *models.Signal
	seq uint64
}

func NewMemorySignalStore() *MemorySignalStore {
	return &MemorySignalStore{m: make(map[string]memEntry)}
}

func (s *MemorySignalStore) Create(ctx context.Context, sig *models.Signal) (*models.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sig
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.next++
	s.m[cp.ID] = memEntry{sig: &cp, seq: s.next}

	out := cp
	return &out, nil
}

func (s *MemorySignalStore) GetByID(ctx context.Context, id string) (*models.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.m[id]
	if !ok {
		return nil, drepo.ErrNotFound
	}
	cp := *e.sig
	return &cp, nil
}

func (s *MemorySignalStore) ListActive(ctx context.Context) ([]*models.Signal, error) {
	return s.list(func(sig *models.Signal) bool { return sig.Status.IsActive() }), nil
}

func (s *MemorySignalStore) ListAll(ctx context.Context) ([]*models.Signal, error) {
	return s.list(func(*models.Signal) bool { return true }), nil
}

func (s *MemorySignalStore) list(keep func(*models.Signal) bool) []*models.Signal {
	s.mu.RLock()
	entries := make([]memEntry, 0, len(s.m))
	for _, e := range s.m {
		if keep(e.sig) {
			entries = append(entries, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].sig.CreatedAt.Equal(entries[j].sig.CreatedAt) {
			return entries[i].seq > entries[j].seq
		}
		return entries[i].sig.CreatedAt.After(entries[j].sig.CreatedAt)
	})

	out := make([]*models.Signal, 0, len(entries))
	for _, e := range entries {
		cp := *e.sig
		out = append(out, &cp)
	}
	return out
}

func (s *MemorySignalStore) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[id]
	if !ok {
		return drepo.ErrNotFound
	}
	e.sig.Status = status
	return nil
}

func (s *MemorySignalStore) IncrementFollowers(ctx context.Context, id string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[id]
	if !ok {
		return 0, drepo.ErrNotFound
	}
	e.sig.FollowersCount += delta
	if e.sig.FollowersCount < 0 {
		e.sig.FollowersCount = 0
	}
	return e.sig.FollowersCount, nil
}

func (s *MemorySignalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return drepo.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *MemorySignalStore) Health(ctx context.Context) error { return nil }

func (s *MemorySignalStore) Close() error { return nil }
