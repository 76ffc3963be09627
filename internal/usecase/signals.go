package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
	pkghttp "SignalHub/pkg/http"
	"SignalHub/pkg/logger"
	"SignalHub/pkg/util"
)

// SignalService owns the signal lifecycle. The primary store is the
// source of truth; the mirror, the event bus and the dispatcher are all
// fed after the primary write succeeds and their failures never unwind
// it.
type SignalService struct {
	store    drepo.SignalStore
	mirror   drepo.MirrorStore // nil when Redis is off
	events   drepo.EventPublisher
	subs     drepo.SubscriberDirectory
	auth     drepo.Authorizer
	dispatch *Dispatcher
	log      *logger.Logger
	metrics  drepo.Metrics
}

func NewSignalService(
	store drepo.SignalStore,
	mirror drepo.MirrorStore,
	events drepo.EventPublisher,
	subs drepo.SubscriberDirectory,
	auth drepo.Authorizer,
	dispatch *Dispatcher,
	log *logger.Logger,
	metrics drepo.Metrics,
) *SignalService {
	return &SignalService{
		store:    store,
		mirror:   mirror,
		events:   events,
		subs:     subs,
		auth:     auth,
		dispatch: dispatch,
		log:      log,
		metrics:  metrics,
	}
}

// Create validates and persists a new signal, then announces it.
func (s *SignalService) Create(ctx context.Context, p models.Principal, req *models.CreateSignalRequest) (*models.Signal, error) {
	if err := s.auth.CanPublish(ctx, p); err != nil {
		return nil, pkghttp.ForbiddenError("principal may not publish signals")
	}

	direction, err := models.ParseDirection(req.Direction)
	if err != nil {
		return nil, pkghttp.ValidationFailedError("direction", err.Error())
	}
	orderType, err := models.ParseOrderType(req.OrderType)
	if err != nil {
		return nil, pkghttp.ValidationFailedError("order_type", err.Error())
	}
	if req.Entry.IsZero() {
		return nil, pkghttp.ValidationFailedError("entry", "entry price is required and must be non-zero")
	}
	if req.StopLoss.IsZero() {
		return nil, pkghttp.ValidationFailedError("stop_loss", "stop loss is required and must be non-zero")
	}
	if req.TakeProfit1.IsZero() {
		return nil, pkghttp.ValidationFailedError("take_profit_1", "take profit 1 is required and must be non-zero")
	}

	sig := &models.Signal{
		ID:          uuid.NewString(),
		Pair:        util.NormalizeQuery(req.Pair),
		Direction:   direction,
		OrderType:   orderType,
		Entry:       req.Entry,
		StopLoss:    req.StopLoss,
		TakeProfit1: req.TakeProfit1,
		TakeProfit2: req.TakeProfit2,
		TakeProfit3: req.TakeProfit3,
		Analysis:    req.Analysis,
		ImageRef:    req.ImageRef,
		Status:      models.StatusActive,
		CreatedBy:   p.ID,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.store.Create(ctx, sig)
	if err != nil {
		s.metrics.RecordError("store_create")
		return nil, pkghttp.InternalError("failed to persist signal")
	}
	s.metrics.RecordSignalCreated(created.Pair)

	s.mirrorSave(created)
	s.publishEvent(created, models.EventSignalCreated, created.Status, p.ID)
	s.dispatch.SignalCreated(ctx, created)

	return created, nil
}

// Get returns one signal by id.
func (s *SignalService) Get(ctx context.Context, id string) (*models.Signal, error) {
	sig, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, drepo.ErrNotFound) {
			return nil, pkghttp.NotFoundErrorf("signal %s not found", id)
		}
		return nil, pkghttp.InternalError("failed to load signal")
	}
	return sig, nil
}

// ListActive returns non-terminal signals, newest first.
func (s *SignalService) ListActive(ctx context.Context) ([]*models.Signal, error) {
	sigs, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, pkghttp.InternalError("failed to list signals")
	}
	return sigs, nil
}

// ListAll returns every signal including terminal ones, newest first.
func (s *SignalService) ListAll(ctx context.Context) ([]*models.Signal, error) {
	sigs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, pkghttp.InternalError("failed to list signals")
	}
	return sigs, nil
}

// UpdateStatus moves a signal through its lifecycle. Terminal signals
// are immutable; milestone transitions fan out to followers.
func (s *SignalService) UpdateStatus(ctx context.Context, p models.Principal, id string, to models.Status) (*models.Signal, error) {
	if err := s.auth.CanPublish(ctx, p); err != nil {
		return nil, pkghttp.ForbiddenError("principal may not mutate signals")
	}
	if !to.Valid() {
		return nil, pkghttp.ValidationFailedError("status", "unknown status")
	}

	sig, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, drepo.ErrNotFound) {
			return nil, pkghttp.NotFoundErrorf("signal %s not found", id)
		}
		return nil, pkghttp.InternalError("failed to load signal")
	}
	if !models.CanTransition(sig.Status, to) {
		return nil, pkghttp.ConflictError("signal is closed and cannot change status")
	}

	if err := s.store.UpdateStatus(ctx, id, to); err != nil {
		s.metrics.RecordError("store_update_status")
		return nil, pkghttp.InternalError("failed to update signal status")
	}
	sig.Status = to
	s.metrics.RecordStatusTransition(string(to))

	s.mirrorSave(sig)
	s.publishEvent(sig, models.EventSignalStatusChanged, to, p.ID)
	s.dispatch.StatusChanged(ctx, sig, to)

	return sig, nil
}

// Follow registers the principal as a follower and bumps the counter.
// Following twice is a no-op on both the directory and the count.
func (s *SignalService) Follow(ctx context.Context, p models.Principal, id string) (*models.Signal, error) {
	sig, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, drepo.ErrNotFound) {
			return nil, pkghttp.NotFoundErrorf("signal %s not found", id)
		}
		return nil, pkghttp.InternalError("failed to load signal")
	}

	added, err := s.subs.Follow(ctx, id, p.ID)
	if err != nil {
		s.metrics.RecordError("follow")
		return nil, pkghttp.InternalError("failed to register follower")
	}
	if added {
		count, err := s.store.IncrementFollowers(ctx, id, 1)
		if err != nil {
			s.metrics.RecordError("follow_count")
			return nil, pkghttp.InternalError("failed to update follower count")
		}
		sig.FollowersCount = count
		s.mirrorSave(sig)
	}
	return sig, nil
}

// Delete removes a signal. Deleting an absent signal succeeds so retries
// are harmless.
func (s *SignalService) Delete(ctx context.Context, p models.Principal, id string) error {
	if err := s.auth.CanPublish(ctx, p); err != nil {
		return pkghttp.ForbiddenError("principal may not delete signals")
	}

	sig, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, drepo.ErrNotFound) {
			return nil
		}
		return pkghttp.InternalError("failed to load signal")
	}

	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, drepo.ErrNotFound) {
		s.metrics.RecordError("store_delete")
		return pkghttp.InternalError("failed to delete signal")
	}

	s.mirrorRemove(id)
	s.publishEvent(sig, models.EventSignalDeleted, sig.Status, p.ID)
	return nil
}

// mirrorSave writes through to the mirror. Best-effort: the mirror may
// lag or miss writes, reads fall back to the primary.
func (s *SignalService) mirrorSave(sig *models.Signal) {
	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.mirror.Save(ctx, sig); err != nil {
			s.log.Warn("mirror save failed", logger.String("signal_id", sig.ID), logger.Error(err))
			s.metrics.RecordError("mirror_save")
		}
	}()
}

func (s *SignalService) mirrorRemove(id string) {
	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.mirror.Remove(ctx, id); err != nil {
			s.log.Warn("mirror remove failed", logger.String("signal_id", id), logger.Error(err))
			s.metrics.RecordError("mirror_remove")
		}
	}()
}

func (s *SignalService) publishEvent(sig *models.Signal, typ models.SignalEventType, status models.Status, principal string) {
	if s.events == nil {
		return
	}
	ev := &models.SignalEvent{
		ID:        uuid.NewString(),
		SignalID:  sig.ID,
		Type:      typ,
		Pair:      sig.Pair,
		Status:    status,
		Principal: principal,
		At:        time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Warn("event publish failed", logger.String("signal_id", sig.ID), logger.Error(err))
			s.metrics.RecordError("event_publish")
		}
	}()
}
