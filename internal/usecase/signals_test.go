package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalHub/internal/domain/models"
	"SignalHub/internal/repository"
	"SignalHub/internal/service/auth"
	pkghttp "SignalHub/pkg/http"
	"SignalHub/pkg/logger"
)

type fakePusher struct {
	mu         sync.Mutex
	broadcasts []string
	sends      map[string][]string // principal -> bodies
	fail       bool
}

func newFakePusher() *fakePusher {
	return &fakePusher{sends: make(map[string][]string)}
}

func (p *fakePusher) Broadcast(ctx context.Context, title, body string, data map[string]string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return 0, errors.New("gateway down")
	}
	p.broadcasts = append(p.broadcasts, body)
	return 1, nil
}

func (p *fakePusher) SendToPrincipal(ctx context.Context, principalID, title, body string, data map[string]string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return false, errors.New("gateway down")
	}
	p.sends[principalID] = append(p.sends[principalID], body)
	return true, nil
}

func (p *fakePusher) broadcastCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.broadcasts)
}

func (p *fakePusher) sentTo(principalID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sends[principalID])
}

type signalFixture struct {
	svc    *SignalService
	pusher *fakePusher
	subs   *repository.MemorySubscribers
}

func newSignalFixture(operators ...string) *signalFixture {
	pusher := newFakePusher()
	subs := repository.NewMemorySubscribers()
	dispatch := NewDispatcher(pusher, subs, logger.Nop(), nopMetrics{})
	svc := NewSignalService(
		repository.NewMemorySignalStore(),
		nil, // no mirror
		nil, // no event bus
		subs,
		auth.New(operators),
		dispatch,
		logger.Nop(),
		nopMetrics{},
	)
	return &signalFixture{svc: svc, pusher: pusher, subs: subs}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func validCreateRequest() *models.CreateSignalRequest {
	return &models.CreateSignalRequest{
		Pair:        "xauusd",
		Direction:   "buy",
		OrderType:   "buy_limit",
		Entry:       dec("2412.50"),
		StopLoss:    dec("2398.00"),
		TakeProfit1: dec("2425.00"),
		TakeProfit2: decPtr("2440.00"),
		Analysis:    "liquidity sweep below asia low",
	}
}

var operator = models.Principal{ID: "op-1"}

func TestCreateSignal(t *testing.T) {
	f := newSignalFixture()

	sig, err := f.svc.Create(context.Background(), operator, validCreateRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, sig.ID)
	assert.Equal(t, "XAUUSD", sig.Pair, "pair is canonicalized")
	assert.Equal(t, models.StatusActive, sig.Status)
	assert.Equal(t, models.OrderTypeBuyLimit, sig.OrderType)
	assert.Equal(t, "op-1", sig.CreatedBy)
	assert.False(t, sig.CreatedAt.IsZero())
	assert.True(t, sig.Entry.Equal(dec("2412.50")), "decimal survives intact")
	require.NotNil(t, sig.TakeProfit2)
	assert.True(t, sig.TakeProfit2.Equal(dec("2440.00")))
	assert.Nil(t, sig.TakeProfit3)

	assert.Equal(t, 1, f.pusher.broadcastCount(), "create broadcasts to everyone")
}

func TestCreateSignalRejectsZeroPrices(t *testing.T) {
	f := newSignalFixture()

	cases := []struct {
		field  string
		mutate func(*models.CreateSignalRequest)
	}{
		{"entry", func(r *models.CreateSignalRequest) { r.Entry = decimal.Zero }},
		{"stop_loss", func(r *models.CreateSignalRequest) { r.StopLoss = decimal.Zero }},
		{"take_profit_1", func(r *models.CreateSignalRequest) { r.TakeProfit1 = decimal.Zero }},
	}
	for _, tc := range cases {
		req := validCreateRequest()
		tc.mutate(req)

		_, err := f.svc.Create(context.Background(), operator, req)
		require.Error(t, err, "field %s", tc.field)

		var appErr *pkghttp.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "ERR_VALIDATION", appErr.Code)
		assert.Equal(t, tc.field, appErr.Field)
	}
}

func TestCreateSignalRequiresAllowlistedPrincipal(t *testing.T) {
	f := newSignalFixture("op-1")

	_, err := f.svc.Create(context.Background(), models.Principal{ID: "stranger"}, validCreateRequest())
	var appErr *pkghttp.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ERR_FORBIDDEN", appErr.Code)

	_, err = f.svc.Create(context.Background(), operator, validCreateRequest())
	require.NoError(t, err)
}

func TestListActiveExcludesTerminal(t *testing.T) {
	f := newSignalFixture()
	ctx := context.Background()

	a, err := f.svc.Create(ctx, operator, validCreateRequest())
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, operator, validCreateRequest())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, operator, a.ID, models.StatusClosed)
	require.NoError(t, err)

	active, err := f.svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateStatusNotifiesFollowersOnMilestones(t *testing.T) {
	f := newSignalFixture()
	ctx := context.Background()

	sig, err := f.svc.Create(ctx, operator, validCreateRequest())
	require.NoError(t, err)

	follower := models.Principal{ID: "sub-1"}
	_, err = f.svc.Follow(ctx, follower, sig.ID)
	require.NoError(t, err)

	// milestone: followers get pushed
	_, err = f.svc.UpdateStatus(ctx, operator, sig.ID, models.StatusTP1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.pusher.sentTo("sub-1"))

	// silent statuses: no push
	_, err = f.svc.UpdateStatus(ctx, operator, sig.ID, models.StatusActive)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, operator, sig.ID, models.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, 1, f.pusher.sentTo("sub-1"))
}

func TestUpdateStatusTerminalIsImmutable(t *testing.T) {
	f := newSignalFixture()
	ctx := context.Background()

	sig, err := f.svc.Create(ctx, operator, validCreateRequest())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, operator, sig.ID, models.StatusCancelled)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, operator, sig.ID, models.StatusActive)
	var appErr *pkghttp.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ERR_CONFLICT", appErr.Code)

	got, err := f.svc.Get(ctx, sig.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestUpdateStatusUnknownSignal(t *testing.T) {
	f := newSignalFixture()

	_, err := f.svc.UpdateStatus(context.Background(), operator, "nope", models.StatusTP1)
	var appErr *pkghttp.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ERR_NOT_FOUND", appErr.Code)
}

func TestFollowIsIdempotent(t *testing.T) {
	f := newSignalFixture()
	ctx := context.Background()

	sig, err := f.svc.Create(ctx, operator, validCreateRequest())
	require.NoError(t, err)

	follower := models.Principal{ID: "sub-1"}
	got, err := f.svc.Follow(ctx, follower, sig.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FollowersCount)

	got, err = f.svc.Follow(ctx, follower, sig.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FollowersCount, "second follow does not bump the count")
}

func TestDeleteIsIdempotent(t *testing.T) {
	f := newSignalFixture()
	ctx := context.Background()

	sig, err := f.svc.Create(ctx, operator, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, operator, sig.ID))
	require.NoError(t, f.svc.Delete(ctx, operator, sig.ID), "deleting an absent signal succeeds")

	_, err = f.svc.Get(ctx, sig.ID)
	var appErr *pkghttp.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ERR_NOT_FOUND", appErr.Code)
}

func TestPushFailureDoesNotRollBackMutation(t *testing.T) {
	f := newSignalFixture()
	f.pusher.fail = true
	ctx := context.Background()

	sig, err := f.svc.Create(ctx, operator, validCreateRequest())
	require.NoError(t, err, "create succeeds even when the gateway is down")

	_, err = f.svc.Follow(ctx, models.Principal{ID: "sub-1"}, sig.ID)
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(ctx, operator, sig.ID, models.StatusTP1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTP1, updated.Status, "status sticks despite failed push")
}
