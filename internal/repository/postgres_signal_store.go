package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
)

// PostgresSignalStore implements SignalStore on Postgres via pgx.
// Price levels are NUMERIC columns scanned through strings so decimals
// survive the round trip without float truncation.
type PostgresSignalStore struct {
	pool *pgxpool.Pool
}

var _ drepo.SignalStore = (*PostgresSignalStore)(nil)

// NewPostgresSignalStore connects, pings and ensures the schema.
func NewPostgresSignalStore(ctx context.Context, dsn string) (*PostgresSignalStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresSignalStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSignalStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS signals (
			id              UUID PRIMARY KEY,
			pair            TEXT NOT NULL,
			direction       TEXT NOT NULL,
			order_type      TEXT NOT NULL,
			entry           NUMERIC NOT NULL,
			stop_loss       NUMERIC NOT NULL,
			take_profit_1   NUMERIC NOT NULL,
			take_profit_2   NUMERIC,
			take_profit_3   NUMERIC,
			analysis        TEXT NOT NULL DEFAULT '',
			image_ref       TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL,
			followers_count INT NOT NULL DEFAULT 0,
			created_by      TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure signals schema: %w", err)
	}
	return nil
}

const signalColumns = `
	id, pair, direction, order_type,
	entry::text, stop_loss::text, take_profit_1::text, take_profit_2::text, take_profit_3::text,
	analysis, image_ref, status, followers_count, created_by, created_at`

func (s *PostgresSignalStore) Create(ctx context.Context, sig *models.Signal) (*models.Signal, error) {
	cp := *sig
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO signals (
			id, pair, direction, order_type,
			entry, stop_loss, take_profit_1, take_profit_2, take_profit_3,
			analysis, image_ref, status, followers_count, created_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		cp.ID, cp.Pair, string(cp.Direction), string(cp.OrderType),
		cp.Entry.String(), cp.StopLoss.String(), cp.TakeProfit1.String(),
		decimalPtrToString(cp.TakeProfit2), decimalPtrToString(cp.TakeProfit3),
		cp.Analysis, cp.ImageRef, string(cp.Status), cp.FollowersCount, cp.CreatedBy, cp.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert signal: %w", err)
	}
	return &cp, nil
}

func (s *PostgresSignalStore) GetByID(ctx context.Context, id string) (*models.Signal, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+signalColumns+` FROM signals WHERE id = $1`, id)
	sig, err := scanSignal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, drepo.ErrNotFound
		}
		return nil, fmt.Errorf("get signal: %w", err)
	}
	return sig, nil
}

func (s *PostgresSignalStore) ListActive(ctx context.Context) ([]*models.Signal, error) {
	return s.query(ctx, `
		SELECT `+signalColumns+` FROM signals
		WHERE status NOT IN ('cancelled', 'closed')
		ORDER BY created_at DESC, id DESC`)
}

func (s *PostgresSignalStore) ListAll(ctx context.Context) ([]*models.Signal, error) {
	return s.query(ctx, `SELECT `+signalColumns+` FROM signals ORDER BY created_at DESC, id DESC`)
}

func (s *PostgresSignalStore) query(ctx context.Context, q string) ([]*models.Signal, error) {
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	var out []*models.Signal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *PostgresSignalStore) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	tag, err := s.pool.Exec(ctx, `UPDATE signals SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update signal status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return drepo.ErrNotFound
	}
	return nil
}

func (s *PostgresSignalStore) IncrementFollowers(ctx context.Context, id string, delta int) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		UPDATE signals
		SET followers_count = GREATEST(followers_count + $2, 0)
		WHERE id = $1
		RETURNING followers_count`, id, delta).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, drepo.ErrNotFound
		}
		return 0, fmt.Errorf("increment followers: %w", err)
	}
	return count, nil
}

func (s *PostgresSignalStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM signals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete signal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return drepo.ErrNotFound
	}
	return nil
}

func (s *PostgresSignalStore) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresSignalStore) Close() error {
	s.pool.Close()
	return nil
}

func scanSignal(row pgx.Row) (*models.Signal, error) {
	var (
		sig                   models.Signal
		direction, orderType  string
		status                string
		entry, stop, tp1      string
		tp2, tp3              *string
	)
	err := row.Scan(
		&sig.ID, &sig.Pair, &direction, &orderType,
		&entry, &stop, &tp1, &tp2, &tp3,
		&sig.Analysis, &sig.ImageRef, &status, &sig.FollowersCount, &sig.CreatedBy, &sig.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	sig.Direction = models.Direction(direction)
	sig.OrderType = models.OrderType(orderType)
	sig.Status = models.Status(status)

	if sig.Entry, err = decimal.NewFromString(entry); err != nil {
		return nil, fmt.Errorf("parse entry: %w", err)
	}
	if sig.StopLoss, err = decimal.NewFromString(stop); err != nil {
		return nil, fmt.Errorf("parse stop_loss: %w", err)
	}
	if sig.TakeProfit1, err = decimal.NewFromString(tp1); err != nil {
		return nil, fmt.Errorf("parse take_profit_1: %w", err)
	}
	if sig.TakeProfit2, err = decimalFromStringPtr(tp2); err != nil {
		return nil, fmt.Errorf("parse take_profit_2: %w", err)
	}
	if sig.TakeProfit3, err = decimalFromStringPtr(tp3); err != nil {
		return nil, fmt.Errorf("parse take_profit_3: %w", err)
	}
	return &sig, nil
}

func decimalPtrToString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func decimalFromStringPtr(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
