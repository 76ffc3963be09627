package repository

import (
	"context"
	"database/sql"
	"fmt"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
)

// EventLogSchema creates the append-only lifecycle event table.
var EventLogSchema = []string{
	`CREATE TABLE IF NOT EXISTS signal_events (
		event_id   String,
		signal_id  String,
		event_type LowCardinality(String),
		pair       LowCardinality(String),
		status     LowCardinality(String),
		principal  String,
		at         DateTime64(3, 'UTC')
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(at)
	ORDER BY (signal_id, at)`,
}

// ClickHouseEventLog appends lifecycle events to ClickHouse. The table
// is insert-only; corrections happen by appending, never by update.
type ClickHouseEventLog struct {
	db    *sql.DB
	table string
}

var _ drepo.EventLog = (*ClickHouseEventLog)(nil)

func NewClickHouseEventLog(db *sql.DB, table string) *ClickHouseEventLog {
	if table == "" {
		table = "signal_events"
	}
	return &ClickHouseEventLog{db: db, table: table}
}

func (l *ClickHouseEventLog) Append(ctx context.Context, ev *models.SignalEvent) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (event_id, signal_id, event_type, pair, status, principal, at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		l.table)
	_, err := l.db.ExecContext(ctx, q,
		ev.ID,
		ev.SignalID,
		string(ev.Type),
		ev.Pair,
		string(ev.Status),
		ev.Principal,
		ev.At,
	)
	if err != nil {
		return fmt.Errorf("append signal event: %w", err)
	}
	return nil
}
