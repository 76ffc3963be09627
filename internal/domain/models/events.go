package models

import "time"

// SignalEventType identifies the lifecycle event carried on the bus.
type SignalEventType string

const (
	EventSignalCreated       SignalEventType = "signal.created"
	EventSignalStatusChanged SignalEventType = "signal.status_changed"
	EventSignalDeleted       SignalEventType = "signal.deleted"
)

// SignalEvent is the append-only audit record published for every
// create, status change and delete. Keyed by SignalID on the bus so
// events for one signal stay ordered.
type SignalEvent struct {
	ID        string          `json:"id"`
	SignalID  string          `json:"signal_id"`
	Type      SignalEventType `json:"type"`
	Pair      string          `json:"pair"`
	Status    Status          `json:"status,omitempty"`
	Principal string          `json:"principal,omitempty"`
	At        time.Time       `json:"at"`
}

// Principal is the opaque caller identity threaded through mutating
// operations. Authentication happens outside this subsystem.
type Principal struct {
	ID string
}
