package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction of the trade instruction.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// OrderType of the trade instruction.
type OrderType string

const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeBuyLimit  OrderType = "buy_limit"
	OrderTypeSellLimit OrderType = "sell_limit"
)

// Status of a signal in its lifecycle.
type Status string

const (
	StatusActive    Status = "active"
	StatusBreakEven Status = "breakeven"
	StatusTP1       Status = "tp1"
	StatusTP2       Status = "tp2"
	StatusTP3       Status = "tp3"
	StatusCancelled Status = "cancelled"
	StatusClosed    Status = "closed"
)

// Signal is a published trade instruction. Once persisted it is owned by
// the signal store; all mutation goes through explicit lifecycle calls.
type Signal struct {
	ID   string `json:"id"`
	Pair string `json:"pair"` // free-form symbol, manual entry permitted

	Direction Direction `json:"direction"`
	OrderType OrderType `json:"order_type"`

	Entry       decimal.Decimal  `json:"entry"`
	StopLoss    decimal.Decimal  `json:"stop_loss"`
	TakeProfit1 decimal.Decimal  `json:"take_profit_1"`
	TakeProfit2 *decimal.Decimal `json:"take_profit_2,omitempty"`
	TakeProfit3 *decimal.Decimal `json:"take_profit_3,omitempty"`

	Analysis string `json:"analysis,omitempty"`
	ImageRef string `json:"image_ref,omitempty"`

	Status         Status    `json:"status"`
	FollowersCount int       `json:"followers_count"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsTerminal reports whether s has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusClosed
}

// IsActive is the subscriber-facing "active signal" predicate:
// everything except terminal states.
func (s Status) IsActive() bool {
	return s.Valid() && !s.IsTerminal()
}

// Notifies reports whether a transition into s fans out a notification.
// Cancelled/closed transitions and plain re-saves stay silent.
func (s Status) Notifies() bool {
	switch s {
	case StatusBreakEven, StatusTP1, StatusTP2, StatusTP3:
		return true
	}
	return false
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusBreakEven, StatusTP1, StatusTP2, StatusTP3,
		StatusCancelled, StatusClosed:
		return true
	}
	return false
}

// CanTransition reports whether from → to is a legal lifecycle move.
// The graph is deliberately permissive: any non-terminal state may jump
// to any other status. Terminal states are immutable.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	return !from.IsTerminal()
}

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// ParseDirection converts a wire string into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionBuy:
		return DirectionBuy, nil
	case DirectionSell:
		return DirectionSell, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// ParseOrderType converts a wire string into an OrderType.
// Empty input defaults to market.
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(s) {
	case "":
		return OrderTypeMarket, nil
	case OrderTypeMarket:
		return OrderTypeMarket, nil
	case OrderTypeBuyLimit:
		return OrderTypeBuyLimit, nil
	case OrderTypeSellLimit:
		return OrderTypeSellLimit, nil
	}
	return "", fmt.Errorf("unknown order type %q", s)
}
