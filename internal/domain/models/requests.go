package models

import "github.com/shopspring/decimal"

// Requests for HTTP endpoints. Defined in domain for consistency and reuse.

type SearchRequest struct {
	Query string `query:"query" json:"query" validate:"required,min=1,max=64"`
	Limit int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=100"`
}

type CreateSignalRequest struct {
	Pair      string `json:"pair" validate:"required,min=2,max=32"`
	Direction string `json:"direction" validate:"required,oneof=buy sell"`
	OrderType string `json:"order_type" default:"market" validate:"oneof=market buy_limit sell_limit"`

	// Price levels accept JSON numbers or strings; zero/missing values for
	// entry, stop_loss and take_profit_1 are rejected in the use case.
	Entry       decimal.Decimal  `json:"entry"`
	StopLoss    decimal.Decimal  `json:"stop_loss"`
	TakeProfit1 decimal.Decimal  `json:"take_profit_1"`
	TakeProfit2 *decimal.Decimal `json:"take_profit_2"`
	TakeProfit3 *decimal.Decimal `json:"take_profit_3"`

	Analysis string `json:"analysis" validate:"max=4000"`
	ImageRef string `json:"image_ref" validate:"max=512"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active breakeven tp1 tp2 tp3 cancelled closed"`
}
