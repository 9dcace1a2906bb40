package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderEventType string

const (
	OrderPlacedEventName      OrderEventType = "order.placed"
	OrderTicketReadyEventName OrderEventType = "order.ticket_ready"
)

type OrderEventItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderEvent 交易提交後對外發布
type OrderEvent struct {
	EventID    string           `json:"event_id"`
	EventType  OrderEventType   `json:"event_type"`
	OrderID    string           `json:"order_id"`
	UserID     int64            `json:"user_id"`
	Amount     decimal.Decimal  `json:"amount"`
	Items      []OrderEventItem `json:"items,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
