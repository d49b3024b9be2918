package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderSubmitted = "ORDER_SUBMITTED"
	EventTypeOrderSettled   = "ORDER_SETTLED"
	EventTypeTableSettled   = "TABLE_SETTLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderSubmittedEvent is published after items are attached to a table's
// pending order. Items holds only the newly added lines so the kitchen
// worker never re-prints earlier courses.
type OrderSubmittedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	TableID     int64           `json:"table_id"`
	WaiterID    int64           `json:"waiter_id"`
	Merged      bool            `json:"merged"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []ItemLine      `json:"items"`
}

// OrderSettledEvent is published when a single order is marked paid.
type OrderSettledEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	TableID       int64           `json:"table_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
}

// TableSettledEvent is published when a table's pending orders are closed
// out together with a single payment.
type TableSettledEvent struct {
	BaseEvent
	TableID       int64           `json:"table_id"`
	OrderIDs      []int64         `json:"order_ids"`
	FinalOrderID  int64           `json:"final_order_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
}
