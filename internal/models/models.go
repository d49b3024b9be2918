package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem represents an item on the menu
type MenuItem struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Category  string          `db:"category" json:"category"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Active    bool            `db:"active" json:"active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Table represents a physical table in the restaurant
type Table struct {
	ID          int64 `db:"id" json:"id"`
	TableNumber int   `db:"table_number" json:"table_number"`
	Active      bool  `db:"active" json:"active"`
}

// Waiter represents a member of the serving staff
type Waiter struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Order represents a table's running bill, owned by one waiter
type Order struct {
	ID          int64           `db:"id" json:"id"`
	TableID     int64           `db:"table_id" json:"table_id"`
	WaiterID    int64           `db:"waiter_id" json:"waiter_id"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status      string          `db:"status" json:"status"`
	SessionID   string          `db:"session_id" json:"session_id"`
	IsFinalBill bool            `db:"is_final_bill" json:"is_final_bill"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ClosedAt    *time.Time      `db:"closed_at" json:"closed_at,omitempty"`
}

// OrderItem represents a line item on an order. Price is a snapshot taken
// at submission time and never re-priced afterwards.
type OrderItem struct {
	ID             int64           `db:"id" json:"id"`
	OrderID        int64           `db:"order_id" json:"order_id"`
	MenuItemID     int64           `db:"menu_item_id" json:"menu_item_id"`
	Quantity       int             `db:"quantity" json:"quantity"`
	Price          decimal.Decimal `db:"price" json:"price"`
	KitchenPrinted bool            `db:"kitchen_printed" json:"kitchen_printed"`
	AddedAt        time.Time       `db:"added_at" json:"added_at"`
}

// Payment records a settlement event. One payment may cover several orders;
// it is linked to the last order of the settled batch.
type Payment struct {
	ID            int64           `db:"id" json:"id"`
	OrderID       int64           `db:"order_id" json:"order_id"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	PaidAt        time.Time       `db:"paid_at" json:"paid_at"`
}

// Order statuses. pending -> paid is the only transition.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// ItemLine is a (menu item, quantity, price) triple as submitted by a waiter.
type ItemLine struct {
	MenuItemID int64           `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// LineTotal returns quantity x price for one submitted line.
func (l ItemLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ItemsTotal sums quantity x price over submitted lines.
func ItemsTotal(lines []ItemLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// PendingOrderDetail is one pending order with its line items, as shown on
// the table's open tab.
type PendingOrderDetail struct {
	ID          int64               `json:"id"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	CreatedAt   time.Time           `json:"created_at"`
	WaiterName  string              `json:"waiter_name"`
	ItemCount   int                 `json:"item_count"`
	Items       []PendingItemDetail `json:"items"`
}

// PendingItemDetail is one line of a pending order joined with its menu item.
type PendingItemDetail struct {
	Quantity int             `db:"quantity" json:"quantity"`
	Price    decimal.Decimal `db:"price" json:"price"`
	ItemName string          `db:"item_name" json:"item_name"`
	Category string          `db:"category" json:"category"`
}

// TableStatus is one row of the table status board.
type TableStatus struct {
	ID             int64           `db:"id" json:"id"`
	TableNumber    int             `db:"table_number" json:"table_number"`
	Status         string          `db:"status" json:"status"`
	WaiterName     *string         `db:"waiter_name" json:"waiter_name"`
	PendingOrders  int             `db:"pending_orders" json:"pending_orders"`
	PendingTotal   decimal.Decimal `db:"pending_total" json:"pending_total"`
	FirstOrderTime *time.Time      `db:"first_order_time" json:"first_order_time"`
}

// Table board statuses
const (
	TableBoardOccupied  = "occupied"
	TableBoardAvailable = "available"
)
