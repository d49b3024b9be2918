package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pos-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// SubmitOrderParams carries one waiter submission for a table.
type SubmitOrderParams struct {
	TableID   int64
	WaiterID  int64
	Items     []models.ItemLine
	ForceAdd  bool
	SessionID string
}

// SubmitOrderResult reports the order the submission landed on.
type SubmitOrderResult struct {
	OrderID     int64
	Merged      bool
	TotalAmount decimal.Decimal
}

// SettlementResult reports a completed settlement batch.
type SettlementResult struct {
	TableID       int64
	OrderIDs      []int64
	FinalOrderID  int64
	OrdersCount   int
	TotalAmount   decimal.Decimal
	PaymentMethod string
	PaidAt        time.Time
}

type pendingOrderRow struct {
	ID          int64           `db:"id"`
	WaiterID    int64           `db:"waiter_id"`
	TotalAmount decimal.Decimal `db:"total_amount"`
}

// SubmitOrder attaches the submitted items to the table's pending order,
// creating one if none exists, inside a single transaction. The table row is
// locked first so two concurrent submissions cannot both decide "no pending
// order exists" and create two orders for one table.
func (s *Store) SubmitOrder(ctx context.Context, params SubmitOrderParams) (*SubmitOrderResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var tableID int64
	err = tx.GetContext(ctx, &tableID,
		"SELECT id FROM tables WHERE id = $1 FOR UPDATE", params.TableID)
	if err == sql.ErrNoRows {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock table: %w", err)
	}

	var existing pendingOrderRow
	err = tx.GetContext(ctx, &existing, `
		SELECT id, waiter_id, total_amount FROM orders
		WHERE table_id = $1 AND status = 'pending' AND is_final_bill = FALSE
		ORDER BY created_at DESC LIMIT 1
		FOR UPDATE`, params.TableID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up pending order: %w", err)
	}

	result := &SubmitOrderResult{}
	// Local wall-clock time, not the store's UTC default, so timestamps line
	// up with what the floor staff sees.
	now := time.Now()

	if err == sql.ErrNoRows {
		err = tx.GetContext(ctx, &result.OrderID, `
			INSERT INTO orders (table_id, waiter_id, total_amount, status, session_id, created_at)
			VALUES ($1, $2, 0, 'pending', $3, $4)
			RETURNING id`,
			params.TableID, params.WaiterID, params.SessionID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	} else {
		if existing.WaiterID != params.WaiterID && !params.ForceAdd {
			conflict, cerr := s.buildConflict(ctx, tx, params.TableID, existing.WaiterID, params.WaiterID)
			if cerr != nil {
				return nil, cerr
			}
			return nil, conflict
		}
		result.OrderID = existing.ID
		result.Merged = true
	}

	for _, item := range params.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, quantity, price, added_at)
			VALUES ($1, $2, $3, $4, $5)`,
			result.OrderID, item.MenuItemID, item.Quantity, item.Price, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	// Recompute from the stored snapshots rather than trusting the request
	// total, covering old and new lines alike.
	err = tx.GetContext(ctx, &result.TotalAmount, `
		UPDATE orders SET total_amount = (
			SELECT COALESCE(SUM(quantity * price), 0) FROM order_items WHERE order_id = $1
		)
		WHERE id = $1
		RETURNING total_amount`, result.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	return result, nil
}

// buildConflict resolves both waiter names for the 409 payload. Unknown ids
// degrade to a placeholder rather than failing the conflict report.
func (s *Store) buildConflict(ctx context.Context, tx *sqlx.Tx, tableID, existingID, currentID int64) (*ConflictError, error) {
	names := map[int64]string{existingID: "Unknown", currentID: "Unknown"}
	for id := range names {
		var name string
		err := tx.GetContext(ctx, &name, "SELECT name FROM waiters WHERE id = $1", id)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to resolve waiter name: %w", err)
		}
		if err == nil {
			names[id] = name
		}
	}

	return &ConflictError{
		TableID:        tableID,
		ExistingWaiter: names[existingID],
		CurrentWaiter:  names[currentID],
	}, nil
}

// SettleTable marks every pending order for the table paid with one shared
// closure timestamp and records a single payment for the grand total. The
// chronologically last order carries the final-bill flag and the payment
// link. All-or-nothing: any failure rolls the whole batch back.
func (s *Store) SettleTable(ctx context.Context, tableID int64, paymentMethod string) (*SettlementResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var pending []pendingOrderRow
	err = tx.SelectContext(ctx, &pending, `
		SELECT id, waiter_id, total_amount FROM orders
		WHERE table_id = $1 AND status = 'pending'
		ORDER BY created_at ASC
		FOR UPDATE`, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to collect pending orders: %w", err)
	}
	if len(pending) == 0 {
		return nil, ErrNoPendingOrders
	}

	now := time.Now()
	total := decimal.Zero
	orderIDs := make([]int64, len(pending))
	for i, o := range pending {
		total = total.Add(o.TotalAmount)
		orderIDs[i] = o.ID
	}
	finalOrderID := orderIDs[len(orderIDs)-1]

	for _, id := range orderIDs {
		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET status = 'paid', closed_at = $1, is_final_bill = $2
			WHERE id = $3`,
			now, id == finalOrderID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to close order %d: %w", id, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (order_id, total_amount, payment_method, paid_at)
		VALUES ($1, $2, $3, $4)`,
		finalOrderID, total, paymentMethod, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	return &SettlementResult{
		TableID:       tableID,
		OrderIDs:      orderIDs,
		FinalOrderID:  finalOrderID,
		OrdersCount:   len(orderIDs),
		TotalAmount:   total,
		PaymentMethod: paymentMethod,
		PaidAt:        now,
	}, nil
}

// SettleOrder marks a single pending order paid and records its payment.
// Paid orders are immutable: a second call fails with ErrOrderNotPending and
// records nothing.
func (s *Store) SettleOrder(ctx context.Context, orderID int64, paymentMethod string) (*SettlementResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var order struct {
		ID          int64           `db:"id"`
		TableID     int64           `db:"table_id"`
		TotalAmount decimal.Decimal `db:"total_amount"`
		Status      string          `db:"status"`
	}
	err = tx.GetContext(ctx, &order, `
		SELECT id, table_id, total_amount, status FROM orders
		WHERE id = $1
		FOR UPDATE`, orderID)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if order.Status != models.OrderStatusPending {
		return nil, ErrOrderNotPending
	}

	now := time.Now()

	_, err = tx.ExecContext(ctx,
		"UPDATE orders SET status = 'paid', closed_at = $1 WHERE id = $2", now, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to close order: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (order_id, total_amount, payment_method, paid_at)
		VALUES ($1, $2, $3, $4)`,
		orderID, order.TotalAmount, paymentMethod, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	return &SettlementResult{
		TableID:       order.TableID,
		OrderIDs:      []int64{orderID},
		FinalOrderID:  orderID,
		OrdersCount:   1,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: paymentMethod,
		PaidAt:        now,
	}, nil
}

// PendingOrders returns the table's open tab: every pending order with its
// line-item detail, oldest first. Read-only.
func (s *Store) PendingOrders(ctx context.Context, tableID int64) ([]models.PendingOrderDetail, error) {
	type orderRow struct {
		ID          int64           `db:"id"`
		TotalAmount decimal.Decimal `db:"total_amount"`
		CreatedAt   time.Time       `db:"created_at"`
		WaiterName  string          `db:"waiter_name"`
		ItemCount   int             `db:"item_count"`
	}

	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT o.id, o.total_amount, o.created_at,
		       COALESCE(w.name, '') AS waiter_name,
		       COUNT(oi.id) AS item_count
		FROM orders o
		LEFT JOIN waiters w ON o.waiter_id = w.id
		LEFT JOIN order_items oi ON o.id = oi.order_id
		WHERE o.table_id = $1 AND o.status = 'pending'
		GROUP BY o.id, o.total_amount, o.created_at, w.name
		ORDER BY o.created_at`, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending orders: %w", err)
	}

	orders := make([]models.PendingOrderDetail, 0, len(rows))
	for _, row := range rows {
		var items []models.PendingItemDetail
		err := s.db.SelectContext(ctx, &items, `
			SELECT oi.quantity, oi.price, mi.name AS item_name, mi.category
			FROM order_items oi
			JOIN menu_items mi ON oi.menu_item_id = mi.id
			WHERE oi.order_id = $1
			ORDER BY oi.id`, row.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to query order items: %w", err)
		}

		orders = append(orders, models.PendingOrderDetail{
			ID:          row.ID,
			TotalAmount: row.TotalAmount,
			CreatedAt:   row.CreatedAt,
			WaiterName:  row.WaiterName,
			ItemCount:   row.ItemCount,
			Items:       items,
		})
	}

	return orders, nil
}

// TableStatuses returns the status board for all active tables.
func (s *Store) TableStatuses(ctx context.Context) ([]models.TableStatus, error) {
	var statuses []models.TableStatus
	err := s.db.SelectContext(ctx, &statuses, `
		SELECT t.id, t.table_number,
		       CASE WHEN COUNT(o.id) > 0 THEN 'occupied' ELSE 'available' END AS status,
		       STRING_AGG(DISTINCT w.name, ', ') AS waiter_name,
		       COUNT(o.id) AS pending_orders,
		       COALESCE(SUM(o.total_amount), 0) AS pending_total,
		       MIN(o.created_at) AS first_order_time
		FROM tables t
		LEFT JOIN orders o ON t.id = o.table_id AND o.status = 'pending'
		LEFT JOIN waiters w ON o.waiter_id = w.id
		WHERE t.active = TRUE
		GROUP BY t.id, t.table_number
		ORDER BY t.table_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query table statuses: %w", err)
	}
	return statuses, nil
}

// MarkItemsKitchenPrinted flags the order's unprinted line items after the
// kitchen ticket goes out. This is the only mutation line items ever see.
func (s *Store) MarkItemsKitchenPrinted(ctx context.Context, orderID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE order_items SET kitchen_printed = TRUE
		WHERE order_id = $1 AND kitchen_printed = FALSE`, orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark items printed: %w", err)
	}
	return res.RowsAffected()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// GetPaymentByOrderID retrieves the payment linked to an order
func (s *Store) GetPaymentByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment,
		"SELECT * FROM payments WHERE order_id = $1 ORDER BY paid_at DESC LIMIT 1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment not found for order: %d", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
