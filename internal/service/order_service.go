package service

import (
	"context"
	"fmt"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is the ledger persistence surface the services operate on.
// *store.Store is the production implementation.
type Store interface {
	SubmitOrder(ctx context.Context, params store.SubmitOrderParams) (*store.SubmitOrderResult, error)
	SettleTable(ctx context.Context, tableID int64, paymentMethod string) (*store.SettlementResult, error)
	SettleOrder(ctx context.Context, orderID int64, paymentMethod string) (*store.SettlementResult, error)
	PendingOrders(ctx context.Context, tableID int64) ([]models.PendingOrderDetail, error)
	TableStatuses(ctx context.Context) ([]models.TableStatus, error)
}

// StatusCache caches the table status board.
type StatusCache interface {
	GetTableStatuses(ctx context.Context) ([]models.TableStatus, bool, error)
	SetTableStatuses(ctx context.Context, statuses []models.TableStatus) error
	InvalidateTableStatuses(ctx context.Context) error
}

// Publisher publishes ledger domain events.
type Publisher interface {
	PublishOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error
	PublishOrderSettled(ctx context.Context, event *models.OrderSettledEvent) error
	PublishTableSettled(ctx context.Context, event *models.TableSettledEvent) error
}

// OrderService handles order submission and pending-state reads
type OrderService struct {
	store     Store
	cache     StatusCache
	publisher Publisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store Store, cache StatusCache, publisher Publisher) *OrderService {
	return &OrderService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// SubmitOrderRequest represents one waiter submission for a table
type SubmitOrderRequest struct {
	TableID  int64              `json:"table_id" binding:"required"`
	WaiterID int64              `json:"waiter_id" binding:"required"`
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ForceAdd bool               `json:"force_add"`
}

// OrderItemRequest represents an item in a submission. Price is the snapshot
// taken at the register; it is stored as-is and never re-priced.
type OrderItemRequest struct {
	MenuItemID int64           `json:"menu_item_id" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required,min=1"`
	Price      decimal.Decimal `json:"price"`
}

// SubmitOrderResponse reports where the submission landed
type SubmitOrderResponse struct {
	OrderID     int64           `json:"order_id"`
	Merged      bool            `json:"merged"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// TableOrdersResponse is the table's open tab
type TableOrdersResponse struct {
	TableID      int64                       `json:"table_id"`
	Orders       []models.PendingOrderDetail `json:"orders"`
	TotalPending decimal.Decimal             `json:"total_pending"`
}

// SubmitOrder attaches the submitted items to the table's pending order,
// creating one when the table is free. A pending order owned by another
// waiter rejects the submission with a conflict unless force_add is set.
func (s *OrderService) SubmitOrder(ctx context.Context, req *SubmitOrderRequest) (*SubmitOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SubmitOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.SubmitLatency.Observe(time.Since(start).Seconds())
	}()

	items := make([]models.ItemLine, len(req.Items))
	for i, item := range req.Items {
		items[i] = models.ItemLine{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Price:      item.Price,
		}
	}

	result, err := s.store.SubmitOrder(ctx, store.SubmitOrderParams{
		TableID:   req.TableID,
		WaiterID:  req.WaiterID,
		Items:     items,
		ForceAdd:  req.ForceAdd,
		SessionID: uuid.New().String(),
	})
	if err != nil {
		if store.IsConflict(err) {
			util.OrderConflictsTotal.Inc()
			s.logger.Warn("Submission conflict",
				zap.Int64("table_id", req.TableID),
				zap.Int64("waiter_id", req.WaiterID))
		} else {
			util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		}
		return nil, err
	}

	mode := "created"
	if result.Merged {
		mode = "merged"
		if req.ForceAdd {
			mode = "forced"
		}
	}
	util.OrdersSubmittedTotal.WithLabelValues(mode).Inc()

	s.logger.Info("Order submission accepted",
		zap.Int64("order_id", result.OrderID),
		zap.Int64("table_id", req.TableID),
		zap.Int64("waiter_id", req.WaiterID),
		zap.Bool("merged", result.Merged),
		zap.String("total", result.TotalAmount.String()))

	if err := s.cache.InvalidateTableStatuses(ctx); err != nil {
		s.logger.Error("Failed to invalidate table status cache", zap.Error(err))
	}

	event := &models.OrderSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderSubmitted,
			Timestamp: time.Now(),
		},
		OrderID:     result.OrderID,
		TableID:     req.TableID,
		WaiterID:    req.WaiterID,
		Merged:      result.Merged,
		TotalAmount: result.TotalAmount,
		Items:       items,
	}
	if err := s.publisher.PublishOrderSubmitted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderSubmitted event", zap.Error(err))
	}

	return &SubmitOrderResponse{
		OrderID:     result.OrderID,
		Merged:      result.Merged,
		TotalAmount: result.TotalAmount,
	}, nil
}

// PendingSnapshot returns the table's pending orders with line-item detail
// and the running total. Read-only.
func (s *OrderService) PendingSnapshot(ctx context.Context, tableID int64) (*TableOrdersResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PendingSnapshot")
	defer span.End()

	orders, err := s.store.PendingOrders(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending orders: %w", err)
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}

	return &TableOrdersResponse{
		TableID:      tableID,
		Orders:       orders,
		TotalPending: total,
	}, nil
}

// TableStatus returns the status board, served from cache when fresh.
func (s *OrderService) TableStatus(ctx context.Context) ([]models.TableStatus, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.TableStatus")
	defer span.End()

	cached, ok, err := s.cache.GetTableStatuses(ctx)
	if err != nil {
		s.logger.Error("Table status cache read failed", zap.Error(err))
	}
	if ok {
		util.TableStatusCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	util.TableStatusCacheHits.WithLabelValues("miss").Inc()

	statuses, err := s.store.TableStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load table statuses: %w", err)
	}

	if err := s.cache.SetTableStatuses(ctx, statuses); err != nil {
		s.logger.Error("Failed to cache table statuses", zap.Error(err))
	}

	return statuses, nil
}
