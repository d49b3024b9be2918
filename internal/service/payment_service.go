package service

import (
	"context"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService handles settlement: the atomic pending -> paid transition
// plus the payment record.
type PaymentService struct {
	store         Store
	cache         StatusCache
	publisher     Publisher
	logger        *zap.Logger
	defaultMethod string
}

// NewPaymentService creates a new payment service
func NewPaymentService(store Store, cache StatusCache, publisher Publisher, defaultMethod string) *PaymentService {
	return &PaymentService{
		store:         store,
		cache:         cache,
		publisher:     publisher,
		logger:        util.GetLogger(),
		defaultMethod: defaultMethod,
	}
}

// SettleTableResponse summarizes a table settlement
type SettleTableResponse struct {
	TableID       int64           `json:"table_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	OrdersCount   int             `json:"orders_count"`
	PaymentMethod string          `json:"payment_method"`
}

// SettleOrderResponse summarizes a single-order settlement
type SettleOrderResponse struct {
	OrderID     int64           `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// SettleTable closes out every pending order for the table with one payment.
func (ps *PaymentService) SettleTable(ctx context.Context, tableID int64, paymentMethod string) (*SettleTableResponse, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.SettleTable")
	defer span.End()

	start := time.Now()
	defer func() {
		util.SettleLatency.Observe(time.Since(start).Seconds())
	}()

	if paymentMethod == "" {
		paymentMethod = ps.defaultMethod
	}

	result, err := ps.store.SettleTable(ctx, tableID, paymentMethod)
	if err != nil {
		ps.countSettleFailure(err)
		return nil, err
	}

	util.TablesSettledTotal.Inc()
	util.OrdersSettledTotal.Add(float64(result.OrdersCount))
	util.PaymentsAmountTotal.Add(result.TotalAmount.InexactFloat64())

	ps.logger.Info("Table settled",
		zap.Int64("table_id", tableID),
		zap.Int("orders_count", result.OrdersCount),
		zap.String("total", result.TotalAmount.String()),
		zap.String("payment_method", paymentMethod))

	if err := ps.cache.InvalidateTableStatuses(ctx); err != nil {
		ps.logger.Error("Failed to invalidate table status cache", zap.Error(err))
	}

	event := &models.TableSettledEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeTableSettled,
			Timestamp: result.PaidAt,
		},
		TableID:       tableID,
		OrderIDs:      result.OrderIDs,
		FinalOrderID:  result.FinalOrderID,
		TotalAmount:   result.TotalAmount,
		PaymentMethod: paymentMethod,
	}
	if err := ps.publisher.PublishTableSettled(ctx, event); err != nil {
		ps.logger.Error("Failed to publish TableSettled event", zap.Error(err))
	}

	return &SettleTableResponse{
		TableID:       tableID,
		TotalAmount:   result.TotalAmount,
		OrdersCount:   result.OrdersCount,
		PaymentMethod: paymentMethod,
	}, nil
}

// SettleOrder marks one pending order paid with the default payment method,
// without prompting for a tendered amount.
func (ps *PaymentService) SettleOrder(ctx context.Context, orderID int64) (*SettleOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.SettleOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.SettleLatency.Observe(time.Since(start).Seconds())
	}()

	result, err := ps.store.SettleOrder(ctx, orderID, ps.defaultMethod)
	if err != nil {
		ps.countSettleFailure(err)
		return nil, err
	}

	util.OrdersSettledTotal.Inc()
	util.PaymentsAmountTotal.Add(result.TotalAmount.InexactFloat64())

	ps.logger.Info("Order settled",
		zap.Int64("order_id", orderID),
		zap.String("total", result.TotalAmount.String()))

	if err := ps.cache.InvalidateTableStatuses(ctx); err != nil {
		ps.logger.Error("Failed to invalidate table status cache", zap.Error(err))
	}

	event := &models.OrderSettledEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderSettled,
			Timestamp: result.PaidAt,
		},
		OrderID:       orderID,
		TableID:       result.TableID,
		TotalAmount:   result.TotalAmount,
		PaymentMethod: ps.defaultMethod,
	}
	if err := ps.publisher.PublishOrderSettled(ctx, event); err != nil {
		ps.logger.Error("Failed to publish OrderSettled event", zap.Error(err))
	}

	return &SettleOrderResponse{
		OrderID:     orderID,
		TotalAmount: result.TotalAmount,
	}, nil
}

func (ps *PaymentService) countSettleFailure(err error) {
	switch err {
	case store.ErrNoPendingOrders, store.ErrOrderNotFound:
		util.SettlementsFailedTotal.WithLabelValues("not_found").Inc()
	case store.ErrOrderNotPending:
		util.SettlementsFailedTotal.WithLabelValues("not_pending").Inc()
	default:
		util.SettlementsFailedTotal.WithLabelValues("db_error").Inc()
	}
}
