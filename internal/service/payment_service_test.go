package service

import (
	"context"
	"testing"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPaymentServiceWithMocks() (*PaymentService, *MockStore, *MockCache, *MockPublisher) {
	st := new(MockStore)
	cache := new(MockCache)
	pub := new(MockPublisher)
	return NewPaymentService(st, cache, pub, "cash"), st, cache, pub
}

func TestSettleTable(t *testing.T) {
	svc, st, cache, pub := newPaymentServiceWithMocks()
	ctx := context.Background()

	st.On("SettleTable", mock.Anything, int64(5), "card").Return(&store.SettlementResult{
		TableID:       5,
		OrderIDs:      []int64{10, 11},
		FinalOrderID:  11,
		OrdersCount:   2,
		TotalAmount:   decimal.RequireFromString("23.22"),
		PaymentMethod: "card",
		PaidAt:        time.Now(),
	}, nil)
	cache.On("InvalidateTableStatuses", mock.Anything).Return(nil)
	pub.On("PublishTableSettled", mock.Anything, mock.MatchedBy(func(e *models.TableSettledEvent) bool {
		return e.TableID == 5 && e.FinalOrderID == 11 && len(e.OrderIDs) == 2 &&
			e.EventType == models.EventTypeTableSettled
	})).Return(nil)

	resp, err := svc.SettleTable(ctx, 5, "card")

	require.NoError(t, err)
	assert.Equal(t, 2, resp.OrdersCount)
	assert.Equal(t, "card", resp.PaymentMethod)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("23.22")))
	st.AssertExpectations(t)
	cache.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSettleTableDefaultsPaymentMethod(t *testing.T) {
	svc, st, cache, pub := newPaymentServiceWithMocks()
	ctx := context.Background()

	st.On("SettleTable", mock.Anything, int64(5), "cash").Return(&store.SettlementResult{
		TableID:       5,
		OrderIDs:      []int64{10},
		FinalOrderID:  10,
		OrdersCount:   1,
		TotalAmount:   decimal.RequireFromString("18.97"),
		PaymentMethod: "cash",
		PaidAt:        time.Now(),
	}, nil)
	cache.On("InvalidateTableStatuses", mock.Anything).Return(nil)
	pub.On("PublishTableSettled", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.SettleTable(ctx, 5, "")

	require.NoError(t, err)
	assert.Equal(t, "cash", resp.PaymentMethod)
	st.AssertExpectations(t)
}

func TestSettleTableNoPendingOrders(t *testing.T) {
	svc, st, cache, pub := newPaymentServiceWithMocks()
	ctx := context.Background()

	st.On("SettleTable", mock.Anything, int64(5), "cash").Return(nil, store.ErrNoPendingOrders)

	resp, err := svc.SettleTable(ctx, 5, "")

	require.ErrorIs(t, err, store.ErrNoPendingOrders)
	assert.Nil(t, resp)
	cache.AssertNotCalled(t, "InvalidateTableStatuses", mock.Anything)
	pub.AssertNotCalled(t, "PublishTableSettled", mock.Anything, mock.Anything)
}

func TestSettleOrder(t *testing.T) {
	svc, st, cache, pub := newPaymentServiceWithMocks()
	ctx := context.Background()

	st.On("SettleOrder", mock.Anything, int64(10), "cash").Return(&store.SettlementResult{
		TableID:       5,
		OrderIDs:      []int64{10},
		FinalOrderID:  10,
		OrdersCount:   1,
		TotalAmount:   decimal.RequireFromString("18.97"),
		PaymentMethod: "cash",
		PaidAt:        time.Now(),
	}, nil)
	cache.On("InvalidateTableStatuses", mock.Anything).Return(nil)
	pub.On("PublishOrderSettled", mock.Anything, mock.MatchedBy(func(e *models.OrderSettledEvent) bool {
		return e.OrderID == 10 && e.TableID == 5
	})).Return(nil)

	resp, err := svc.SettleOrder(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.OrderID)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("18.97")))
	pub.AssertExpectations(t)
}

func TestSettleOrderAlreadyPaid(t *testing.T) {
	svc, st, cache, pub := newPaymentServiceWithMocks()
	ctx := context.Background()

	st.On("SettleOrder", mock.Anything, int64(10), "cash").Return(nil, store.ErrOrderNotPending)

	resp, err := svc.SettleOrder(ctx, 10)

	require.ErrorIs(t, err, store.ErrOrderNotPending)
	assert.Nil(t, resp)
	cache.AssertNotCalled(t, "InvalidateTableStatuses", mock.Anything)
	pub.AssertNotCalled(t, "PublishOrderSettled", mock.Anything, mock.Anything)
}
