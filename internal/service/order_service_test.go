package service

import (
	"context"
	"testing"

	"pos-service/internal/models"
	"pos-service/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SubmitOrder(ctx context.Context, params store.SubmitOrderParams) (*store.SubmitOrderResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.SubmitOrderResult), args.Error(1)
}

func (m *MockStore) SettleTable(ctx context.Context, tableID int64, paymentMethod string) (*store.SettlementResult, error) {
	args := m.Called(ctx, tableID, paymentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.SettlementResult), args.Error(1)
}

func (m *MockStore) SettleOrder(ctx context.Context, orderID int64, paymentMethod string) (*store.SettlementResult, error) {
	args := m.Called(ctx, orderID, paymentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.SettlementResult), args.Error(1)
}

func (m *MockStore) PendingOrders(ctx context.Context, tableID int64) ([]models.PendingOrderDetail, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingOrderDetail), args.Error(1)
}

func (m *MockStore) TableStatuses(ctx context.Context) ([]models.TableStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TableStatus), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetTableStatuses(ctx context.Context) ([]models.TableStatus, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.TableStatus), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetTableStatuses(ctx context.Context, statuses []models.TableStatus) error {
	args := m.Called(ctx, statuses)
	return args.Error(0)
}

func (m *MockCache) InvalidateTableStatuses(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishOrderSettled(ctx context.Context, event *models.OrderSettledEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishTableSettled(ctx context.Context, event *models.TableSettledEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newOrderServiceWithMocks() (*OrderService, *MockStore, *MockCache, *MockPublisher) {
	st := new(MockStore)
	cache := new(MockCache)
	pub := new(MockPublisher)
	return NewOrderService(st, cache, pub), st, cache, pub
}

func TestSubmitOrderCreatesNewOrder(t *testing.T) {
	svc, st, cache, pub := newOrderServiceWithMocks()
	ctx := context.Background()

	st.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(p store.SubmitOrderParams) bool {
		return p.TableID == 5 && p.WaiterID == 1 && !p.ForceAdd &&
			len(p.Items) == 1 && p.SessionID != ""
	})).Return(&store.SubmitOrderResult{
		OrderID:     10,
		Merged:      false,
		TotalAmount: decimal.RequireFromString("12.99"),
	}, nil)
	cache.On("InvalidateTableStatuses", mock.Anything).Return(nil)
	pub.On("PublishOrderSubmitted", mock.Anything, mock.AnythingOfType("*models.OrderSubmittedEvent")).Return(nil)

	resp, err := svc.SubmitOrder(ctx, &SubmitOrderRequest{
		TableID:  5,
		WaiterID: 1,
		Items: []OrderItemRequest{
			{MenuItemID: 1, Quantity: 1, Price: decimal.RequireFromString("12.99")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.OrderID)
	assert.False(t, resp.Merged)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("12.99")))
	st.AssertExpectations(t)
	cache.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSubmitOrderMergesIntoExisting(t *testing.T) {
	svc, st, cache, pub := newOrderServiceWithMocks()
	ctx := context.Background()

	st.On("SubmitOrder", mock.Anything, mock.Anything).Return(&store.SubmitOrderResult{
		OrderID:     10,
		Merged:      true,
		TotalAmount: decimal.RequireFromString("18.97"),
	}, nil)
	cache.On("InvalidateTableStatuses", mock.Anything).Return(nil)
	pub.On("PublishOrderSubmitted", mock.Anything, mock.MatchedBy(func(e *models.OrderSubmittedEvent) bool {
		// The event carries only the newly submitted lines, not the whole tab.
		return e.OrderID == 10 && e.Merged && len(e.Items) == 1 &&
			e.EventType == models.EventTypeOrderSubmitted && e.EventID != ""
	})).Return(nil)

	resp, err := svc.SubmitOrder(ctx, &SubmitOrderRequest{
		TableID:  5,
		WaiterID: 1,
		Items: []OrderItemRequest{
			{MenuItemID: 5, Quantity: 2, Price: decimal.RequireFromString("2.99")},
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.Merged)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("18.97")))
	pub.AssertExpectations(t)
}

func TestSubmitOrderConflictPassthrough(t *testing.T) {
	svc, st, cache, pub := newOrderServiceWithMocks()
	ctx := context.Background()

	conflict := &store.ConflictError{TableID: 5, ExistingWaiter: "John Doe", CurrentWaiter: "Jane Smith"}
	st.On("SubmitOrder", mock.Anything, mock.Anything).Return(nil, conflict)

	resp, err := svc.SubmitOrder(ctx, &SubmitOrderRequest{
		TableID:  5,
		WaiterID: 2,
		Items: []OrderItemRequest{
			{MenuItemID: 2, Quantity: 1, Price: decimal.RequireFromString("18.50")},
		},
	})

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, store.IsConflict(err))
	// A rejected submission mutates nothing downstream.
	cache.AssertNotCalled(t, "InvalidateTableStatuses", mock.Anything)
	pub.AssertNotCalled(t, "PublishOrderSubmitted", mock.Anything, mock.Anything)
}

func TestSubmitOrderPublishFailureDoesNotFailRequest(t *testing.T) {
	svc, st, cache, pub := newOrderServiceWithMocks()
	ctx := context.Background()

	st.On("SubmitOrder", mock.Anything, mock.Anything).Return(&store.SubmitOrderResult{
		OrderID:     11,
		TotalAmount: decimal.RequireFromString("9.99"),
	}, nil)
	cache.On("InvalidateTableStatuses", mock.Anything).Return(nil)
	pub.On("PublishOrderSubmitted", mock.Anything, mock.Anything).Return(assert.AnError)

	resp, err := svc.SubmitOrder(ctx, &SubmitOrderRequest{
		TableID:  3,
		WaiterID: 1,
		Items: []OrderItemRequest{
			{MenuItemID: 4, Quantity: 1, Price: decimal.RequireFromString("9.99")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), resp.OrderID)
}

func TestPendingSnapshotSumsOrderTotals(t *testing.T) {
	svc, st, _, _ := newOrderServiceWithMocks()
	ctx := context.Background()

	st.On("PendingOrders", mock.Anything, int64(5)).Return([]models.PendingOrderDetail{
		{ID: 10, TotalAmount: decimal.RequireFromString("18.97")},
		{ID: 11, TotalAmount: decimal.RequireFromString("4.25")},
	}, nil)

	resp, err := svc.PendingSnapshot(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.TableID)
	assert.Len(t, resp.Orders, 2)
	assert.True(t, resp.TotalPending.Equal(decimal.RequireFromString("23.22")))
}

func TestTableStatusCacheHit(t *testing.T) {
	svc, st, cache, _ := newOrderServiceWithMocks()
	ctx := context.Background()

	board := []models.TableStatus{{ID: 1, TableNumber: 1, Status: models.TableBoardAvailable}}
	cache.On("GetTableStatuses", mock.Anything).Return(board, true, nil)

	statuses, err := svc.TableStatus(ctx)

	require.NoError(t, err)
	assert.Equal(t, board, statuses)
	st.AssertNotCalled(t, "TableStatuses", mock.Anything)
}

func TestTableStatusCacheMissFallsThrough(t *testing.T) {
	svc, st, cache, _ := newOrderServiceWithMocks()
	ctx := context.Background()

	board := []models.TableStatus{{ID: 1, TableNumber: 1, Status: models.TableBoardOccupied}}
	cache.On("GetTableStatuses", mock.Anything).Return(nil, false, nil)
	st.On("TableStatuses", mock.Anything).Return(board, nil)
	cache.On("SetTableStatuses", mock.Anything, board).Return(nil)

	statuses, err := svc.TableStatus(ctx)

	require.NoError(t, err)
	assert.Equal(t, board, statuses)
	cache.AssertExpectations(t)
}
