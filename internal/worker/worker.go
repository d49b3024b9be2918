package worker

import (
	"context"

	"pos-service/internal/broker"
	"pos-service/internal/kitchen"
	"pos-service/internal/models"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// Store is the slice of persistence the kitchen worker needs.
type Store interface {
	GetMenuItemByID(ctx context.Context, id int64) (*models.MenuItem, error)
	GetWaiterByID(ctx context.Context, id int64) (*models.Waiter, error)
	MarkItemsKitchenPrinted(ctx context.Context, orderID int64) (int64, error)
}

// KitchenWorker consumes order submissions and dispatches kitchen tickets.
// After a ticket goes out it flags the order's new line items as printed,
// the one mutation line items ever receive.
type KitchenWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        Store
	logger       *zap.Logger
}

// NewKitchenWorker creates a new kitchen worker
func NewKitchenWorker(consumer *broker.Consumer, store Store) *KitchenWorker {
	w := &KitchenWorker{
		consumer: consumer,
		store:    store,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderSubmitted(w.handleOrderSubmitted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *KitchenWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting kitchen worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *KitchenWorker) Stop() error {
	w.logger.Info("Stopping kitchen worker")
	return w.consumer.Close()
}

func (w *KitchenWorker) handleOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error {
	waiterName := "Unassigned"
	if waiter, err := w.store.GetWaiterByID(ctx, event.WaiterID); err == nil {
		waiterName = waiter.Name
	}

	names := make(map[int64]string, len(event.Items))
	for _, item := range event.Items {
		if _, ok := names[item.MenuItemID]; ok {
			continue
		}
		menuItem, err := w.store.GetMenuItemByID(ctx, item.MenuItemID)
		if err != nil {
			w.logger.Warn("Menu item lookup failed for kitchen ticket",
				zap.Int64("menu_item_id", item.MenuItemID),
				zap.Error(err))
			continue
		}
		names[item.MenuItemID] = menuItem.Name
	}

	ticket := kitchen.Ticket{
		OrderID:    event.OrderID,
		TableID:    event.TableID,
		WaiterName: waiterName,
		Items:      event.Items,
		ItemNames:  names,
		CreatedAt:  event.Timestamp,
	}

	// The physical printer is a line printer on the kitchen pass; the
	// rendered ticket goes to the log stream it tails.
	w.logger.Info("Kitchen ticket",
		zap.Int64("order_id", event.OrderID),
		zap.String("ticket", ticket.Render()))

	marked, err := w.store.MarkItemsKitchenPrinted(ctx, event.OrderID)
	if err != nil {
		util.KitchenTicketsFailedTotal.Inc()
		return err
	}

	util.KitchenTicketsTotal.Inc()
	w.logger.Info("Kitchen ticket dispatched",
		zap.Int64("order_id", event.OrderID),
		zap.Int64("items_marked", marked))

	return nil
}
