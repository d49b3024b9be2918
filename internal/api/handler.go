package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/service"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OrderService is the submission/read surface the handler needs.
type OrderService interface {
	SubmitOrder(ctx context.Context, req *service.SubmitOrderRequest) (*service.SubmitOrderResponse, error)
	PendingSnapshot(ctx context.Context, tableID int64) (*service.TableOrdersResponse, error)
	TableStatus(ctx context.Context) ([]models.TableStatus, error)
}

// PaymentService is the settlement surface the handler needs.
type PaymentService interface {
	SettleTable(ctx context.Context, tableID int64, paymentMethod string) (*service.SettleTableResponse, error)
	SettleOrder(ctx context.Context, orderID int64) (*service.SettleOrderResponse, error)
}

// Catalog is the thin CRUD surface for menu items, tables and waiters.
// *store.Store satisfies it.
type Catalog interface {
	GetMenuItems(ctx context.Context) ([]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	DeactivateMenuItem(ctx context.Context, id int64) error
	GetTables(ctx context.Context) ([]models.Table, error)
	CreateTable(ctx context.Context, tableNumber int) (*models.Table, error)
	DeactivateTable(ctx context.Context, id int64) error
	GetWaiters(ctx context.Context) ([]models.Waiter, error)
	CreateWaiter(ctx context.Context, waiter *models.Waiter) error
	UpdateWaiter(ctx context.Context, waiter *models.Waiter) error
	DeactivateWaiter(ctx context.Context, id int64) error
}

// Handler contains HTTP handlers
type Handler struct {
	orderService   OrderService
	paymentService PaymentService
	catalog        Catalog
}

// NewHandler creates a new HTTP handler
func NewHandler(orderService OrderService, paymentService PaymentService, catalog Catalog) *Handler {
	return &Handler{
		orderService:   orderService,
		paymentService: paymentService,
		catalog:        catalog,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.submitOrder)
		v1.POST("/orders/:id/settle", h.settleOrder)

		v1.GET("/tables/status", h.tableStatus)
		v1.GET("/tables/:id/orders", h.tablePendingOrders)
		v1.POST("/tables/:id/settle", h.settleTable)

		v1.GET("/menu-items", h.listMenuItems)
		v1.POST("/menu-items", h.addMenuItem)
		v1.PUT("/menu-items/:id", h.updateMenuItem)
		v1.DELETE("/menu-items/:id", h.deleteMenuItem)

		v1.GET("/tables", h.listTables)
		v1.POST("/tables", h.addTable)
		v1.DELETE("/tables/:id", h.deleteTable)

		v1.GET("/waiters", h.listWaiters)
		v1.POST("/waiters", h.addWaiter)
		v1.PUT("/waiters/:id", h.updateWaiter)
		v1.DELETE("/waiters/:id", h.deleteWaiter)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// submitOrder handles order submission for a table
func (h *Handler) submitOrder(c *gin.Context) {
	var req service.SubmitOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.orderService.SubmitOrder(c.Request.Context(), &req)
	if err != nil {
		h.writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// settleOrder marks a single pending order as paid
func (h *Handler) settleOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.paymentService.SettleOrder(c.Request.Context(), orderID)
	if err != nil {
		h.writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type settleTableRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// settleTable closes out all pending orders for a table with one payment
func (h *Handler) settleTable(c *gin.Context) {
	tableID, ok := pathID(c)
	if !ok {
		return
	}

	// Body is optional; an absent payment_method falls back to the default.
	var req settleTableRequest
	_ = c.ShouldBindJSON(&req)

	resp, err := h.paymentService.SettleTable(c.Request.Context(), tableID, req.PaymentMethod)
	if err != nil {
		h.writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// tablePendingOrders returns the table's open tab
func (h *Handler) tablePendingOrders(c *gin.Context) {
	tableID, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.orderService.PendingSnapshot(c.Request.Context(), tableID)
	if err != nil {
		h.writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// tableStatus returns the status board for all active tables
func (h *Handler) tableStatus(c *gin.Context) {
	statuses, err := h.orderService.TableStatus(c.Request.Context())
	if err != nil {
		h.writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, statuses)
}

// writeLedgerError maps ledger errors onto HTTP status codes. Conflicts get
// enough context for the operator to decide on a force retry; everything
// unrecognized is a persistence failure already rolled back by the store.
func (h *Handler) writeLedgerError(c *gin.Context, err error) {
	var conflict *store.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":           conflict.Error(),
			"existing_waiter": conflict.ExistingWaiter,
			"current_waiter":  conflict.CurrentWaiter,
			"table_id":        conflict.TableID,
			"can_force":       true,
		})
	case errors.Is(err, store.ErrTableNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrNoPendingOrders):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrOrderNotPending):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Operation failed",
			"details": err.Error(),
		})
	}
}

// listMenuItems returns active menu items
func (h *Handler) listMenuItems(c *gin.Context) {
	items, err := h.catalog.GetMenuItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu items", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// addMenuItem creates a menu item
func (h *Handler) addMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if item.Name == "" || item.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and category are required"})
		return
	}

	if err := h.catalog.CreateMenuItem(c.Request.Context(), &item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// updateMenuItem updates a menu item's name, category and list price
func (h *Handler) updateMenuItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	item.ID = id

	if err := h.catalog.UpdateMenuItem(c.Request.Context(), &item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// deleteMenuItem deactivates a menu item
func (h *Handler) deleteMenuItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeactivateMenuItem(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// listTables returns active tables
func (h *Handler) listTables(c *gin.Context) {
	tables, err := h.catalog.GetTables(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tables", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tables)
}

type addTableRequest struct {
	TableNumber int `json:"table_number" binding:"required,min=1"`
}

// addTable creates a table
func (h *Handler) addTable(c *gin.Context) {
	var req addTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	table, err := h.catalog.CreateTable(c.Request.Context(), req.TableNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, table)
}

// deleteTable deactivates a table
func (h *Handler) deleteTable(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeactivateTable(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete table", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// listWaiters returns active waiters
func (h *Handler) listWaiters(c *gin.Context) {
	waiters, err := h.catalog.GetWaiters(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load waiters", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, waiters)
}

// addWaiter creates a waiter
func (h *Handler) addWaiter(c *gin.Context) {
	var waiter models.Waiter
	if err := c.ShouldBindJSON(&waiter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if waiter.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if err := h.catalog.CreateWaiter(c.Request.Context(), &waiter); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create waiter", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, waiter)
}

// updateWaiter updates a waiter's name and phone
func (h *Handler) updateWaiter(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var waiter models.Waiter
	if err := c.ShouldBindJSON(&waiter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	waiter.ID = id

	if err := h.catalog.UpdateWaiter(c.Request.Context(), &waiter); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update waiter", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// deleteWaiter deactivates a waiter
func (h *Handler) deleteWaiter(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeactivateWaiter(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete waiter", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// pathID parses the :id path parameter, writing a 400 on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
