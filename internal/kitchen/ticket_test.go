package kitchen

import (
	"strings"
	"testing"
	"time"

	"pos-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTicketRender(t *testing.T) {
	ticket := Ticket{
		OrderID:    42,
		TableID:    5,
		WaiterName: "Jane Smith",
		Items: []models.ItemLine{
			{MenuItemID: 1, Quantity: 1, Price: decimal.RequireFromString("12.99")},
			{MenuItemID: 5, Quantity: 2, Price: decimal.RequireFromString("2.99")},
		},
		ItemNames: map[int64]string{1: "Burger", 5: "Coca Cola"},
		CreatedAt: time.Date(2024, 3, 10, 19, 30, 0, 0, time.Local),
	}

	out := ticket.Render()

	assert.Contains(t, out, "KITCHEN ORDER")
	assert.Contains(t, out, "Order #: 42")
	assert.Contains(t, out, "Table: 5")
	assert.Contains(t, out, "Waiter: Jane Smith")
	assert.Contains(t, out, "1x Burger")
	assert.Contains(t, out, "2x Coca Cola")
	assert.Contains(t, out, "Total Items: 3")
	assert.Contains(t, out, "Time: 19:30:00")
	assert.Contains(t, out, "Date: 10/03/2024")
}

func TestTicketRenderUnknownItem(t *testing.T) {
	ticket := Ticket{
		OrderID:    7,
		TableID:    2,
		WaiterName: "John Doe",
		Items: []models.ItemLine{
			{MenuItemID: 99, Quantity: 1, Price: decimal.RequireFromString("1.99")},
		},
		ItemNames: map[int64]string{},
		CreatedAt: time.Now(),
	}

	out := ticket.Render()

	assert.Contains(t, out, "1x Item #99")
	assert.Equal(t, 1, strings.Count(out, "Item #99"))
}
