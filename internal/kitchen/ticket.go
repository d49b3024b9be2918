package kitchen

import (
	"fmt"
	"strings"
	"time"

	"pos-service/internal/models"
)

const ticketWidth = 32

// Ticket is one kitchen order slip covering the items newly added to a
// table's pending order.
type Ticket struct {
	OrderID    int64
	TableID    int64
	WaiterName string
	Items      []models.ItemLine
	ItemNames  map[int64]string
	CreatedAt  time.Time
}

// Render formats the ticket as fixed-width printer text.
func (t Ticket) Render() string {
	var b strings.Builder

	writeCentered(&b, "KITCHEN ORDER")
	b.WriteString(strings.Repeat("=", ticketWidth) + "\n")
	fmt.Fprintf(&b, "Order #: %d\n", t.OrderID)
	fmt.Fprintf(&b, "Table: %d\n", t.TableID)
	fmt.Fprintf(&b, "Waiter: %s\n", t.WaiterName)
	fmt.Fprintf(&b, "Time: %s\n", t.CreatedAt.Format("15:04:05"))
	fmt.Fprintf(&b, "Date: %s\n", t.CreatedAt.Format("02/01/2006"))
	b.WriteString(strings.Repeat("-", ticketWidth) + "\n")
	writeCentered(&b, "ITEMS TO PREPARE")

	totalItems := 0
	for _, item := range t.Items {
		name := t.ItemNames[item.MenuItemID]
		if name == "" {
			name = fmt.Sprintf("Item #%d", item.MenuItemID)
		}
		fmt.Fprintf(&b, "%dx %s\n", item.Quantity, name)
		totalItems += item.Quantity
	}

	b.WriteString(strings.Repeat("-", ticketWidth) + "\n")
	fmt.Fprintf(&b, "Total Items: %d\n", totalItems)
	b.WriteString(strings.Repeat("=", ticketWidth) + "\n")

	return b.String()
}

func writeCentered(b *strings.Builder, s string) {
	if pad := (ticketWidth - len(s)) / 2; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(s + "\n")
}
