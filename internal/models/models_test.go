package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	line := ItemLine{MenuItemID: 5, Quantity: 2, Price: decimal.RequireFromString("2.99")}

	assert.True(t, line.LineTotal().Equal(decimal.RequireFromString("5.98")))
}

func TestItemsTotal(t *testing.T) {
	lines := []ItemLine{
		{MenuItemID: 1, Quantity: 1, Price: decimal.RequireFromString("12.99")},
		{MenuItemID: 5, Quantity: 2, Price: decimal.RequireFromString("2.99")},
	}

	assert.True(t, ItemsTotal(lines).Equal(decimal.RequireFromString("18.97")))
}

func TestItemsTotalEmpty(t *testing.T) {
	assert.True(t, ItemsTotal(nil).Equal(decimal.Zero))
}
