package services

import (
	"github.com/shopspring/decimal"

	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/utils"
)

// OrderLine is one requested (menu item, quantity) pair. Any price the
// client sends alongside is never read.
type OrderLine struct {
	MenuItemID string `json:"menuItemId" binding:"required,uuid"`
	Quantity   int    `json:"quantity" binding:"required,gt=0,lte=1000"`
	Notes      string `json:"notes" binding:"max=255"`
}

type PricedLine struct {
	Item      models.MenuItem
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Notes     string
}

type Quote struct {
	Lines []PricedLine
	Total decimal.Decimal
}

// PriceOrder prices every line from the canonical menu items read in the
// current transaction. Subtotal is unit price times quantity; the total is
// the sum of subtotals.
func PriceOrder(lines []OrderLine, items map[string]models.MenuItem) (Quote, error) {
	quote := Quote{
		Lines: make([]PricedLine, 0, len(lines)),
		Total: decimal.Zero,
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Quote{}, utils.NewValidationError("Quantity must be greater than 0",
				utils.FieldError{Field: "quantity", Message: "quantity must be greater than 0"})
		}
		item, ok := items[line.MenuItemID]
		if !ok {
			return Quote{}, utils.NewBusinessError("Menu item %s not found", line.MenuItemID)
		}

		subtotal := item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		quote.Lines = append(quote.Lines, PricedLine{
			Item:      item,
			Quantity:  line.Quantity,
			UnitPrice: item.Price,
			Subtotal:  subtotal,
			Notes:     line.Notes,
		})
		quote.Total = quote.Total.Add(subtotal)
	}
	return quote, nil
}
