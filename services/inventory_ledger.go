package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/utils"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// InventoryLedger owns menu item stock. Reserve is the only path that
// lowers stock.
type InventoryLedger struct{}

// Reserve decrements stock in a single conditional UPDATE guarded by
// stock >= quantity. Zero affected rows means another order got there first
// or the item never had enough; the caller must abort its transaction.
func (InventoryLedger) Reserve(tx *gorm.DB, menuItemID string, quantity int) error {
	if quantity <= 0 {
		return utils.NewValidationError("Quantity must be greater than 0")
	}

	res := tx.Model(&models.MenuItem{}).
		Where("id = ? AND stock >= ?", menuItemID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("reserve stock for menu item %s: %w", menuItemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
