package models

import "github.com/shopspring/decimal"

// OrderItem keeps a snapshot of the menu item name and price at order time,
// so it carries no foreign key to menu_items.
type OrderItem struct {
	Base
	OrderID    string          `gorm:"type:varchar(36);index;not null" json:"orderId"`
	MenuItemID string          `gorm:"type:varchar(36);index;not null" json:"menuItemId"`
	Name       string          `gorm:"type:varchar(100);not null" json:"name"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Notes      string          `gorm:"type:varchar(255)" json:"notes,omitempty"`
}
