package models

import "github.com/shopspring/decimal"

type Canteen struct {
	Base
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	IsOpen    bool       `gorm:"not null;default:true" json:"isOpen"`
	OwnerID   string     `gorm:"type:varchar(36);index;not null" json:"ownerId"`
	Owner     *User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	MenuItems []MenuItem `gorm:"foreignKey:CanteenID;constraint:OnDelete:CASCADE" json:"menuItems,omitempty"`
}

// MenuItem price is the canonical unit price used when pricing orders.
// Stock is only ever decremented through the inventory ledger.
type MenuItem struct {
	Base
	CanteenID   string          `gorm:"type:varchar(36);index;not null" json:"canteenId"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Description string          `gorm:"type:varchar(500);not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
}
