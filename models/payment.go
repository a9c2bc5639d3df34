package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is written once per order, in the same transaction that flips
// the order to PAID.
type Payment struct {
	Base
	OrderID string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"orderId"`
	Amount  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status  PaymentStatus   `gorm:"type:varchar(20);not null" json:"status"`
	PaidAt  *time.Time      `json:"paidAt,omitempty"`
}
