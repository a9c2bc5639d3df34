package models

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderWaiting   OrderStatus = "WAITING"
	OrderCooking   OrderStatus = "COOKING"
	OrderReady     OrderStatus = "READY"
	OrderCompleted OrderStatus = "COMPLETED"
)

var nextOrderStatus = map[OrderStatus]OrderStatus{
	OrderWaiting: OrderCooking,
	OrderCooking: OrderReady,
	OrderReady:   OrderCompleted,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderWaiting, OrderCooking, OrderReady, OrderCompleted:
		return true
	}
	return false
}

// Next returns the only status an order may move to from s.
func (s OrderStatus) Next() (OrderStatus, bool) {
	next, ok := nextOrderStatus[s]
	return next, ok
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentUnpaid || s == PaymentPaid
}

type Order struct {
	Base
	UserID        string          `gorm:"type:varchar(36);index;not null" json:"userId"`
	User          *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CanteenID     string          `gorm:"type:varchar(36);index;not null" json:"canteenId"`
	Canteen       *Canteen        `gorm:"foreignKey:CanteenID;constraint:OnDelete:CASCADE" json:"canteen,omitempty"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:WAITING;index" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:UNPAID;index" json:"paymentStatus"`
	Notes         string          `gorm:"type:varchar(500)" json:"notes,omitempty"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payment       *Payment        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payment,omitempty"`
	Review        *Review         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"review,omitempty"`
}

func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentPaid
}
