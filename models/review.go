package models

type Review struct {
	Base
	OrderID   string `gorm:"type:varchar(36);uniqueIndex;not null" json:"orderId"`
	UserID    string `gorm:"type:varchar(36);index;not null" json:"userId"`
	User      *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CanteenID string `gorm:"type:varchar(36);index;not null" json:"canteenId"`
	Rating    int    `gorm:"not null" json:"rating"`
	Comment   string `gorm:"type:varchar(500);not null" json:"comment"`
}
