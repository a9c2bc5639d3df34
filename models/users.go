package models

type Role string

const (
	RoleUser         Role = "USER"
	RoleCanteenOwner Role = "CANTEEN_OWNER"
	RoleAdmin        Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCanteenOwner, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Base
	Username string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string    `gorm:"type:varchar(255);not null" json:"-"`
	Role     Role      `gorm:"type:varchar(20);not null;default:USER;index" json:"role"`
	Canteens []Canteen `gorm:"foreignKey:OwnerID" json:"canteens,omitempty"`
}
