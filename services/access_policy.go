package services

import "github.com/7FIl/freepass-2026/models"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanManageCanteen: the canteen owner or any admin.
func CanManageCanteen(actor Actor, canteen *models.Canteen) bool {
	if canteen == nil {
		return false
	}
	return actor.ID == canteen.OwnerID || actor.IsAdmin()
}

func CanCreateCanteen(actor Actor) bool {
	return actor.Role == models.RoleCanteenOwner || actor.Role == models.RoleAdmin
}

// IsOrderOwner guards customer actions on an order: paying and reviewing.
func IsOrderOwner(actor Actor, order *models.Order) bool {
	return order != nil && actor.ID == order.UserID
}

// CanManageOrder is true for the customer who placed the order and for
// whoever manages the order's canteen. order.Canteen must be loaded for the
// second case.
func CanManageOrder(actor Actor, order *models.Order) bool {
	if IsOrderOwner(actor, order) {
		return true
	}
	return order != nil && CanManageCanteen(actor, order.Canteen)
}
