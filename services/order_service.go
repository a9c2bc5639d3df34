package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/cache"
	"github.com/7FIl/freepass-2026/events"
	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/utils"
)

// OrderNotifier pushes order changes to live screens, e.g. the kitchen
// display hub.
type OrderNotifier interface {
	NotifyOrder(event string, order *models.Order)
}

type nopNotifier struct{}

func (nopNotifier) NotifyOrder(string, *models.Order) {}

type CreateOrderInput struct {
	Items []OrderLine `json:"items" binding:"required,min=1,dive"`
	Notes string      `json:"notes" binding:"max=500"`
}

type OrderFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
}

// OrderService runs the order lifecycle: creation with stock reservation,
// payment, payment-gated status changes and reviews.
type OrderService struct {
	db       *gorm.DB
	ledger   InventoryLedger
	cache    cache.Cache
	events   events.Publisher
	notifier OrderNotifier
	log      *logrus.Logger
}

func NewOrderService(db *gorm.DB, c cache.Cache, publisher events.Publisher, notifier OrderNotifier, log *logrus.Logger) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &OrderService{
		db:       db,
		cache:    c,
		events:   publisher,
		notifier: notifier,
		log:      log,
	}
}

// CreateOrder validates the canteen and menu items, prices the order from
// stored prices and reserves stock, all inside one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, canteenID string, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, utils.NewValidationError("Order must contain at least one item",
			utils.FieldError{Field: "items", Message: "items must contain at least 1 item"})
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, utils.NewValidationError("Quantity must be greater than 0",
				utils.FieldError{Field: "quantity", Message: "quantity must be greater than 0"})
		}
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var canteen models.Canteen
		if err := tx.First(&canteen, "id = ?", canteenID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewBusinessError("Canteen not found")
			}
			return err
		}
		if !canteen.IsOpen {
			return utils.NewBusinessError("Canteen is currently closed")
		}

		items, err := loadMenuItems(tx, in.Items)
		if err != nil {
			return err
		}
		for _, line := range in.Items {
			item, ok := items[line.MenuItemID]
			if !ok {
				return utils.NewBusinessError("Menu item %s not found", line.MenuItemID)
			}
			if item.CanteenID != canteenID {
				return utils.NewBusinessError("Menu item %s does not belong to this canteen", line.MenuItemID)
			}
			if item.Stock < line.Quantity {
				return utils.NewBusinessError("Insufficient stock for %s. Available: %d", item.Name, item.Stock)
			}
		}

		quote, err := PriceOrder(in.Items, items)
		if err != nil {
			return err
		}

		for _, line := range quote.Lines {
			if err := s.ledger.Reserve(tx, line.Item.ID, line.Quantity); err != nil {
				if errors.Is(err, ErrInsufficientStock) {
					return utils.NewBusinessError("Insufficient stock for %s", line.Item.Name)
				}
				return err
			}
		}

		order = models.Order{
			UserID:        actor.ID,
			CanteenID:     canteenID,
			TotalPrice:    quote.Total,
			Status:        models.OrderWaiting,
			PaymentStatus: models.PaymentUnpaid,
			Notes:         in.Notes,
			Items:         make([]models.OrderItem, 0, len(quote.Lines)),
		}
		for _, line := range quote.Lines {
			order.Items = append(order.Items, models.OrderItem{
				MenuItemID: line.Item.ID,
				Name:       line.Item.Name,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				Subtotal:   line.Subtotal,
				Notes:      line.Notes,
			})
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"canteen_id": order.CanteenID,
		"user_id":    order.UserID,
		"total":      order.TotalPrice.StringFixed(2),
	}).Info("order created")
	// Stock changed, so cached menus of this canteen are stale.
	cache.Invalidate(ctx, s.cache, s.log, cache.CanteenKey(canteenID), cache.MenuKey(canteenID))
	s.announce(ctx, events.OrderCreated, &order)
	return &order, nil
}

func loadMenuItems(tx *gorm.DB, lines []OrderLine) (map[string]models.MenuItem, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if !seen[line.MenuItemID] {
			seen[line.MenuItemID] = true
			ids = append(ids, line.MenuItemID)
		}
	}

	var found []models.MenuItem
	if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	items := make(map[string]models.MenuItem, len(found))
	for _, item := range found {
		items[item.ID] = item
	}
	return items, nil
}

// GetOrder returns an order to its customer or to the canteen's managers.
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Canteen").
		Preload("Items").
		Preload("Payment").
		Preload("Review").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Order not found")
		}
		return nil, err
	}
	if !CanManageOrder(actor, &order) {
		return nil, utils.NewForbiddenError("Unauthorized: You cannot view this order")
	}
	return &order, nil
}

// ListUserOrders pages through the caller's orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, actor Actor, filter OrderFilter) ([]models.Order, *utils.Pagination, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", actor.ID)
	query, err := applyOrderFilter(query, filter)
	if err != nil {
		return nil, nil, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	orders := []models.Order{}
	err = query.
		Preload("Canteen").
		Preload("Items").
		Preload("Payment").
		Preload("Review").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, nil, err
	}
	return orders, utils.NewPagination(page, limit, total), nil
}

// ListCanteenOrders lists a canteen's orders for its owner or an admin.
func (s *OrderService) ListCanteenOrders(ctx context.Context, actor Actor, canteenID string, filter OrderFilter) ([]models.Order, error) {
	var canteen models.Canteen
	if err := s.db.WithContext(ctx).First(&canteen, "id = ?", canteenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Canteen not found")
		}
		return nil, err
	}
	if !CanManageCanteen(actor, &canteen) {
		return nil, utils.NewForbiddenError("Unauthorized: Only the canteen owner or admin can view orders")
	}

	query, err := applyOrderFilter(s.db.WithContext(ctx).Where("canteen_id = ?", canteenID), filter)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	err = query.
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username", "role") }).
		Preload("Items").
		Preload("Payment").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func applyOrderFilter(query *gorm.DB, filter OrderFilter) (*gorm.DB, error) {
	if filter.Status != "" {
		if !models.OrderStatus(filter.Status).Valid() {
			return nil, utils.NewValidationError("Invalid status filter",
				utils.FieldError{Field: "status", Message: "status must be one of: WAITING COOKING READY COMPLETED"})
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		if !models.PaymentStatus(filter.PaymentStatus).Valid() {
			return nil, utils.NewValidationError("Invalid payment status filter",
				utils.FieldError{Field: "paymentStatus", Message: "paymentStatus must be one of: UNPAID PAID"})
		}
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	return query.Session(&gorm.Session{}), nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// UpdateOrderStatus moves a paid order one step along
// WAITING -> COOKING -> READY -> COMPLETED.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor Actor, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, utils.NewValidationError("Invalid order status",
			utils.FieldError{Field: "status", Message: "status must be one of: WAITING COOKING READY COMPLETED"})
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Canteen").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("Order not found")
			}
			return err
		}
		if !CanManageCanteen(actor, order.Canteen) {
			return utils.NewForbiddenError("Unauthorized: Only the canteen owner or admin can update order status")
		}
		if !order.IsPaid() {
			return utils.NewBusinessError("Cannot update status: Order payment is not completed")
		}
		if next, ok := order.Status.Next(); !ok || next != status {
			return utils.NewBusinessError("Invalid status transition from %s to %s", order.Status, status)
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ? AND payment_status = ?", order.ID, order.Status, models.PaymentPaid).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewBusinessError("Order status was changed by another request, please retry")
		}
		return tx.Preload("Items").Preload("Payment").First(&order, "id = ?", order.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"status":   order.Status,
		"actor_id": actor.ID,
	}).Info("order status updated")
	s.announce(ctx, events.OrderStatusChanged, &order)
	return &order, nil
}

// MakePayment records a payment for the exact order total and flips the
// order to PAID. The UNPAID -> PAID flip is a conditional update, so of two
// concurrent payments exactly one wins.
func (s *OrderService) MakePayment(ctx context.Context, actor Actor, orderID string, amount decimal.Decimal) (*models.Payment, *models.Order, error) {
	var (
		order   models.Order
		payment models.Payment
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewBusinessError("Order not found")
			}
			return err
		}
		if !IsOrderOwner(actor, &order) {
			return utils.NewForbiddenError("Unauthorized: You can only pay for your own orders")
		}
		if order.IsPaid() {
			return utils.NewBusinessError("Order has already been paid")
		}
		if !amount.Equal(order.TotalPrice) {
			return utils.NewBusinessError("Amount mismatch. Expected: %s, Received: %s",
				order.TotalPrice.StringFixed(2), amount.String())
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ?", order.ID, models.PaymentUnpaid).
			Update("payment_status", models.PaymentPaid)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewBusinessError("Order has already been paid")
		}

		paidAt := time.Now()
		payment = models.Payment{
			OrderID: order.ID,
			Amount:  order.TotalPrice,
			Status:  models.PaymentPaid,
			PaidAt:  &paidAt,
		}
		if err := tx.Create(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.NewBusinessError("Order has already been paid")
			}
			return err
		}
		order.PaymentStatus = models.PaymentPaid
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"payment_id": payment.ID,
		"amount":     payment.Amount.StringFixed(2),
	}).Info("payment recorded")
	s.announce(ctx, events.OrderPaid, &order)
	return &payment, &order, nil
}

// announce pushes an order event to live screens and the broker after
// commit. Failures are logged; the order change already stands.
func (s *OrderService) announce(ctx context.Context, eventType string, order *models.Order) {
	s.notifier.NotifyOrder(eventType, order)
	s.publish(ctx, events.New(eventType, order.CanteenID, order))
}
