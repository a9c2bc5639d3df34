package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/models"
)

type OrderStatusCounts struct {
	Waiting   int64 `json:"waiting"`
	Cooking   int64 `json:"cooking"`
	Ready     int64 `json:"ready"`
	Completed int64 `json:"completed"`
}

type DashboardStats struct {
	TotalUsers    int64             `json:"totalUsers"`
	TotalOwners   int64             `json:"totalOwners"`
	TotalCanteens int64             `json:"totalCanteens"`
	OpenCanteens  int64             `json:"openCanteens"`
	TotalOrders   int64             `json:"totalOrders"`
	TodayOrders   int64             `json:"todayOrders"`
	UnpaidOrders  int64             `json:"unpaidOrders"`
	OrderStatus   OrderStatusCounts `json:"orderStatus"`
	TotalRevenue  decimal.Decimal   `json:"totalRevenue"`
	TodayRevenue  decimal.Decimal   `json:"todayRevenue"`
}

// Stats summarises accounts, canteens, orders and paid revenue.
func (s *AdminService) Stats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var stats DashboardStats
	counts := []struct {
		query *gorm.DB
		dst   *int64
	}{
		{db.Model(&models.User{}).Where("role = ?", models.RoleUser), &stats.TotalUsers},
		{db.Model(&models.User{}).Where("role = ?", models.RoleCanteenOwner), &stats.TotalOwners},
		{db.Model(&models.Canteen{}), &stats.TotalCanteens},
		{db.Model(&models.Canteen{}).Where("is_open = ?", true), &stats.OpenCanteens},
		{db.Model(&models.Order{}), &stats.TotalOrders},
		{db.Model(&models.Order{}).Where("created_at >= ?", startOfDay), &stats.TodayOrders},
		{db.Model(&models.Order{}).Where("payment_status = ?", models.PaymentUnpaid), &stats.UnpaidOrders},
		{db.Model(&models.Order{}).Where("status = ?", models.OrderWaiting), &stats.OrderStatus.Waiting},
		{db.Model(&models.Order{}).Where("status = ?", models.OrderCooking), &stats.OrderStatus.Cooking},
		{db.Model(&models.Order{}).Where("status = ?", models.OrderReady), &stats.OrderStatus.Ready},
		{db.Model(&models.Order{}).Where("status = ?", models.OrderCompleted), &stats.OrderStatus.Completed},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var err error
	if stats.TotalRevenue, err = sumPayments(db.Model(&models.Payment{})); err != nil {
		return nil, err
	}
	if stats.TodayRevenue, err = sumPayments(db.Model(&models.Payment{}).Where("paid_at >= ?", startOfDay)); err != nil {
		return nil, err
	}
	return &stats, nil
}

func sumPayments(query *gorm.DB) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := query.Where("status = ?", models.PaymentPaid).Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, amounts...).Round(2), nil
}
