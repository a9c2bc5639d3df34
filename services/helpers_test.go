package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/7FIl/freepass-2026/cache"
	"github.com/7FIl/freepass-2026/events"
	"github.com/7FIl/freepass-2026/models"
)

func init() {
	PasswordCost = bcrypt.MinCost
}

// newTestDB opens a private in-memory sqlite database. One connection keeps
// the database alive and serialises concurrent transactions.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AllowedEmailDomain{},
		&models.Canteen{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Review{},
	))
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var userSeq int

func seedUser(t *testing.T, db *gorm.DB, role models.Role) models.User {
	t.Helper()
	userSeq++
	user := models.User{
		Username: fmt.Sprintf("user_%d", userSeq),
		Email:    fmt.Sprintf("user%d@student.ub.ac.id", userSeq),
		Password: "not-a-real-hash",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCanteen(t *testing.T, db *gorm.DB, owner models.User, open bool) models.Canteen {
	t.Helper()
	canteen := models.Canteen{Name: "Kantin " + owner.Username, IsOpen: true, OwnerID: owner.ID}
	require.NoError(t, db.Create(&canteen).Error)
	if !open {
		require.NoError(t, db.Model(&canteen).Update("is_open", false).Error)
		canteen.IsOpen = false
	}
	return canteen
}

func seedMenuItem(t *testing.T, db *gorm.DB, canteen models.Canteen, name, price string, stock int) models.MenuItem {
	t.Helper()
	item := models.MenuItem{
		CanteenID:   canteen.ID,
		Name:        name,
		Description: "Freshly made " + name,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func stockOf(t *testing.T, db *gorm.DB, itemID string) int {
	t.Helper()
	var item models.MenuItem
	require.NoError(t, db.First(&item, "id = ?", itemID).Error)
	return item.Stock
}

func actorOf(u models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// recordingNotifier remembers every order event pushed to live screens.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) NotifyOrder(event string, order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

type orderFixture struct {
	db       *gorm.DB
	svc      *OrderService
	cache    *cache.MemoryCache
	notifier *recordingNotifier
	customer models.User
	owner    models.User
	canteen  models.Canteen
}

func newOrderFixture(t *testing.T) *orderFixture {
	return newOrderFixtureWith(t, events.NopPublisher{})
}

func newOrderFixtureWith(t *testing.T, publisher events.Publisher) *orderFixture {
	t.Helper()
	db := newTestDB(t)
	mem := cache.NewMemoryCache()
	notifier := &recordingNotifier{}
	owner := seedUser(t, db, models.RoleCanteenOwner)
	return &orderFixture{
		db:       db,
		svc:      NewOrderService(db, mem, publisher, notifier, testLogger()),
		cache:    mem,
		notifier: notifier,
		customer: seedUser(t, db, models.RoleUser),
		owner:    owner,
		canteen:  seedCanteen(t, db, owner, true),
	}
}

func (f *orderFixture) order(t *testing.T, lines ...OrderLine) *models.Order {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), actorOf(f.customer), f.canteen.ID, CreateOrderInput{Items: lines})
	require.NoError(t, err)
	return order
}

func (f *orderFixture) paidOrder(t *testing.T, lines ...OrderLine) *models.Order {
	t.Helper()
	order := f.order(t, lines...)
	_, paid, err := f.svc.MakePayment(context.Background(), actorOf(f.customer), order.ID, order.TotalPrice)
	require.NoError(t, err)
	return paid
}

// advance walks a paid order forward until it reaches target.
func (f *orderFixture) advance(t *testing.T, orderID string, target models.OrderStatus) {
	t.Helper()
	for _, status := range []models.OrderStatus{models.OrderCooking, models.OrderReady, models.OrderCompleted} {
		_, err := f.svc.UpdateOrderStatus(context.Background(), actorOf(f.owner), orderID, status)
		require.NoError(t, err)
		if status == target {
			return
		}
	}
}
