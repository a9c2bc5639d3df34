package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7FIl/freepass-2026/cache"
	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/utils"
)

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func newCanteenFixture(t *testing.T) (*CanteenService, *cache.MemoryCache, models.User) {
	t.Helper()
	db := newTestDB(t)
	mem := cache.NewMemoryCache()
	owner := seedUser(t, db, models.RoleCanteenOwner)
	return NewCanteenService(db, mem, testLogger()), mem, owner
}

func cached(mem *cache.MemoryCache, key string) bool {
	_, err := mem.Get(context.Background(), key)
	return err == nil
}

func TestCreateCanteen_RolesAndDefaults(t *testing.T) {
	svc, _, owner := newCanteenFixture(t)
	ctx := context.Background()

	canteen, err := svc.CreateCanteen(ctx, actorOf(owner), CanteenInput{Name: "  Kantin Teknik  "})
	require.NoError(t, err)
	assert.Equal(t, "Kantin Teknik", canteen.Name)
	assert.True(t, canteen.IsOpen)
	assert.Equal(t, owner.ID, canteen.OwnerID)

	_, err = svc.CreateCanteen(ctx, Actor{ID: "u", Role: models.RoleUser}, CanteenInput{Name: "Kantin Hukum"})
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = svc.CreateCanteen(ctx, actorOf(owner), CanteenInput{Name: "  ab "})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestCanteenReads_AreCachedAndInvalidatedOnWrite(t *testing.T) {
	svc, mem, owner := newCanteenFixture(t)
	ctx := context.Background()

	canteen, err := svc.CreateCanteen(ctx, actorOf(owner), CanteenInput{Name: "Kantin FILKOM"})
	require.NoError(t, err)

	list, err := svc.ListCanteens(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Owner)
	assert.Equal(t, owner.Username, list[0].Owner.Username)
	assert.True(t, cached(mem, cache.KeyCanteenList))

	_, err = svc.GetCanteen(ctx, canteen.ID)
	require.NoError(t, err)
	_, err = svc.ListMenuItems(ctx, canteen.ID)
	require.NoError(t, err)
	assert.True(t, cached(mem, cache.CanteenKey(canteen.ID)))
	assert.True(t, cached(mem, cache.MenuKey(canteen.ID)))

	item, err := svc.CreateMenuItem(ctx, actorOf(owner), canteen.ID, MenuItemInput{
		Name:        "Nasi Goreng",
		Description: "Nasi goreng spesial telur",
		Price:       decimal.RequireFromString("12.50"),
		Stock:       intPtr(10),
	})
	require.NoError(t, err)
	assert.False(t, cached(mem, cache.CanteenKey(canteen.ID)))
	assert.False(t, cached(mem, cache.MenuKey(canteen.ID)))

	menu, err := svc.ListMenuItems(ctx, canteen.ID)
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.True(t, decimal.RequireFromString("12.5").Equal(menu[0].Price))

	// Served from cache: a row written behind the service's back stays invisible.
	require.NoError(t, svc.db.Model(&models.MenuItem{}).Where("id = ?", item.ID).Update("stock", 1).Error)
	menu, err = svc.ListMenuItems(ctx, canteen.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, menu[0].Stock)

	updated, err := svc.UpdateMenuItem(ctx, actorOf(owner), canteen.ID, item.ID, UpdateMenuItemInput{Stock: intPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Stock)
	assert.False(t, cached(mem, cache.MenuKey(canteen.ID)))

	toggled, err := svc.ToggleStatus(ctx, actorOf(owner), canteen.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsOpen)
	assert.False(t, cached(mem, cache.KeyCanteenList))

	open := true
	reopened, err := svc.UpdateCanteen(ctx, actorOf(owner), canteen.ID, UpdateCanteenInput{IsOpen: &open, Name: strPtr("Kantin FILKOM Baru")})
	require.NoError(t, err)
	assert.True(t, reopened.IsOpen)
	assert.Equal(t, "Kantin FILKOM Baru", reopened.Name)

	require.NoError(t, svc.DeleteMenuItem(ctx, actorOf(owner), canteen.ID, item.ID))
	menu, err = svc.ListMenuItems(ctx, canteen.ID)
	require.NoError(t, err)
	assert.Empty(t, menu)
}

func TestMenuItemRules(t *testing.T) {
	svc, _, owner := newCanteenFixture(t)
	ctx := context.Background()
	mine, err := svc.CreateCanteen(ctx, actorOf(owner), CanteenInput{Name: "Kantin Satu"})
	require.NoError(t, err)
	other := seedUser(t, svc.db, models.RoleCanteenOwner)
	theirs, err := svc.CreateCanteen(ctx, actorOf(other), CanteenInput{Name: "Kantin Dua"})
	require.NoError(t, err)

	valid := MenuItemInput{Name: "Es Jeruk", Description: "Jeruk peras segar dingin", Price: decimal.RequireFromString("4"), Stock: intPtr(0)}
	item, err := svc.CreateMenuItem(ctx, actorOf(owner), mine.ID, valid)
	require.NoError(t, err)

	prices := map[string]string{
		"zero":          "0",
		"negative":      "-1",
		"three decimal": "1.005",
		"too large":     "100000000",
	}
	for name, price := range prices {
		t.Run(name, func(t *testing.T) {
			in := valid
			in.Price = decimal.RequireFromString(price)
			_, err := svc.CreateMenuItem(ctx, actorOf(owner), mine.ID, in)
			assert.True(t, utils.IsKind(err, utils.KindValidation), "%v", err)
		})
	}

	_, err = svc.CreateMenuItem(ctx, actorOf(other), mine.ID, valid)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = svc.UpdateMenuItem(ctx, actorOf(other), theirs.ID, item.ID, UpdateMenuItemInput{Stock: intPtr(3)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Menu item does not belong to this canteen")

	_, err = svc.UpdateMenuItem(ctx, actorOf(owner), mine.ID, item.ID, UpdateMenuItemInput{})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = svc.GetCanteen(ctx, "6f1f2c8e-6666-4c1e-9d55-000000000000")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
