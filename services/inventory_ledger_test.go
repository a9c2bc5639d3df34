package services

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/utils"
)

const reserveSQL = "UPDATE `menu_items` SET `stock`=stock - ? WHERE id = ? AND stock >= ?"

// setupLedgerMock installs a sqlmock-backed mysql gorm handle.
func setupLedgerMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestReserve_ConditionalDecrement(t *testing.T) {
	db, mock := setupLedgerMock(t)
	mock.ExpectExec(regexp.QuoteMeta(reserveSQL)).
		WithArgs(2, "item-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, InventoryLedger{}.Reserve(db, "item-1", 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_NoRowsMeansInsufficientStock(t *testing.T) {
	db, mock := setupLedgerMock(t)
	mock.ExpectExec(regexp.QuoteMeta(reserveSQL)).
		WithArgs(5, "item-1", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := InventoryLedger{}.Reserve(db, "item-1", 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_DatabaseErrorIsWrapped(t *testing.T) {
	db, mock := setupLedgerMock(t)
	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta(reserveSQL)).WillReturnError(boom)

	err := InventoryLedger{}.Reserve(db, "item-1", 1)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInsufficientStock)
}

func TestReserve_RejectsNonPositiveQuantity(t *testing.T) {
	db, mock := setupLedgerMock(t)

	err := InventoryLedger{}.Reserve(db, "item-1", 0)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_AgainstSQLite(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, models.RoleCanteenOwner)
	item := seedMenuItem(t, db, seedCanteen(t, db, owner, true), "Kopi", "4.00", 3)

	require.NoError(t, InventoryLedger{}.Reserve(db, item.ID, 3))
	assert.ErrorIs(t, InventoryLedger{}.Reserve(db, item.ID, 1), ErrInsufficientStock)
	assert.Equal(t, 0, stockOf(t, db, item.ID))
}
