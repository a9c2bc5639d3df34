package database

import (
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/models"
)

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.AllowedEmailDomain{},
		&models.Canteen{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Review{},
	)
}
