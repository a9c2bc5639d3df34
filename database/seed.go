package database

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/services"
)

// DefaultAllowedDomains seeds the email domain registry on first boot.
var DefaultAllowedDomains = []string{
	"gmail.com",
	"outlook.com",
	"hotmail.com",
	"live.com",
	"yahoo.com",
	"icloud.com",
	"proton.me",
	"protonmail.com",
	"student.ub.ac.id",
	"ub.ac.id",
}

type AdminAccount struct {
	Email    string
	Username string
	Password string
}

// SeedDomains fills the registry only when it is empty.
func SeedDomains(db *gorm.DB, log *logrus.Logger) error {
	var count int64
	if err := db.Model(&models.AllowedEmailDomain{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	records := make([]models.AllowedEmailDomain, 0, len(DefaultAllowedDomains))
	for _, d := range DefaultAllowedDomains {
		records = append(records, models.AllowedEmailDomain{Domain: d})
	}
	if err := db.Create(&records).Error; err != nil {
		return err
	}
	log.WithField("count", len(records)).Info("seeded allowed email domains")
	return nil
}

// SeedAdmin creates the bootstrap admin when an email is configured and no
// user with that email exists yet.
func SeedAdmin(db *gorm.DB, acct AdminAccount, log *logrus.Logger) error {
	email := strings.ToLower(strings.TrimSpace(acct.Email))
	if email == "" {
		return nil
	}
	if acct.Password == "" {
		return errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	username := acct.Username
	if username == "" {
		username = "admin"
	}
	hashed, err := services.HashPassword(acct.Password)
	if err != nil {
		return err
	}
	admin := models.User{Username: username, Email: email, Password: hashed, Role: models.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.WithField("email", email).Info("seeded admin account")
	return nil
}
