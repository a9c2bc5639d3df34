package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/cache"
	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/utils"
)

var domainPattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

type DomainInput struct {
	Domain string `json:"domain" binding:"required,max=255"`
}

// EmailDomainService is the registry of email domains allowed to sign up.
type EmailDomainService struct {
	db    *gorm.DB
	cache cache.Cache
	log   *logrus.Logger
}

func NewEmailDomainService(db *gorm.DB, c cache.Cache, log *logrus.Logger) *EmailDomainService {
	return &EmailDomainService{db: db, cache: c, log: log}
}

func (s *EmailDomainService) List(ctx context.Context) ([]models.AllowedEmailDomain, error) {
	domains := []models.AllowedEmailDomain{}
	err := s.db.WithContext(ctx).Order("domain ASC").Find(&domains).Error
	return domains, err
}

func (s *EmailDomainService) allowedDomains(ctx context.Context) ([]string, error) {
	var names []string
	if cache.GetJSON(ctx, s.cache, s.log, cache.KeyAllowedEmailDomains, &names) {
		return names, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.AllowedEmailDomain{}).Pluck("domain", &names).Error; err != nil {
		return nil, err
	}
	for i := range names {
		names[i] = strings.ToLower(names[i])
	}
	cache.SetJSON(ctx, s.cache, s.log, cache.KeyAllowedEmailDomains, names, cache.AllowedEmailDomainsTTL)
	return names, nil
}

// IsAllowed reports whether the email's domain is in the registry. An empty
// registry allows nothing.
func (s *EmailDomainService) IsAllowed(ctx context.Context, email string) (bool, error) {
	domain := utils.EmailDomain(email)
	if domain == "" {
		return false, nil
	}
	names, err := s.allowedDomains(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == domain {
			return true, nil
		}
	}
	return false, nil
}

// RequireAllowed returns a validation error naming the email field when the
// domain is not registered.
func (s *EmailDomainService) RequireAllowed(ctx context.Context, email string) error {
	ok, err := s.IsAllowed(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return utils.NewValidationError("Email domain is not allowed",
			utils.FieldError{Field: "email", Message: "email domain is not allowed"})
	}
	return nil
}

func (s *EmailDomainService) Add(ctx context.Context, in DomainInput) (*models.AllowedEmailDomain, error) {
	domain := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(in.Domain, "@")))
	if !domainPattern.MatchString(domain) {
		return nil, utils.NewValidationError("Validation error",
			utils.FieldError{Field: "domain", Message: "domain must be a valid domain name"})
	}

	record := models.AllowedEmailDomain{Domain: domain}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewConflictError("Domain already exists")
		}
		return nil, err
	}

	s.log.WithField("domain", domain).Info("allowed email domain added")
	cache.Invalidate(ctx, s.cache, s.log, cache.KeyAllowedEmailDomains)
	return &record, nil
}

func (s *EmailDomainService) Remove(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.AllowedEmailDomain{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFoundError("Domain not found")
	}

	s.log.WithField("domain_id", id).Info("allowed email domain removed")
	cache.Invalidate(ctx, s.cache, s.log, cache.KeyAllowedEmailDomains)
	return nil
}
