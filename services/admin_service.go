package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/cache"
	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/utils"
)

type AdminCreateUserInput struct {
	Username string      `json:"username" binding:"required,username"`
	Email    string      `json:"email" binding:"required,email,max=255"`
	Password string      `json:"password" binding:"required,password"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=USER CANTEEN_OWNER ADMIN"`
}

type AdminUpdateUserInput struct {
	Username *string      `json:"username" binding:"omitempty,username"`
	Email    *string      `json:"email" binding:"omitempty,email,max=255"`
	Password *string      `json:"password" binding:"omitempty,password"`
	Role     *models.Role `json:"role" binding:"omitempty,oneof=USER CANTEEN_OWNER ADMIN"`
}

type UserFilter struct {
	Role  string
	Page  int
	Limit int
}

// AdminService is the user administration used by ADMIN accounts.
type AdminService struct {
	db      *gorm.DB
	domains *EmailDomainService
	cache   cache.Cache
	log     *logrus.Logger
}

func NewAdminService(db *gorm.DB, domains *EmailDomainService, c cache.Cache, log *logrus.Logger) *AdminService {
	return &AdminService{db: db, domains: domains, cache: c, log: log}
}

func (s *AdminService) CreateUser(ctx context.Context, in AdminCreateUserInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, utils.NewValidationError("Validation error",
			utils.FieldError{Field: "role", Message: "role must be one of: USER CANTEEN_OWNER ADMIN"})
	}
	email := normalizeEmail(in.Email)
	if err := s.domains.RequireAllowed(ctx, email); err != nil {
		return nil, err
	}
	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{Username: in.Username, Email: email, Password: hashed, Role: role}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, email, in.Username, ""); err != nil {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user created by admin")
	return &user, nil
}

func (s *AdminService) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, *utils.Pagination, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		if !models.Role(filter.Role).Valid() {
			return nil, nil, utils.NewValidationError("Invalid role filter",
				utils.FieldError{Field: "role", Message: "role must be one of: USER CANTEEN_OWNER ADMIN"})
		}
		query = query.Where("role = ?", filter.Role)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}
	page, limit := normalizePage(filter.Page, filter.Limit)
	users := []models.User{}
	err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, nil, err
	}
	return users, utils.NewPagination(page, limit, total), nil
}

func (s *AdminService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Canteens").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, userID string, in AdminUpdateUserInput) (*models.User, error) {
	if in.Username == nil && in.Email == nil && in.Password == nil && in.Role == nil {
		return nil, utils.NewValidationError("At least one field must be provided for update")
	}

	updates := map[string]interface{}{}
	var email, username string
	if in.Email != nil {
		email = normalizeEmail(*in.Email)
		if err := s.domains.RequireAllowed(ctx, email); err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if in.Username != nil {
		username = *in.Username
		updates["username"] = username
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, utils.NewValidationError("Validation error",
				utils.FieldError{Field: "role", Message: "role must be one of: USER CANTEEN_OWNER ADMIN"})
		}
		updates["role"] = *in.Role
	}
	if in.Password != nil {
		hashed, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("User not found")
			}
			return err
		}
		if err := checkUnique(tx, email, username, userID); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&user, "id = ?", userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user with everything hanging off them: their
// canteens (with menus, orders and reviews) and their own orders.
func (s *AdminService) DeleteUser(ctx context.Context, actor Actor, userID string) error {
	if actor.ID == userID {
		return utils.NewBusinessError("You cannot delete your own account")
	}

	var canteenIDs []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("User not found")
			}
			return err
		}
		if err := tx.Model(&models.Canteen{}).Where("owner_id = ?", userID).Pluck("id", &canteenIDs).Error; err != nil {
			return err
		}

		orders := tx.Model(&models.Order{}).Where("user_id = ?", userID)
		if len(canteenIDs) > 0 {
			orders = orders.Or("canteen_id IN ?", canteenIDs)
		}
		var orderIDs []string
		if err := orders.Pluck("id", &orderIDs).Error; err != nil {
			return err
		}

		if len(orderIDs) > 0 {
			if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.Review{}).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.Payment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", orderIDs).Delete(&models.Order{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if len(canteenIDs) > 0 {
			if err := tx.Where("canteen_id IN ?", canteenIDs).Delete(&models.MenuItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", canteenIDs).Delete(&models.Canteen{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, "id = ?", userID).Error
	})
	if err != nil {
		return err
	}

	keys := []string{cache.KeyCanteenList}
	for _, id := range canteenIDs {
		keys = append(keys, cache.CanteenKey(id), cache.MenuKey(id))
	}
	cache.Invalidate(ctx, s.cache, s.log, keys...)
	s.log.WithFields(logrus.Fields{"user_id": userID, "canteens": len(canteenIDs)}).Info("user deleted")
	return nil
}

func (s *AdminService) ListCanteenOwners(ctx context.Context) ([]models.User, error) {
	owners := []models.User{}
	err := s.db.WithContext(ctx).
		Preload("Canteens").
		Where("role = ?", models.RoleCanteenOwner).
		Order("username ASC").
		Find(&owners).Error
	return owners, err
}
