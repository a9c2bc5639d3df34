package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/cache"
	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/utils"
)

var maxMenuPrice = decimal.New(1, 8) // decimal(10,2)

type CanteenInput struct {
	Name string `json:"name" binding:"required,min=3,max=100"`
}

type UpdateCanteenInput struct {
	Name   *string `json:"name" binding:"omitempty,min=3,max=100"`
	IsOpen *bool   `json:"isOpen"`
}

type MenuItemInput struct {
	Name        string          `json:"name" binding:"required,min=2,max=100"`
	Description string          `json:"description" binding:"required,min=10,max=500"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int            `json:"stock" binding:"required,gte=0"`
}

type UpdateMenuItemInput struct {
	Name        *string          `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string          `json:"description" binding:"omitempty,min=10,max=500"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
}

// CanteenService manages canteens and their menus. Reads are cache-aside;
// every write drops the affected keys once the transaction has committed.
type CanteenService struct {
	db    *gorm.DB
	cache cache.Cache
	log   *logrus.Logger
}

func NewCanteenService(db *gorm.DB, c cache.Cache, log *logrus.Logger) *CanteenService {
	return &CanteenService{db: db, cache: c, log: log}
}

func ownerSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "role")
}

func (s *CanteenService) CreateCanteen(ctx context.Context, actor Actor, in CanteenInput) (*models.Canteen, error) {
	if !CanCreateCanteen(actor) {
		return nil, utils.NewForbiddenError("Unauthorized: Only canteen owners or admins can create canteens")
	}
	name := strings.TrimSpace(in.Name)
	if len(name) < 3 || len(name) > 100 {
		return nil, utils.NewValidationError("Validation error",
			utils.FieldError{Field: "name", Message: "name must be between 3 and 100 characters"})
	}

	canteen := models.Canteen{Name: name, IsOpen: true, OwnerID: actor.ID}
	if err := s.db.WithContext(ctx).Create(&canteen).Error; err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"canteen_id": canteen.ID, "owner_id": actor.ID}).Info("canteen created")
	cache.Invalidate(ctx, s.cache, s.log, cache.KeyCanteenList)
	return &canteen, nil
}

func (s *CanteenService) ListCanteens(ctx context.Context) ([]models.Canteen, error) {
	canteens := []models.Canteen{}
	if cache.GetJSON(ctx, s.cache, s.log, cache.KeyCanteenList, &canteens) {
		return canteens, nil
	}

	err := s.db.WithContext(ctx).
		Preload("Owner", ownerSummary).
		Order("name ASC").
		Find(&canteens).Error
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, s.log, cache.KeyCanteenList, canteens, cache.CanteenTTL)
	return canteens, nil
}

func (s *CanteenService) GetCanteen(ctx context.Context, canteenID string) (*models.Canteen, error) {
	var canteen models.Canteen
	key := cache.CanteenKey(canteenID)
	if cache.GetJSON(ctx, s.cache, s.log, key, &canteen) {
		return &canteen, nil
	}

	err := s.db.WithContext(ctx).
		Preload("Owner", ownerSummary).
		Preload("MenuItems", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&canteen, "id = ?", canteenID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Canteen not found")
		}
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, s.log, key, canteen, cache.CanteenTTL)
	return &canteen, nil
}

// managedCanteen loads a canteen and checks the actor may manage it.
func (s *CanteenService) managedCanteen(tx *gorm.DB, actor Actor, canteenID, action string) (*models.Canteen, error) {
	var canteen models.Canteen
	if err := tx.First(&canteen, "id = ?", canteenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Canteen not found")
		}
		return nil, err
	}
	if !CanManageCanteen(actor, &canteen) {
		return nil, utils.NewForbiddenError("Unauthorized: Only the canteen owner or admin can " + action)
	}
	return &canteen, nil
}

func (s *CanteenService) UpdateCanteen(ctx context.Context, actor Actor, canteenID string, in UpdateCanteenInput) (*models.Canteen, error) {
	if in.Name == nil && in.IsOpen == nil {
		return nil, utils.NewValidationError("At least one field must be provided for update")
	}

	var canteen *models.Canteen
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		canteen, err = s.managedCanteen(tx, actor, canteenID, "update this canteen")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if len(name) < 3 || len(name) > 100 {
				return utils.NewValidationError("Validation error",
					utils.FieldError{Field: "name", Message: "name must be between 3 and 100 characters"})
			}
			updates["name"] = name
			canteen.Name = name
		}
		if in.IsOpen != nil {
			updates["is_open"] = *in.IsOpen
			canteen.IsOpen = *in.IsOpen
		}
		return tx.Model(&models.Canteen{}).Where("id = ?", canteen.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, s.cache, s.log, cache.CanteenKeys(canteenID)...)
	return canteen, nil
}

// ToggleStatus flips isOpen. The flip is done in SQL so two toggles never
// read the same old value.
func (s *CanteenService) ToggleStatus(ctx context.Context, actor Actor, canteenID string) (*models.Canteen, error) {
	var canteen *models.Canteen
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		canteen, err = s.managedCanteen(tx, actor, canteenID, "update this canteen")
		if err != nil {
			return err
		}
		err = tx.Model(&models.Canteen{}).
			Where("id = ?", canteen.ID).
			Update("is_open", gorm.Expr("NOT is_open")).Error
		if err != nil {
			return err
		}
		return tx.First(canteen, "id = ?", canteen.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"canteen_id": canteen.ID, "is_open": canteen.IsOpen}).Info("canteen status toggled")
	cache.Invalidate(ctx, s.cache, s.log, cache.CanteenKeys(canteenID)...)
	return canteen, nil
}

func validatePrice(price decimal.Decimal) *utils.FieldError {
	switch {
	case !price.IsPositive():
		return &utils.FieldError{Field: "price", Message: "price must be greater than 0"}
	case !price.Equal(price.Round(2)):
		return &utils.FieldError{Field: "price", Message: "price must have at most 2 decimal places"}
	case !price.LessThan(maxMenuPrice):
		return &utils.FieldError{Field: "price", Message: "price is too large"}
	}
	return nil
}

func (s *CanteenService) CreateMenuItem(ctx context.Context, actor Actor, canteenID string, in MenuItemInput) (*models.MenuItem, error) {
	if fe := validatePrice(in.Price); fe != nil {
		return nil, utils.NewValidationError("Validation error", *fe)
	}
	if in.Stock == nil || *in.Stock < 0 {
		return nil, utils.NewValidationError("Validation error",
			utils.FieldError{Field: "stock", Message: "stock must be greater than or equal to 0"})
	}

	var item models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.managedCanteen(tx, actor, canteenID, "create menu items"); err != nil {
			return err
		}
		item = models.MenuItem{
			CanteenID:   canteenID,
			Name:        strings.TrimSpace(in.Name),
			Description: strings.TrimSpace(in.Description),
			Price:       in.Price.Round(2),
			Stock:       *in.Stock,
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, s.cache, s.log, cache.CanteenKey(canteenID), cache.MenuKey(canteenID))
	return &item, nil
}

func (s *CanteenService) ListMenuItems(ctx context.Context, canteenID string) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	key := cache.MenuKey(canteenID)
	if cache.GetJSON(ctx, s.cache, s.log, key, &items) {
		return items, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Canteen{}).Where("id = ?", canteenID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, utils.NewNotFoundError("Canteen not found")
	}
	if err := s.db.WithContext(ctx).Where("canteen_id = ?", canteenID).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, s.log, key, items, cache.MenuTTL)
	return items, nil
}

// menuItemIn loads a menu item and checks it belongs to the canteen and that
// the actor may manage that canteen.
func (s *CanteenService) menuItemIn(tx *gorm.DB, actor Actor, canteenID, itemID, action string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Menu item not found")
		}
		return nil, err
	}
	if item.CanteenID != canteenID {
		return nil, utils.NewBusinessError("Menu item does not belong to this canteen")
	}
	if _, err := s.managedCanteen(tx, actor, canteenID, action); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CanteenService) UpdateMenuItem(ctx context.Context, actor Actor, canteenID, itemID string, in UpdateMenuItemInput) (*models.MenuItem, error) {
	if in.Name == nil && in.Description == nil && in.Price == nil && in.Stock == nil {
		return nil, utils.NewValidationError("At least one field must be provided for update")
	}
	if in.Price != nil {
		if fe := validatePrice(*in.Price); fe != nil {
			return nil, utils.NewValidationError("Validation error", *fe)
		}
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, utils.NewValidationError("Validation error",
			utils.FieldError{Field: "stock", Message: "stock must be greater than or equal to 0"})
	}

	var item *models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		item, err = s.menuItemIn(tx, actor, canteenID, itemID, "update menu items")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			updates["description"] = strings.TrimSpace(*in.Description)
		}
		if in.Price != nil {
			updates["price"] = in.Price.Round(2)
		}
		if in.Stock != nil {
			updates["stock"] = *in.Stock
		}
		if err := tx.Model(&models.MenuItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(item, "id = ?", item.ID).Error
	})
	if err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, s.cache, s.log, cache.CanteenKey(canteenID), cache.MenuKey(canteenID))
	return item, nil
}

func (s *CanteenService) DeleteMenuItem(ctx context.Context, actor Actor, canteenID, itemID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.menuItemIn(tx, actor, canteenID, itemID, "delete menu items")
		if err != nil {
			return err
		}
		return tx.Delete(&models.MenuItem{}, "id = ?", item.ID).Error
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"canteen_id": canteenID, "menu_item_id": itemID}).Info("menu item deleted")
	cache.Invalidate(ctx, s.cache, s.log, cache.CanteenKey(canteenID), cache.MenuKey(canteenID))
	return nil
}
