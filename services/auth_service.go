package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/cache"
	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/utils"
)

// PasswordCost is the bcrypt cost for new hashes. Tests lower it.
var PasswordCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

type RegisterInput struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,password"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileInput struct {
	Username *string `json:"username" binding:"omitempty,username"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,password"`
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService struct {
	db      *gorm.DB
	tokens  *utils.TokenManager
	domains *EmailDomainService
	cache   cache.Cache
	log     *logrus.Logger
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenManager, domains *EmailDomainService, c cache.Cache, log *logrus.Logger) *AuthService {
	return &AuthService{db: db, tokens: tokens, domains: domains, cache: c, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// checkUnique rejects an email or username already used by another user.
func checkUnique(tx *gorm.DB, email, username, exceptID string) error {
	if email != "" {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, exceptID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return utils.NewBusinessError("Email already in use")
		}
	}
	if username != "" {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ? AND id <> ?", username, exceptID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return utils.NewBusinessError("Username already in use")
		}
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if !utils.ValidUsername(in.Username) {
		return nil, utils.NewValidationError("Validation error",
			utils.FieldError{Field: "username", Message: "username must be 3-30 letters, numbers or underscores"})
	}
	if msg := utils.PasswordProblem(in.Password); msg != "" {
		return nil, utils.NewValidationError(msg, utils.FieldError{Field: "password", Message: msg})
	}
	if err := s.domains.RequireAllowed(ctx, email); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{Username: in.Username, Email: email, Password: hashed, Role: models.RoleUser}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, email, in.Username, ""); err != nil {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewConflictError("Email or username already in use")
		}
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return &AuthResult{User: &user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(in.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewUnauthorizedError("Invalid email or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: &user, Token: token}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Canteens").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.User, error) {
	if in.Username == nil && in.Email == nil {
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
		if !utils.ValidUsername(username) {
			return nil, utils.NewValidationError("Validation error",
				utils.FieldError{Field: "username", Message: "username must be 3-30 letters, numbers or underscores"})
		}
		updates["username"] = username
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

func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if msg := utils.PasswordProblem(in.NewPassword); msg != "" {
		return utils.NewValidationError(msg, utils.FieldError{Field: "newPassword", Message: msg})
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("User not found")
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return utils.NewBusinessError("Current password is incorrect")
	}
	if in.CurrentPassword == in.NewPassword {
		return utils.NewBusinessError("New password must be different from current password")
	}

	hashed, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", hashed).Error; err != nil {
		return err
	}
	s.log.WithField("user_id", userID).Info("password changed")
	return nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *utils.CustomClaims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, cache.RevokedTokenKey(claims.ID), []byte("1"), ttl)
}

// IsRevoked reports whether a token id was logged out. Cache errors count as
// not revoked.
func (s *AuthService) IsRevoked(ctx context.Context, tokenID string) bool {
	if tokenID == "" {
		return false
	}
	_, err := s.cache.Get(ctx, cache.RevokedTokenKey(tokenID))
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		s.log.WithError(err).Warn("token revocation lookup failed")
	}
	return err == nil
}
