package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/events"
	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/utils"
)

type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment" binding:"required,min=10,max=500"`
}

type CanteenReviews struct {
	Reviews       []models.Review `json:"reviews"`
	Total         int             `json:"total"`
	AverageRating decimal.Decimal `json:"averageRating"`
}

func validateReview(in ReviewInput) error {
	var fields []utils.FieldError
	if in.Rating < 1 || in.Rating > 5 {
		fields = append(fields, utils.FieldError{Field: "rating", Message: "rating must be between 1 and 5"})
	}
	n := utf8.RuneCountInString(strings.TrimSpace(in.Comment))
	if n < 10 {
		fields = append(fields, utils.FieldError{Field: "comment", Message: "comment must be at least 10 characters"})
	} else if n > 500 {
		fields = append(fields, utils.FieldError{Field: "comment", Message: "comment must be at most 500 characters"})
	}
	if len(fields) > 0 {
		return utils.NewValidationError("Validation error", fields...)
	}
	return nil
}

// CreateReview lets the customer review a completed order once.
func (s *OrderService) CreateReview(ctx context.Context, actor Actor, orderID string, in ReviewInput) (*models.Review, error) {
	if err := validateReview(in); err != nil {
		return nil, err
	}

	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Review").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("Order not found")
			}
			return err
		}
		if !IsOrderOwner(actor, &order) {
			return utils.NewForbiddenError("Unauthorized: You can only review your own orders")
		}
		if order.Status != models.OrderCompleted {
			return utils.NewBusinessError("You can only review completed orders")
		}
		if order.Review != nil {
			return utils.NewBusinessError("You have already reviewed this order")
		}

		review = models.Review{
			OrderID:   order.ID,
			UserID:    actor.ID,
			CanteenID: order.CanteenID,
			Rating:    in.Rating,
			Comment:   strings.TrimSpace(in.Comment),
		}
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.NewBusinessError("You have already reviewed this order")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"review_id": review.ID,
		"order_id":  review.OrderID,
		"rating":    review.Rating,
	}).Info("review created")
	s.publish(ctx, events.New(events.ReviewCreated, review.CanteenID, review))
	return &review, nil
}

// DeleteReview is reserved for the canteen owner and admins.
func (s *OrderService) DeleteReview(ctx context.Context, actor Actor, reviewID string) error {
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("Review not found")
			}
			return err
		}
		var canteen models.Canteen
		if err := tx.First(&canteen, "id = ?", review.CanteenID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if !CanManageCanteen(actor, &canteen) {
			return utils.NewForbiddenError("Unauthorized: Only the canteen owner or admin can delete reviews")
		}
		return tx.Delete(&models.Review{}, "id = ?", review.ID).Error
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"review_id": review.ID,
		"actor_id":  actor.ID,
	}).Info("review deleted")
	s.publish(ctx, events.New(events.ReviewDeleted, review.CanteenID, review))
	return nil
}

// ListCanteenReviews is public and returns reviews newest first with the
// average rating rounded to two places.
func (s *OrderService) ListCanteenReviews(ctx context.Context, canteenID string) (*CanteenReviews, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Canteen{}).Where("id = ?", canteenID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, utils.NewNotFoundError("Canteen not found")
	}

	reviews := []models.Review{}
	err := s.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username", "role") }).
		Where("canteen_id = ?", canteenID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	out := &CanteenReviews{Reviews: reviews, Total: len(reviews), AverageRating: decimal.Zero}
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		out.AverageRating = decimal.NewFromInt(int64(sum)).
			DivRound(decimal.NewFromInt(int64(len(reviews))), 2)
	}
	return out, nil
}

func (s *OrderService) publish(ctx context.Context, evt events.Event) {
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.WithError(err).WithField("event", evt.Type).Warn("publish event failed")
	}
}
