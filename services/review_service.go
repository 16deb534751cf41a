// services/review_service.go
package services

import (
	"fmt"

	"account-rewards-bot/models"

	"gorm.io/gorm"
)

type ReviewService struct {
	DB *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db}
}

// Add stores one review. Users can leave as many as they like; the table is
// append-only.
func (s *ReviewService) Add(userID, text string) error {
	review := models.Review{UserID: userID, Review: text}
	if err := s.DB.Create(&review).Error; err != nil {
		return fmt.Errorf("add review: %w", err)
	}
	return nil
}

// Recent returns the latest reviews, newest first.
func (s *ReviewService) Recent(limit int) ([]models.Review, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var reviews []models.Review
	err := s.DB.Order("id DESC").Limit(limit).Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
