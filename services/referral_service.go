// services/referral_service.go
package services

import (
	"errors"
	"fmt"

	"account-rewards-bot/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errDuplicateReferral aborts the referral transaction without surfacing an
// error to the caller; the duplicate outcome is carried in the result.
var errDuplicateReferral = errors.New("referral already recorded")

type ReferralService struct {
	DB *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{DB: db}
}

// RecordReferral inserts a referral row and credits the referrer, as one
// transaction. The unique index on referred_id arbitrates concurrent calls:
// exactly one insert succeeds, every other attempt (same or different
// referrer) rolls back and reports ReferralDuplicate without crediting
// anyone. Matching the original product behavior, a duplicate is a silent
// skip, not an error.
func (s *ReferralService) RecordReferral(referrerID, referredID string) (ReferralResult, error) {
	var result ReferralResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		referral := models.Referral{
			ID:         uuid.NewString(),
			ReferrerID: referrerID,
			ReferredID: referredID,
		}
		if err := tx.Create(&referral).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				result.Status = ReferralDuplicate
				return errDuplicateReferral
			}
			return fmt.Errorf("create referral: %w", err)
		}

		// An unknown referrer ID (a stale or made-up /start payload) makes
		// the credit update zero rows. The referral row is still recorded
		// and the call still reports credited, matching the original
		// product; the referred user is not asked to retry over a bad link.
		credit := tx.Model(&models.User{}).
			Where("telegram_id = ?", referrerID).
			UpdateColumns(map[string]interface{}{
				"points":         gorm.Expr("points + ?", ReferralReward),
				"referral_count": gorm.Expr("referral_count + 1"),
			})
		if credit.Error != nil {
			return fmt.Errorf("credit referrer %s: %w", referrerID, credit.Error)
		}

		result.Status = ReferralCredited
		return nil
	})
	if errors.Is(err, errDuplicateReferral) {
		err = nil
	}
	if err != nil {
		return ReferralResult{}, err
	}
	return result, nil
}

// ReferralsBy returns the referrals credited to a given referrer.
func (s *ReferralService) ReferralsBy(referrerID string) ([]models.Referral, error) {
	var referrals []models.Referral
	err := s.DB.Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Find(&referrals).Error
	if err != nil {
		return nil, fmt.Errorf("list referrals for %s: %w", referrerID, err)
	}
	return referrals, nil
}
