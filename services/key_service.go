// services/key_service.go
package services

import (
	"errors"
	"fmt"
	"math/rand"

	"account-rewards-bot/models"

	"gorm.io/gorm"
)

const (
	keySuffixLength   = 10
	keyAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	keyCollisionRetry = 5
)

type KeyService struct {
	DB *gorm.DB
}

func NewKeyService(db *gorm.DB) *KeyService {
	return &KeyService{DB: db}
}

// RedeemKey claims a key for a user and credits its point value, as one
// transaction. The conditional UPDATE on claimed = false is the arbiter
// under concurrency: of two racing redemptions exactly one flips the flag,
// the other sees zero rows affected and reports AlreadyClaimed.
func (s *KeyService) RedeemKey(code, telegramID string) (RedeemResult, error) {
	var result RedeemResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var key models.Key
		if err := tx.First(&key, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Status = RedeemNotFound
				return nil
			}
			return fmt.Errorf("lookup key: %w", err)
		}
		if key.Claimed {
			result.Status = RedeemAlreadyClaimed
			return nil
		}

		claim := tx.Model(&models.Key{}).
			Where("code = ? AND claimed = ?", code, false).
			Updates(map[string]interface{}{
				"claimed":    true,
				"claimed_by": telegramID,
			})
		if claim.Error != nil {
			return fmt.Errorf("claim key: %w", claim.Error)
		}
		if claim.RowsAffected == 0 {
			result.Status = RedeemAlreadyClaimed
			return nil
		}

		credit := tx.Model(&models.User{}).
			Where("telegram_id = ?", telegramID).
			UpdateColumn("points", gorm.Expr("points + ?", key.Points))
		if credit.Error != nil {
			return fmt.Errorf("credit user %s: %w", telegramID, credit.Error)
		}

		result = RedeemResult{Status: RedeemSuccess, PointsAwarded: key.Points}
		return nil
	})
	if err != nil {
		return RedeemResult{}, err
	}
	return result, nil
}

// GenerateKeys creates qty unclaimed keys of the given tier and returns
// them. Codes are tier-prefixed random suffixes; the primary key constraint
// backstops uniqueness, with a bounded retry on the unlikely collision.
func (s *KeyService) GenerateKeys(keyType models.KeyType, qty int) ([]models.Key, error) {
	points := NormalKeyPoints
	if keyType == models.KeyTypePremium {
		points = PremiumKeyPoints
	}

	keys := make([]models.Key, 0, qty)
	for i := 0; i < qty; i++ {
		var created *models.Key
		for attempt := 0; attempt < keyCollisionRetry; attempt++ {
			key := models.Key{
				Code:   generateKeyCode(keyType),
				Type:   keyType,
				Points: points,
			}
			if err := s.DB.Create(&key).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return keys, fmt.Errorf("create key: %w", err)
			}
			created = &key
			break
		}
		if created == nil {
			return keys, fmt.Errorf("could not generate a unique %s key after %d attempts", keyType, keyCollisionRetry)
		}
		keys = append(keys, *created)
	}
	return keys, nil
}

// ListKeys returns every key, newest first.
func (s *KeyService) ListKeys() ([]models.Key, error) {
	var keys []models.Key
	if err := s.DB.Order("created_at DESC").Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

func generateKeyCode(keyType models.KeyType) string {
	prefix := "NKEY-"
	if keyType == models.KeyTypePremium {
		prefix = "PKEY-"
	}
	suffix := make([]byte, keySuffixLength)
	for i := range suffix {
		suffix[i] = keyAlphabet[rand.Intn(len(keyAlphabet))]
	}
	return prefix + string(suffix)
}
