// services/user_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"account-rewards-bot/models"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned by user mutations that target a missing row.
var ErrUserNotFound = errors.New("user not found")

// ErrInsufficientBalance is returned when a negative adjustment would take
// a balance below zero.
var ErrInsufficientBalance = errors.New("insufficient balance")

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// GetUser fetches a user by Telegram ID. The second return value reports
// whether the row exists; a missing user is not an error.
func (s *UserService) GetUser(telegramID string) (models.User, bool, error) {
	var user models.User
	if err := s.DB.First(&user, "telegram_id = ?", telegramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, false, nil
		}
		return user, false, fmt.Errorf("get user %s: %w", telegramID, err)
	}
	return user, true, nil
}

// EnsureUser returns the existing user or creates one with the default
// point balance. pendingReferrer is only applied on first creation; an
// existing row is never overwritten by a later /start payload.
func (s *UserService) EnsureUser(telegramID, username string, pendingReferrer *string) (models.User, error) {
	user := models.User{
		TelegramID:      telegramID,
		Username:        username,
		JoinDate:        time.Now().UTC(),
		PendingReferrer: pendingReferrer,
	}
	res := s.DB.Where("telegram_id = ?", telegramID).FirstOrCreate(&user)
	if res.Error != nil {
		// Two first contacts from the same user can race the insert; the
		// loser finds the row its rival just created.
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			if err := s.DB.First(&user, "telegram_id = ?", telegramID).Error; err != nil {
				return user, fmt.Errorf("reload user %s: %w", telegramID, err)
			}
			return user, nil
		}
		return user, fmt.Errorf("ensure user %s: %w", telegramID, res.Error)
	}
	if res.RowsAffected > 0 {
		// Reload a fresh row so column defaults (the starting balance) are
		// reflected in the returned struct.
		if err := s.DB.First(&user, "telegram_id = ?", telegramID).Error; err != nil {
			return user, fmt.Errorf("reload user %s: %w", telegramID, err)
		}
	}
	return user, nil
}

// ClearPendingReferrer removes the stored pending referrer after the
// referral has been handed to the Referral Engine.
func (s *UserService) ClearPendingReferrer(telegramID string) error {
	err := s.DB.Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("pending_referrer", nil).Error
	if err != nil {
		return fmt.Errorf("clear pending referrer for %s: %w", telegramID, err)
	}
	return nil
}

// SetBanned toggles the ban flag for a user.
func (s *UserService) SetBanned(telegramID string, banned bool) error {
	res := s.DB.Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("banned", banned)
	if res.Error != nil {
		return fmt.Errorf("set banned=%t for %s: %w", banned, telegramID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AdjustPoints applies a signed delta to a user's balance. The conditional
// WHERE keeps the balance from going below zero on negative deltas.
func (s *UserService) AdjustPoints(telegramID string, delta int) error {
	res := s.DB.Model(&models.User{}).
		Where("telegram_id = ? AND points + ? >= 0", telegramID, delta).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("adjust points for %s: %w", telegramID, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, ok, err := s.GetUser(telegramID); err != nil {
			return err
		} else if !ok {
			return ErrUserNotFound
		}
		return ErrInsufficientBalance
	}
	return nil
}

// ListUsers returns every user, newest first.
func (s *UserService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
