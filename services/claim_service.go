// services/claim_service.go
package services

import (
	"errors"
	"fmt"

	"account-rewards-bot/models"

	"gorm.io/gorm"
)

// errClaimAborted rolls back a claim transaction after a conditional
// mutation lost a race; the business outcome is carried in the result.
var errClaimAborted = errors.New("claim aborted")

type ClaimService struct {
	DB *gorm.DB
}

func NewClaimService(db *gorm.DB) *ClaimService {
	return &ClaimService{DB: db}
}

// ClaimAccount debits the fixed account cost and removes one random item
// from the platform's stock pool, as a single transaction. Preconditions
// are checked in order: user exists, balance covers the cost, stock is
// non-empty. The item is deleted by primary key and the debit is guarded
// by points >= cost, so under concurrent claims stock can never go
// negative, no item is dispensed twice, and both mutations apply or
// neither does.
func (s *ClaimService) ClaimAccount(telegramID, platform string) (ClaimResult, error) {
	var result ClaimResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "telegram_id = ?", telegramID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Status = ClaimUserNotFound
				return nil
			}
			return fmt.Errorf("lookup user: %w", err)
		}
		if user.Points < AccountCost {
			result = ClaimResult{Status: ClaimInsufficientPoints, RemainingPoints: user.Points}
			return nil
		}

		var item models.StockItem
		err := tx.Where("platform_name = ?", platform).
			Order("RANDOM()").
			Take(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = ClaimResult{Status: ClaimOutOfStock, RemainingPoints: user.Points}
				return nil
			}
			return fmt.Errorf("pick stock item: %w", err)
		}

		pop := tx.Delete(&models.StockItem{}, "id = ?", item.ID)
		if pop.Error != nil {
			return fmt.Errorf("remove stock item: %w", pop.Error)
		}
		if pop.RowsAffected == 0 {
			result = ClaimResult{Status: ClaimOutOfStock, RemainingPoints: user.Points}
			return errClaimAborted
		}

		debit := tx.Model(&models.User{}).
			Where("telegram_id = ? AND points >= ?", telegramID, AccountCost).
			UpdateColumn("points", gorm.Expr("points - ?", AccountCost))
		if debit.Error != nil {
			return fmt.Errorf("debit points: %w", debit.Error)
		}
		if debit.RowsAffected == 0 {
			result = ClaimResult{Status: ClaimInsufficientPoints, RemainingPoints: user.Points}
			return errClaimAborted
		}

		result = ClaimResult{
			Status:          ClaimSuccess,
			Account:         item.Credential,
			RemainingPoints: user.Points - AccountCost,
		}
		return nil
	})
	if errors.Is(err, errClaimAborted) {
		err = nil
	}
	if err != nil {
		return ClaimResult{}, err
	}
	return result, nil
}
