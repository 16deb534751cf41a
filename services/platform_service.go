// services/platform_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"account-rewards-bot/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ErrPlatformExists is returned when a platform name is already taken.
var ErrPlatformExists = errors.New("platform already exists")

// ErrPlatformNotFound is returned when an operation targets an unknown platform.
var ErrPlatformNotFound = errors.New("platform not found")

type PlatformService struct {
	DB *gorm.DB
}

func NewPlatformService(db *gorm.DB) *PlatformService {
	return &PlatformService{DB: db}
}

// PlatformSummary is the admin-facing view of a platform and its pool size.
type PlatformSummary struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	StockCount int64  `json:"stock_count"`
}

// AddPlatform registers a new platform with an empty stock pool.
func (s *PlatformService) AddPlatform(name string) (models.Platform, error) {
	platform := models.Platform{
		Name: name,
		Slug: slug.Make(name),
	}
	if err := s.DB.Create(&platform).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platform, ErrPlatformExists
		}
		return platform, fmt.Errorf("create platform %s: %w", name, err)
	}
	return platform, nil
}

// RemovePlatform deletes a platform and everything left in its pool.
func (s *PlatformService) RemovePlatform(name string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.StockItem{}, "platform_name = ?", name).Error; err != nil {
			return fmt.Errorf("drop stock for %s: %w", name, err)
		}
		res := tx.Delete(&models.Platform{}, "name = ?", name)
		if res.Error != nil {
			return fmt.Errorf("delete platform %s: %w", name, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPlatformNotFound
		}
		return nil
	})
}

// GetPlatformBySlug resolves a platform from the slug used in callback data.
func (s *PlatformService) GetPlatformBySlug(slugStr string) (models.Platform, bool, error) {
	var platform models.Platform
	if err := s.DB.First(&platform, "slug = ?", slugStr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return platform, false, nil
		}
		return platform, false, fmt.Errorf("get platform by slug %s: %w", slugStr, err)
	}
	return platform, true, nil
}

// ListPlatforms returns every platform with its current stock count, in one
// grouped query.
func (s *PlatformService) ListPlatforms() ([]PlatformSummary, error) {
	var summaries []PlatformSummary
	err := s.DB.Model(&models.Platform{}).
		Select("platforms.name AS name, platforms.slug AS slug, COUNT(stock_items.id) AS stock_count").
		Joins("LEFT JOIN stock_items ON stock_items.platform_name = platforms.name").
		Group("platforms.name, platforms.slug").
		Order("platforms.name").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	return summaries, nil
}

// StockCount returns the number of unclaimed items for a platform.
func (s *PlatformService) StockCount(name string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.StockItem{}).
		Where("platform_name = ?", name).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count stock for %s: %w", name, err)
	}
	return count, nil
}

// AddStock appends account credentials to a platform's pool and returns how
// many were added.
func (s *PlatformService) AddStock(name string, accounts []string) (int, error) {
	var platform models.Platform
	if err := s.DB.First(&platform, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrPlatformNotFound
		}
		return 0, fmt.Errorf("lookup platform %s: %w", name, err)
	}

	items := make([]models.StockItem, 0, len(accounts))
	for _, account := range accounts {
		if account == "" {
			continue
		}
		items = append(items, models.StockItem{
			ID:           uuid.NewString(),
			PlatformName: name,
			Credential:   account,
		})
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := s.DB.Create(&items).Error; err != nil {
		return 0, fmt.Errorf("add stock to %s: %w", name, err)
	}
	return len(items), nil
}

// ImportLegacyStock drains the old JSON-encoded stock column into the
// stock_items table. A blob that fails to decode is treated as an empty
// pool — the original system made the same availability-over-correctness
// call — but we log it so the data loss is visible. Runs once at startup;
// imported columns are cleared so re-runs are no-ops.
func (s *PlatformService) ImportLegacyStock() error {
	var platforms []models.Platform
	if err := s.DB.Where("stock IS NOT NULL AND stock != ''").Find(&platforms).Error; err != nil {
		return fmt.Errorf("scan legacy stock: %w", err)
	}

	for _, platform := range platforms {
		var accounts []string
		if err := json.Unmarshal([]byte(platform.LegacyStock), &accounts); err != nil {
			log.Printf("⚠️  Platform %s has a malformed legacy stock blob, importing as empty: %v", platform.Name, err)
			accounts = nil
		}

		err := s.DB.Transaction(func(tx *gorm.DB) error {
			for _, account := range accounts {
				if account == "" {
					continue
				}
				item := models.StockItem{
					ID:           uuid.NewString(),
					PlatformName: platform.Name,
					Credential:   account,
				}
				if err := tx.Create(&item).Error; err != nil {
					return fmt.Errorf("import item for %s: %w", platform.Name, err)
				}
			}
			return tx.Model(&models.Platform{}).
				Where("name = ?", platform.Name).
				Update("stock", "").Error
		})
		if err != nil {
			return err
		}
		log.Printf("📦 Imported %d legacy stock item(s) for platform %s", len(accounts), platform.Name)
	}
	return nil
}
