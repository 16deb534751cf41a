// services/admin_log_service.go
package services

import (
	"fmt"

	"account-rewards-bot/models"

	"gorm.io/gorm"
)

type AdminLogService struct {
	DB *gorm.DB
}

func NewAdminLogService(db *gorm.DB) *AdminLogService {
	return &AdminLogService{DB: db}
}

// Record appends one audit entry. The table is write-only; nothing in the
// codebase updates or deletes rows.
func (s *AdminLogService) Record(adminID, action string) error {
	entry := models.AdminLog{AdminID: adminID, Action: action}
	if err := s.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("record admin action: %w", err)
	}
	return nil
}

// Recent returns the latest audit entries, newest first.
func (s *AdminLogService) Recent(limit int) ([]models.AdminLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []models.AdminLog
	err := s.DB.Order("id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list admin logs: %w", err)
	}
	return entries, nil
}
