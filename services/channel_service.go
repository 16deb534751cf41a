// services/channel_service.go
package services

import (
	"errors"
	"fmt"

	"account-rewards-bot/models"

	"gorm.io/gorm"
)

// ErrChannelNotFound is returned when a removal targets an unknown channel.
var ErrChannelNotFound = errors.New("channel not found")

type ChannelService struct {
	DB *gorm.DB
}

func NewChannelService(db *gorm.DB) *ChannelService {
	return &ChannelService{DB: db}
}

// AddChannel registers an announcement channel link.
func (s *ChannelService) AddChannel(link string) (models.Channel, error) {
	channel := models.Channel{Link: link}
	if err := s.DB.Create(&channel).Error; err != nil {
		return channel, fmt.Errorf("add channel: %w", err)
	}
	return channel, nil
}

// RemoveChannel deletes a channel by its numeric ID.
func (s *ChannelService) RemoveChannel(id uint) error {
	res := s.DB.Delete(&models.Channel{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("remove channel %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrChannelNotFound
	}
	return nil
}

// ListChannels returns every channel, oldest first.
func (s *ChannelService) ListChannels() ([]models.Channel, error) {
	var channels []models.Channel
	if err := s.DB.Order("id").Find(&channels).Error; err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return channels, nil
}
