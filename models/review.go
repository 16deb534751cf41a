package models

import "time"

// Review is free-form feedback a user left through the chat menu.
type Review struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`
	Review string `gorm:"type:text;not null" json:"review"`

	CreatedAt time.Time `json:"created_at"`
}
