package models

import (
	"time"
)

// User is a chat user participating in the reward economy.
// Created on first interaction, never deleted. Point changes, referral
// credits and ban toggles all go through the services layer.
type User struct {
	TelegramID    string    `gorm:"primaryKey;type:varchar(32)" json:"telegram_id"`
	Username      string    `gorm:"index" json:"username"`
	JoinDate      time.Time `json:"join_date"`
	Points        int       `gorm:"not null;default:20" json:"points"`
	ReferralCount int       `gorm:"not null;default:0" json:"referral_count"`
	Banned        bool      `gorm:"not null;default:false" json:"banned"`

	// PendingReferrer holds the referrer ID parsed from a /start payload
	// until the user's first verified interaction converts it into a
	// Referral row.
	PendingReferrer *string `json:"pending_referrer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
