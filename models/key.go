package models

import "time"

// KeyType is the tier of a reward key, which fixes its point value.
type KeyType string

const (
	KeyTypeNormal  KeyType = "normal"
	KeyTypePremium KeyType = "premium"
)

// Key is a single-use code redeemable for a fixed point credit.
// Claimed transitions false -> true exactly once; ClaimedBy and the credit
// are permanent after that.
type Key struct {
	Code      string  `gorm:"primaryKey" json:"code"`
	Type      KeyType `gorm:"not null" json:"type"`
	Points    int     `gorm:"not null" json:"points"`
	Claimed   bool    `gorm:"not null;default:false;index" json:"claimed"`
	ClaimedBy *string `json:"claimed_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
