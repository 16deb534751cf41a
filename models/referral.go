package models

import "time"

// Referral records that ReferrerID brought ReferredID into the system.
// The unique index on ReferredID is the enforcement point for the
// one-credit-per-referred-user rule: a second insert for the same referred
// user fails the constraint no matter who the referrer is.
type Referral struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ReferrerID string `gorm:"index;not null" json:"referrer_id"`
	ReferredID string `gorm:"uniqueIndex;not null" json:"referred_id"`

	CreatedAt time.Time `json:"created_at"`
}
