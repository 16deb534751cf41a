package models

import "time"

// Channel is an announcement channel link maintained by the admins and
// shown to users from the main menu.
type Channel struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Link string `gorm:"not null" json:"link"`

	CreatedAt time.Time `json:"created_at"`
}
