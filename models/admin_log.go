package models

import "time"

// AdminLog is an append-only audit record of an admin action.
// Rows are written once and never updated or deleted.
type AdminLog struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	AdminID string `gorm:"index;not null" json:"admin_id"`
	Action  string `gorm:"type:text;not null" json:"action"`

	CreatedAt time.Time `json:"created_at"`
}
