package models

import "time"

// Platform is a named source of claimable account credentials.
type Platform struct {
	Name string `gorm:"primaryKey" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	// LegacyStock carries the old JSON-encoded stock blob from earlier
	// deployments. It is drained into StockItem rows at startup and then
	// cleared; new stock never touches this column.
	LegacyStock string `gorm:"column:stock;type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockItem is one unclaimed account credential for a platform.
// A claim deletes exactly one row, so an item can never be dispensed twice
// and the pool count can never go below zero.
type StockItem struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PlatformName string `gorm:"index;not null" json:"platform_name"`
	Credential   string `gorm:"type:text;not null" json:"credential"`

	CreatedAt time.Time `json:"created_at"`
}
