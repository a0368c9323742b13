package models

import "time"

// InventoryItem is one stocked medical product. SKU is the natural key
// used when merging restored data against the live dataset.
type InventoryItem struct {
	ID         uint   `gorm:"primaryKey"`
	SKU        string `gorm:"uniqueIndex;size:64;not null"`
	Name       string `gorm:"size:255;not null"`
	Category   string `gorm:"size:128;index"`
	Quantity   int    `gorm:"not null;default:0"`
	Unit       string `gorm:"size:32"`
	Location   string `gorm:"size:128"`
	ExpiryDate *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
