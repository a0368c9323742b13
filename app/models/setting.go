package models

import "time"

// Setting is a key/value application setting, included in backups when
// requested.
type Setting struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"uniqueIndex;size:128;not null"`
	Value     string `gorm:"size:1024"`
	UpdatedAt time.Time
}
