package models

import "time"

// Session is one active login. Rotation replaces Token in place; expired
// rows drop out of active queries but are not eagerly deleted.
type Session struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     uint   `gorm:"index;not null"`
	Token      string `gorm:"uniqueIndex;size:128;not null"`
	Device     string `gorm:"size:64"`
	Browser    string `gorm:"size:64"`
	OS         string `gorm:"size:64"`
	IPAddress  string `gorm:"size:45"`
	Location   string `gorm:"size:128"`
	LastActive time.Time
	ExpiresAt  time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
}
