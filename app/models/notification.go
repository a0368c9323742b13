package models

import "time"

type Notification struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Kind      string `gorm:"size:32;not null"`
	Title     string `gorm:"size:255;not null"`
	Body      string `gorm:"size:1024"`
	Read      bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}
