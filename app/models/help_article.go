package models

import "time"

type HelpArticle struct {
	ID        uint   `gorm:"primaryKey"`
	Slug      string `gorm:"uniqueIndex;size:128;not null"`
	Title     string `gorm:"size:255;not null"`
	Category  string `gorm:"size:128;index"`
	Body      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
