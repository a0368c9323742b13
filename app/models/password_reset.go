package models

import "time"

// PasswordResetToken is single-use. Issuing a new token purges the
// user's older ones, so at most one valid unused token exists per user.
type PasswordResetToken struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"uniqueIndex;size:128;not null"`
	UserID    uint   `gorm:"index;not null"`
	ExpiresAt time.Time
	Used      bool `gorm:"not null;default:false"`
	CreatedAt time.Time
}
