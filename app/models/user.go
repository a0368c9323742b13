package models

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleStaff   Role = "STAFF"
)

type User struct {
	ID               uint   `gorm:"primaryKey"`
	Email            string `gorm:"uniqueIndex;size:191;not null"`
	Name             string `gorm:"size:191"`
	PasswordHash     string `gorm:"size:255;not null"`
	Role             Role   `gorm:"size:32;not null;default:STAFF"`
	TwoFactorEnabled bool   `gorm:"not null;default:false"`
	TwoFactorSecret  string `gorm:"size:64"`
	// TwoFactorPending holds a secret generated during setup that has not
	// been verified yet. Verification promotes it to TwoFactorSecret.
	TwoFactorPending string `gorm:"size:64"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BackupCode is a single-use 2FA recovery code. Only the hash is stored.
type BackupCode struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	CodeHash  string `gorm:"size:64;index;not null"`
	Used      bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}
