package models

import "time"

type SecurityEvent string

const (
	EventLogin            SecurityEvent = "LOGIN"
	EventLoginFailed      SecurityEvent = "LOGIN_FAILED"
	EventLogout           SecurityEvent = "LOGOUT"
	EventTwoFactorEnabled SecurityEvent = "2FA_ENABLED"
	EventTwoFactorDisable SecurityEvent = "2FA_DISABLED"
	EventTwoFactorVerify  SecurityEvent = "2FA_VERIFIED"
	EventTwoFactorFailed  SecurityEvent = "2FA_FAILED"
	EventPasswordChanged  SecurityEvent = "PASSWORD_CHANGED"
	EventPasswordReset    SecurityEvent = "PASSWORD_RESET_REQUESTED"
	EventSessionRotated   SecurityEvent = "SESSION_ROTATED"
	EventBackupCreated    SecurityEvent = "BACKUP_CREATED"
	EventBackupRestored   SecurityEvent = "BACKUP_RESTORED"
	EventBackupDeleted    SecurityEvent = "BACKUP_DELETED"
	EventCSRFRejected     SecurityEvent = "CSRF_REJECTED"
	EventUpdate           SecurityEvent = "UPDATE"
)

// SecurityAuditLog is append-only; normal flows never mutate or delete
// rows.
type SecurityAuditLog struct {
	ID        uint          `gorm:"primaryKey"`
	UserID    uint          `gorm:"index"`
	Event     SecurityEvent `gorm:"size:32;not null;index"`
	IPAddress string        `gorm:"size:45"`
	UserAgent string        `gorm:"size:512"`
	Success   bool          `gorm:"not null"`
	Metadata  string        `gorm:"size:1024"`
	CreatedAt time.Time     `gorm:"autoCreateTime;index"`
}
