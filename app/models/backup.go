package models

import "time"

type BackupType string

const (
	BackupManual     BackupType = "MANUAL"
	BackupAutomatic  BackupType = "AUTOMATIC"
	BackupPreRestore BackupType = "PRE_RESTORE"
)

type BackupStatus string

const (
	BackupInProgress BackupStatus = "IN_PROGRESS"
	BackupCompleted  BackupStatus = "COMPLETED"
	BackupFailed     BackupStatus = "FAILED"
	BackupCorrupted  BackupStatus = "CORRUPTED"
)

// Backup is a point-in-time export of the inventory dataset. Once
// COMPLETED only the validation fields change; deletion is explicit.
type Backup struct {
	ID          string       `gorm:"primaryKey;size:36"`
	Filename    string       `gorm:"size:255;not null;index"`
	Type        BackupType   `gorm:"size:20;not null;index"`
	Format      string       `gorm:"size:20;not null;default:json"`
	FileSize    int64        `gorm:"not null;default:0"`
	RecordCount int          `gorm:"not null;default:0"`
	StoragePath string       `gorm:"size:512;not null"`
	Status      BackupStatus `gorm:"size:20;not null;index"`
	Encrypted   bool         `gorm:"not null;default:false"`
	Checksum    string       `gorm:"size:64"`
	Validated   bool         `gorm:"not null;default:false"`
	ValidatedAt *time.Time

	RangeFrom        *time.Time
	RangeTo          *time.Time
	IncludeAuditLogs bool `gorm:"not null;default:false"`
	IncludeUsers     bool `gorm:"not null;default:false"`
	IncludeSettings  bool `gorm:"not null;default:false"`

	CreatedBy    uint `gorm:"index"`
	StartedAt    time.Time
	CompletedAt  *time.Time
	ErrorMessage string `gorm:"size:512"`
	CreatedAt    time.Time
}
