package dto

import "time"

type CreateBackupRequest struct {
	Type             string     `json:"type"`
	IncludeAuditLogs bool       `json:"include_audit_logs"`
	IncludeUsers     bool       `json:"include_users"`
	IncludeSettings  bool       `json:"include_settings"`
	RangeFrom        *time.Time `json:"range_from,omitempty"`
	RangeTo          *time.Time `json:"range_to,omitempty"`
	Password         string     `json:"password,omitempty"`
}

type BackupResponse struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	Type        string     `json:"type"`
	Format      string     `json:"format"`
	FileSize    int64      `json:"file_size"`
	RecordCount int        `json:"record_count"`
	Status      string     `json:"status"`
	Encrypted   bool       `json:"encrypted"`
	Validated   bool       `json:"validated"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Error       string     `json:"error,omitempty"`
}

type BackupListResponse struct {
	Backups []BackupResponse `json:"backups"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

type RestoreRequest struct {
	BackupID      string `json:"backupId"`
	Mode          string `json:"mode"`
	Password      string `json:"password,omitempty"`
	AdminPassword string `json:"adminPassword"`
}

type RestoreSummary struct {
	ItemsAdded   int      `json:"items_added"`
	ItemsUpdated int      `json:"items_updated"`
	ItemsSkipped int      `json:"items_skipped"`
	Errors       []string `json:"errors"`
	DurationMS   int64    `json:"duration_ms"`
}

type ValidateRequest struct {
	BackupID string `json:"backupId"`
	Password string `json:"password,omitempty"`
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Checks []string `json:"checks"`
	Errors []string `json:"errors"`
}

type HealthMetrics struct {
	LastBackupAt    *time.Time `json:"last_backup_at,omitempty"`
	NextScheduledAt *time.Time `json:"next_scheduled_at,omitempty"`
	SuccessStreak   int        `json:"success_streak"`
	Failures30d     int64      `json:"failures_30d"`
	AvgDurationMS   int64      `json:"avg_duration_ms"`
	StorageUsed     int64      `json:"storage_used"`
	StorageTotal    int64      `json:"storage_total"`
	Alerts          []string   `json:"alerts"`
}
