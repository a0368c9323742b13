package repo

import (
	"time"

	"medstock/app/models"

	"gorm.io/gorm"
)

type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

// Append is the only write path; audit rows are never updated or
// deleted by normal flows.
func (r *AuditRepository) Append(e *models.SecurityAuditLog) error {
	return r.db.Create(e).Error
}

func (r *AuditRepository) List(userID uint, limit, offset int) ([]models.SecurityAuditLog, error) {
	var out []models.SecurityAuditLog
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	return out, q.Find(&out).Error
}

func (r *AuditRepository) CountFailures(userID uint, event models.SecurityEvent, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.SecurityAuditLog{}).
		Where("user_id = ? AND event = ? AND success = ? AND created_at > ?", userID, event, false, since).
		Count(&count).Error
	return count, err
}

func (r *AuditRepository) DistinctIPs(userID uint, since time.Time) ([]string, error) {
	var ips []string
	err := r.db.Model(&models.SecurityAuditLog{}).
		Where("user_id = ? AND created_at > ? AND ip_address <> ''", userID, since).
		Distinct().
		Pluck("ip_address", &ips).Error
	return ips, err
}

func (r *AuditRepository) ListSince(from, to *time.Time) ([]models.SecurityAuditLog, error) {
	var out []models.SecurityAuditLog
	q := r.db.Order("created_at ASC")
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}
	return out, q.Find(&out).Error
}
