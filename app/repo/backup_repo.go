package repo

import (
	"strings"
	"time"

	"medstock/app/models"

	"gorm.io/gorm"
)

type BackupFilter struct {
	Type   models.BackupType
	Status models.BackupStatus
	Search string
}

type BackupRepository struct{ db *gorm.DB }

func NewBackupRepository(db *gorm.DB) *BackupRepository { return &BackupRepository{db: db} }

func (r *BackupRepository) Create(b *models.Backup) error { return r.db.Create(b).Error }

func (r *BackupRepository) Save(b *models.Backup) error { return r.db.Save(b).Error }

func (r *BackupRepository) FindByID(id string) (*models.Backup, error) {
	var b models.Backup
	if err := r.db.Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BackupRepository) List(f BackupFilter, page, limit int) ([]models.Backup, int64, error) {
	q := r.db.Model(&models.Backup{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		q = q.Where("LOWER(filename) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	var out []models.Backup
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&out).Error
	return out, total, err
}

func (r *BackupRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Backup{}).Error
}

func (r *BackupRepository) Latest() (*models.Backup, error) {
	var b models.Backup
	err := r.db.Order("created_at DESC").First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BackupRepository) LatestOfType(t models.BackupType) (*models.Backup, error) {
	var b models.Backup
	err := r.db.Where("type = ?", t).Order("created_at DESC").First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// RecentFirst returns all backups newest first, for streak and failure
// rate computation.
func (r *BackupRepository) RecentFirst(limit int) ([]models.Backup, error) {
	var out []models.Backup
	return out, r.db.Order("created_at DESC").Limit(limit).Find(&out).Error
}

func (r *BackupRepository) CountFailedSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Backup{}).
		Where("status = ? AND created_at > ?", models.BackupFailed, since).
		Count(&count).Error
	return count, err
}

func (r *BackupRepository) TotalSize() (int64, error) {
	var total int64
	err := r.db.Model(&models.Backup{}).
		Select("COALESCE(SUM(file_size), 0)").
		Scan(&total).Error
	return total, err
}

func (r *BackupRepository) FindByStoragePath(path string) (*models.Backup, error) {
	var b models.Backup
	if err := r.db.Where("storage_path = ?", path).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}
