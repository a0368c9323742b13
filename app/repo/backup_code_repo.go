package repo

import (
	"medstock/app/models"

	"gorm.io/gorm"
)

type BackupCodeRepository struct{ db *gorm.DB }

func NewBackupCodeRepository(db *gorm.DB) *BackupCodeRepository {
	return &BackupCodeRepository{db: db}
}

func (r *BackupCodeRepository) ReplaceForUser(userID uint, hashes []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.BackupCode{}).Error; err != nil {
			return err
		}
		for _, h := range hashes {
			if err := tx.Create(&models.BackupCode{UserID: userID, CodeHash: h}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Consume marks an unused code matching hash as used. Returns false when
// no such code exists; the single UPDATE keeps each code one-shot.
func (r *BackupCodeRepository) Consume(userID uint, hash string) (bool, error) {
	res := r.db.Model(&models.BackupCode{}).
		Where("user_id = ? AND code_hash = ? AND used = ?", userID, hash, false).
		Update("used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *BackupCodeRepository) DeleteForUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.BackupCode{}).Error
}

func (r *BackupCodeRepository) CountUnused(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.BackupCode{}).
		Where("user_id = ? AND used = ?", userID, false).
		Count(&count).Error
	return count, err
}
