package repo

import (
	"errors"
	"time"

	"medstock/app/models"

	"gorm.io/gorm"
)

type ResetTokenRepository struct{ db *gorm.DB }

func NewResetTokenRepository(db *gorm.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Issue purges any older tokens for the user before creating the new
// one, keeping at most one live token per user.
func (r *ResetTokenRepository) Issue(t *models.PasswordResetToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", t.UserID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

func (r *ResetTokenRepository) Find(token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.db.Where("token = ?", token).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ConsumeUnused flips Used exactly once; a second call for the same
// token affects zero rows.
func (r *ResetTokenRepository) ConsumeUnused(token string, now time.Time) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PasswordResetToken{}).
			Where("token = ? AND used = ? AND expires_at > ?", token, false, now).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("token = ?", token).First(&t).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ResetTokenRepository) DeleteExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", now).Delete(&models.PasswordResetToken{})
	return res.RowsAffected, res.Error
}
