package repo

import (
	"time"

	"medstock/app/models"

	"gorm.io/gorm"
)

type SessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) *SessionRepository { return &SessionRepository{db: db} }

func (r *SessionRepository) Create(s *models.Session) error { return r.db.Create(s).Error }

func (r *SessionRepository) FindByToken(token string) (*models.Session, error) {
	var s models.Session
	if err := r.db.Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) ListActive(userID uint, now time.Time) ([]models.Session, error) {
	var out []models.Session
	err := r.db.
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("last_active DESC").
		Find(&out).Error
	return out, err
}

// Rotate swaps the session token in a single guarded UPDATE so no window
// exists where both tokens are valid or both invalid. Returns false when
// the old token does not belong to userID or has expired.
func (r *SessionRepository) Rotate(oldToken, newToken string, userID uint, now time.Time) (bool, error) {
	res := r.db.Model(&models.Session{}).
		Where("token = ? AND user_id = ? AND expires_at > ?", oldToken, userID, now).
		Updates(map[string]interface{}{"token": newToken, "last_active": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SessionRepository) Touch(token string, now time.Time) error {
	return r.db.Model(&models.Session{}).Where("token = ?", token).
		Update("last_active", now).Error
}

func (r *SessionRepository) Delete(id string, userID uint) (bool, error) {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Session{})
	return res.RowsAffected > 0, res.Error
}

func (r *SessionRepository) DeleteByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.Session{}).Error
}

func (r *SessionRepository) DeleteExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
