package repo

import (
	"medstock/app/models"

	"gorm.io/gorm"
)

type NotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *NotificationRepository) List(userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	var out []models.Notification
	return out, q.Find(&out).Error
}

func (r *NotificationRepository) MarkRead(id, userID uint) (bool, error) {
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	return res.RowsAffected > 0, res.Error
}
