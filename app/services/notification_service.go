package services

import (
	"medstock/app/models"
	"medstock/app/repo"
)

type NotificationService struct {
	notifications *repo.NotificationRepository
}

func NewNotificationService(notifications *repo.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) Notify(userID uint, kind, title, body string) error {
	return s.notifications.Create(&models.Notification{
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
	})
}

func (s *NotificationService) List(userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notifications.List(userID, unreadOnly, limit)
}

func (s *NotificationService) MarkRead(id, userID uint) (bool, error) {
	return s.notifications.MarkRead(id, userID)
}
