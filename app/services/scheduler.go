package services

import (
	"context"
	"time"

	"medstock/app/dto"
	"medstock/app/models"
	"medstock/app/repo"

	"github.com/rs/zerolog"
)

// Scheduler runs the periodic AUTOMATIC backups and raises admin
// notifications when a run fails or a health alert fires.
type Scheduler struct {
	backups       *BackupService
	notifications *NotificationService
	users         *repo.UserRepository
	every         time.Duration
	logger        zerolog.Logger
	stop          chan struct{}
}

func NewScheduler(backups *BackupService, notifications *NotificationService, users *repo.UserRepository, every time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		backups:       backups,
		notifications: notifications,
		users:         users,
		every:         every,
		logger:        logger,
		stop:          make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.loop()
}

func (s *Scheduler) Stop() { close(s.stop) }

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runOnce()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	b, err := s.backups.Create(ctx, dto.CreateBackupRequest{Type: string(models.BackupAutomatic)}, 0)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled backup failed")
		s.notifyAdmins("backup_failed", "Scheduled backup failed", err.Error())
		return
	}
	s.logger.Info().Str("backup", b.ID).Msg("scheduled backup done")

	metrics, err := s.backups.HealthMetrics()
	if err != nil {
		s.logger.Error().Err(err).Msg("health metrics after scheduled backup")
		return
	}
	for _, alert := range metrics.Alerts {
		s.notifyAdmins("backup_alert", "Backup health alert", alert)
	}
}

func (s *Scheduler) notifyAdmins(kind, title, body string) {
	users, err := s.users.List()
	if err != nil {
		s.logger.Error().Err(err).Msg("list users for notification")
		return
	}
	for _, u := range users {
		if u.Role != models.RoleAdmin {
			continue
		}
		if err := s.notifications.Notify(u.ID, kind, title, body); err != nil {
			s.logger.Error().Err(err).Uint("user", u.ID).Msg("write notification")
		}
	}
}
