package services

import (
	"errors"
	"fmt"
	"time"

	"medstock/app/dto"
	"medstock/app/models"

	"gorm.io/gorm"
)

const staleBackupAfter = 48 * time.Hour

// HealthMetrics aggregates the backup health dashboard numbers.
func (s *BackupService) HealthMetrics() (*dto.HealthMetrics, error) {
	m := &dto.HealthMetrics{StorageTotal: s.cfg.StorageCapacity, Alerts: []string{}}

	latest, err := s.backups.Latest()
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if latest != nil {
		t := latest.CreatedAt
		m.LastBackupAt = &t
		if latest.Status == models.BackupFailed {
			m.Alerts = append(m.Alerts, "latest backup failed")
		}
	}

	if lastAuto, err := s.backups.LatestOfType(models.BackupAutomatic); err == nil {
		next := lastAuto.CreatedAt.Add(s.cfg.ScheduleEvery)
		m.NextScheduledAt = &next
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	recent, err := s.backups.RecentFirst(200)
	if err != nil {
		return nil, err
	}
	var durTotal time.Duration
	var durCount int64
	for _, b := range recent {
		if b.CompletedAt != nil {
			durTotal += b.CompletedAt.Sub(b.StartedAt)
			durCount++
		}
	}
	for _, b := range recent {
		if b.Status == models.BackupInProgress {
			continue
		}
		if b.Status != models.BackupCompleted {
			break
		}
		m.SuccessStreak++
	}
	if durCount > 0 {
		m.AvgDurationMS = (durTotal / time.Duration(durCount)).Milliseconds()
	}

	m.Failures30d, err = s.backups.CountFailedSince(time.Now().Add(-30 * 24 * time.Hour))
	if err != nil {
		return nil, err
	}

	m.StorageUsed, err = s.backups.TotalSize()
	if err != nil {
		return nil, err
	}

	if m.LastBackupAt == nil || time.Since(*m.LastBackupAt) > staleBackupAfter {
		m.Alerts = append(m.Alerts, fmt.Sprintf("no backup in the last %dh", int(staleBackupAfter.Hours())))
	}
	if m.StorageTotal > 0 && m.StorageUsed*10 > m.StorageTotal*9 {
		m.Alerts = append(m.Alerts, "backup storage over 90% full")
	}
	return m, nil
}
