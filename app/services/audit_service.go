package services

import (
	"context"
	"fmt"
	"time"

	"medstock/app/models"
	"medstock/app/repo"

	"github.com/redis/go-redis/v9"
)

const (
	failureWindow    = 15 * time.Minute
	ipSpreadWindow   = time.Hour
	failureThreshold = 5
	ipThreshold      = 3
)

type AuditService struct {
	audits *repo.AuditRepository
	rdb    *redis.Client
}

// NewAuditService accepts a nil redis client; velocity counters are
// simply skipped without it.
func NewAuditService(audits *repo.AuditRepository, rdb *redis.Client) *AuditService {
	return &AuditService{audits: audits, rdb: rdb}
}

func (s *AuditService) Record(userID uint, event models.SecurityEvent, ip, userAgent string, success bool, metadata string) error {
	return s.audits.Append(&models.SecurityAuditLog{
		UserID:    userID,
		Event:     event,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   success,
		Metadata:  metadata,
	})
}

func (s *AuditService) List(userID uint, limit, offset int) ([]models.SecurityAuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.audits.List(userID, limit, offset)
}

// RecordFailure bumps the per-IP failure counter in redis. No-op when
// redis is not configured.
func (s *AuditService) RecordFailure(ctx context.Context, ip string) {
	if s.rdb == nil || ip == "" {
		return
	}
	key := "medstock:authfail:" + ip
	pipe := s.rdb.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, failureWindow)
	_, _ = pipe.Exec(ctx)
}

func (s *AuditService) FailureCount(ctx context.Context, ip string) int64 {
	if s.rdb == nil || ip == "" {
		return 0
	}
	n, err := s.rdb.Get(ctx, "medstock:authfail:"+ip).Int64()
	if err != nil {
		return 0
	}
	return n
}

// DetectSuspicious runs the heuristics over the user's recent audit
// trail plus the per-IP redis failure counter for the caller's address,
// and returns human-readable findings.
func (s *AuditService) DetectSuspicious(ctx context.Context, userID uint, ip string) ([]string, error) {
	var findings []string
	now := time.Now()

	loginFails, err := s.audits.CountFailures(userID, models.EventLoginFailed, now.Add(-failureWindow))
	if err != nil {
		return nil, err
	}
	if loginFails >= failureThreshold {
		findings = append(findings, fmt.Sprintf("%d failed logins in the last %s", loginFails, failureWindow))
	}

	tfaFails, err := s.audits.CountFailures(userID, models.EventTwoFactorFailed, now.Add(-failureWindow))
	if err != nil {
		return nil, err
	}
	if tfaFails >= failureThreshold {
		findings = append(findings, fmt.Sprintf("%d failed 2FA attempts in the last %s", tfaFails, failureWindow))
	}

	ips, err := s.audits.DistinctIPs(userID, now.Add(-ipSpreadWindow))
	if err != nil {
		return nil, err
	}
	if len(ips) >= ipThreshold {
		findings = append(findings, fmt.Sprintf("activity from %d distinct IPs in the last hour", len(ips)))
	}

	if f := velocityFinding(s.FailureCount(ctx, ip), ip); f != "" {
		findings = append(findings, f)
	}
	return findings, nil
}

// velocityFinding turns the per-IP failure counter into a finding once
// it crosses the threshold. Empty string below it.
func velocityFinding(count int64, ip string) string {
	if count < failureThreshold {
		return ""
	}
	return fmt.Sprintf("%d auth failures from %s in the last %s", count, ip, failureWindow)
}
