package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"medstock/app/dto"
	"medstock/app/models"
	"medstock/app/repo"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionService struct {
	sessions *repo.SessionRepository
	ttl      time.Duration
}

func NewSessionService(sessions *repo.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{sessions: sessions, ttl: ttl}
}

func (s *SessionService) Create(userID uint, userAgent, ip string) (*models.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	device, browser, osName := parseUserAgent(userAgent)
	now := time.Now()
	sess := &models.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Token:      token,
		Device:     device,
		Browser:    browser,
		OS:         osName,
		IPAddress:  ip,
		LastActive: now,
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
	}
	if err := s.sessions.Create(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Resolve returns the session for a token if it has not expired.
func (s *SessionService) Resolve(token string) (*models.Session, error) {
	sess, err := s.sessions.FindByToken(token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if time.Now().After(sess.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionService) Touch(token string) {
	_ = s.sessions.Touch(token, time.Now())
}

func (s *SessionService) ListActive(userID uint, currentToken string) ([]dto.SessionResponse, error) {
	rows, err := s.sessions.ListActive(userID, time.Now())
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.SessionResponse{
			ID:         r.ID,
			Device:     r.Device,
			Browser:    r.Browser,
			OS:         r.OS,
			IPAddress:  r.IPAddress,
			Location:   r.Location,
			LastActive: r.LastActive,
			CreatedAt:  r.CreatedAt,
			IsCurrent:  r.Token == currentToken,
		})
	}
	return out, nil
}

// Rotate replaces the session token after sensitive operations. The
// old token stops working the moment the new one is valid; a token not
// owned by userID rotates nothing and returns ErrSessionNotFound.
func (s *SessionService) Rotate(oldToken string, userID uint) (string, error) {
	newToken, err := newSessionToken()
	if err != nil {
		return "", err
	}
	ok, err := s.sessions.Rotate(oldToken, newToken, userID, time.Now())
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrSessionNotFound
	}
	return newToken, nil
}

func (s *SessionService) Terminate(id string, userID uint) error {
	ok, err := s.sessions.Delete(id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SessionService) Logout(token string) error {
	return s.sessions.DeleteByToken(token)
}

func (s *SessionService) PruneExpired() (int64, error) {
	return s.sessions.DeleteExpired(time.Now())
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session token entropy: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// parseUserAgent does a coarse device/browser/OS split. Good enough for
// the sessions screen; anything unrecognized reads "Unknown".
func parseUserAgent(ua string) (device, browser, osName string) {
	device, browser, osName = "Desktop", "Unknown", "Unknown"
	l := strings.ToLower(ua)
	switch {
	case strings.Contains(l, "ipad") || strings.Contains(l, "tablet"):
		device = "Tablet"
	case strings.Contains(l, "mobi") || strings.Contains(l, "iphone") || strings.Contains(l, "android"):
		device = "Mobile"
	}
	switch {
	case strings.Contains(l, "edg/"):
		browser = "Edge"
	case strings.Contains(l, "opr/") || strings.Contains(l, "opera"):
		browser = "Opera"
	case strings.Contains(l, "chrome/"):
		browser = "Chrome"
	case strings.Contains(l, "safari/") && strings.Contains(l, "version/"):
		browser = "Safari"
	case strings.Contains(l, "firefox/"):
		browser = "Firefox"
	}
	switch {
	case strings.Contains(l, "windows"):
		osName = "Windows"
	case strings.Contains(l, "mac os x") || strings.Contains(l, "macintosh"):
		osName = "macOS"
	case strings.Contains(l, "android"):
		osName = "Android"
	case strings.Contains(l, "iphone") || strings.Contains(l, "ipad"):
		osName = "iOS"
	case strings.Contains(l, "linux"):
		osName = "Linux"
	}
	return device, browser, osName
}
