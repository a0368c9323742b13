package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"medstock/app/models"
	"medstock/app/repo"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const resetTokenTTL = 30 * time.Minute

type UserService struct {
	users  *repo.UserRepository
	resets *repo.ResetTokenRepository
}

func NewUserService(users *repo.UserRepository, resets *repo.ResetTokenRepository) *UserService {
	return &UserService{users: users, resets: resets}
}

func (s *UserService) EnsureAdmin(email, name, password string) error {
	count, err := s.users.CountByEmail(email)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.Create(&models.User{Email: email, Name: name, PasswordHash: string(hash), Role: models.RoleAdmin})
}

func (s *UserService) Register(email, name, password string, role models.Role) (*models.User, error) {
	if role == "" {
		role = models.RoleStaff
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{Email: email, Name: name, PasswordHash: string(hash), Role: role}
	if err := s.users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) ValidateCredentials(email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// burn a bcrypt round so missing accounts cost the same as wrong
		// passwords
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000uG7z1qFZlLF1P3o5m3q9cWm0V1r1a1e"), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// VerifyPassword re-checks a password for an already-authenticated user
// (admin re-auth before restores, password change).
func (s *UserService) VerifyPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (s *UserService) ChangePassword(userID uint, current, next string) error {
	u, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}
	if !s.VerifyPassword(u, current) {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(userID, string(hash))
}

// RequestReset issues a reset token when the email exists. The empty
// return for unknown emails is deliberate: callers answer identically
// either way to avoid account enumeration.
func (s *UserService) RequestReset(email string) (string, error) {
	u, err := s.users.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	err = s.resets.Issue(&models.PasswordResetToken{
		Token:     token,
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) ResetPassword(token, newPassword string) (*models.User, error) {
	t, err := s.resets.ConsumeUnused(token, time.Now())
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdatePasswordHash(t.UserID, string(hash)); err != nil {
		return nil, err
	}
	return s.users.FindByID(t.UserID)
}

func (s *UserService) FindByID(id uint) (*models.User, error) { return s.users.FindByID(id) }

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token entropy: %w", err)
	}
	return hex.EncodeToString(b), nil
}
