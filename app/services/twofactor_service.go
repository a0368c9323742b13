package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"medstock/app/repo"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const backupCodeCount = 10

var (
	ErrTwoFactorNotPending = errors.New("no pending 2FA setup")
	ErrTwoFactorNotEnabled = errors.New("2FA not enabled")
	ErrTwoFactorEnabled    = errors.New("2FA already enabled")
)

type TwoFactorService struct {
	users  *repo.UserRepository
	codes  *repo.BackupCodeRepository
	issuer string
}

func NewTwoFactorService(users *repo.UserRepository, codes *repo.BackupCodeRepository, issuer string) *TwoFactorService {
	return &TwoFactorService{users: users, codes: codes, issuer: issuer}
}

type SetupResult struct {
	Secret      string
	OTPAuthURL  string
	BackupCodes []string
}

// Setup stages a TOTP secret and a fresh set of backup codes for the
// user. 2FA stays off until VerifySetup confirms a code from the
// authenticator; the plaintext backup codes are only returned here.
func (s *TwoFactorService) Setup(userID uint, email string) (*SetupResult, error) {
	u, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if u.TwoFactorEnabled {
		return nil, ErrTwoFactorEnabled
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp key: %w", err)
	}
	codes, hashes, err := generateBackupCodes()
	if err != nil {
		return nil, err
	}
	u.TwoFactorPending = key.Secret()
	if err := s.users.Save(u); err != nil {
		return nil, err
	}
	if err := s.codes.ReplaceForUser(userID, hashes); err != nil {
		return nil, err
	}
	return &SetupResult{Secret: key.Secret(), OTPAuthURL: key.URL(), BackupCodes: codes}, nil
}

// VerifySetup checks a code against the pending secret (standard ±1
// step tolerance) and enables 2FA on success. A bad code returns false
// without touching any state.
func (s *TwoFactorService) VerifySetup(userID uint, code string) (bool, error) {
	u, err := s.users.FindByID(userID)
	if err != nil {
		return false, err
	}
	if u.TwoFactorPending == "" {
		return false, ErrTwoFactorNotPending
	}
	if !totp.Validate(code, u.TwoFactorPending) {
		return false, nil
	}
	u.TwoFactorSecret = u.TwoFactorPending
	u.TwoFactorPending = ""
	u.TwoFactorEnabled = true
	if err := s.users.Save(u); err != nil {
		return false, err
	}
	return true, nil
}

// VerifyLogin accepts a TOTP code or an unused backup code. Backup
// codes are invalidated on first use.
func (s *TwoFactorService) VerifyLogin(userID uint, code string) (bool, error) {
	u, err := s.users.FindByID(userID)
	if err != nil {
		return false, err
	}
	if !u.TwoFactorEnabled || u.TwoFactorSecret == "" {
		return false, ErrTwoFactorNotEnabled
	}
	code = strings.TrimSpace(code)
	if totp.Validate(code, u.TwoFactorSecret) {
		return true, nil
	}
	hash := hashBackupCode(code)
	return s.codes.Consume(userID, hash)
}

// Disable clears the secret and backup codes. Callers gate this behind
// a successful VerifyLogin.
func (s *TwoFactorService) Disable(userID uint) error {
	u, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}
	u.TwoFactorEnabled = false
	u.TwoFactorSecret = ""
	u.TwoFactorPending = ""
	if err := s.users.Save(u); err != nil {
		return err
	}
	return s.codes.DeleteForUser(userID)
}

func generateBackupCodes() (codes []string, hashes []string, err error) {
	for i := 0; i < backupCodeCount; i++ {
		raw := make([]byte, 10)
		if _, err := rand.Read(raw); err != nil {
			return nil, nil, fmt.Errorf("backup code entropy: %w", err)
		}
		code := strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw))
		codes = append(codes, code)
		hashes = append(hashes, hashBackupCode(code))
	}
	return codes, hashes, nil
}

func hashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
