package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin wrapper over the backend HTTP API. It authenticates
// with a Bearer token so no cookie or CSRF handling is needed.
type Client struct {
	BaseURL string
	Token   string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

type loginResponse struct {
	AccessToken       string `json:"access_token"`
	TwoFactorRequired bool   `json:"two_factor_required"`
}

type apiError struct {
	Error string `json:"error"`
}

// Login exchanges credentials for an access token. Returns
// twoFactorRequired=true when the account needs a TOTP code.
func (c *Client) Login(email, password, code string) (bool, error) {
	body, status, err := c.do(http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password, Code: code})
	if err != nil {
		return false, err
	}
	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("decode login response: %w", err)
	}
	if status == http.StatusUnauthorized && resp.TwoFactorRequired {
		return true, nil
	}
	if status != http.StatusOK {
		return false, apiFailure(body, status)
	}
	c.Token = resp.AccessToken
	return false, nil
}

type Backup struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Type        string    `json:"type"`
	FileSize    int64     `json:"file_size"`
	RecordCount int       `json:"record_count"`
	Status      string    `json:"status"`
	Validated   bool      `json:"validated"`
	CreatedAt   time.Time `json:"created_at"`
}

type backupList struct {
	Backups []Backup `json:"backups"`
	Total   int64    `json:"total"`
}

func (c *Client) ListBackups() ([]Backup, error) {
	body, status, err := c.do(http.MethodGet, "/api/backup/list?limit=50", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiFailure(body, status)
	}
	var resp backupList
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return resp.Backups, nil
}

type Health struct {
	LastBackupAt  *time.Time `json:"last_backup_at"`
	SuccessStreak int        `json:"success_streak"`
	Failures30d   int64      `json:"failures_30d"`
	AvgDurationMS int64      `json:"avg_duration_ms"`
	StorageUsed   int64      `json:"storage_used"`
	StorageTotal  int64      `json:"storage_total"`
	Alerts        []string   `json:"alerts"`
}

func (c *Client) BackupHealth() (*Health, error) {
	body, status, err := c.do(http.MethodGet, "/api/backup/health", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiFailure(body, status)
	}
	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) CreateBackup() error {
	body, status, err := c.do(http.MethodPost, "/api/backup/create", map[string]any{"type": "MANUAL"})
	if err != nil {
		return err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return apiFailure(body, status)
	}
	return nil
}

func (c *Client) ValidateBackup(id string) error {
	body, status, err := c.do(http.MethodPost, "/api/backup/validate", map[string]string{"backupId": id})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiFailure(body, status)
	}
	return nil
}

func (c *Client) do(method, path string, payload any) ([]byte, int, error) {
	var rd io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, rd)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func apiFailure(body []byte, status int) error {
	var e apiError
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return fmt.Errorf("%s (HTTP %d)", e.Error, status)
	}
	return fmt.Errorf("HTTP %d", status)
}
