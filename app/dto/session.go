package dto

import "time"

type SessionResponse struct {
	ID         string    `json:"id"`
	Device     string    `json:"device"`
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	IPAddress  string    `json:"ip_address"`
	Location   string    `json:"location,omitempty"`
	LastActive time.Time `json:"last_active"`
	CreatedAt  time.Time `json:"created_at"`
	IsCurrent  bool      `json:"is_current"`
}

type AuditEntryResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Event     string    `json:"event"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Success   bool      `json:"success"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditListResponse struct {
	Entries    []AuditEntryResponse `json:"entries"`
	Suspicious []string             `json:"suspicious,omitempty"`
}
