package controllers

import (
	"net/http"
	"strconv"

	"medstock/app/dto"
	"medstock/app/middleware"
	"medstock/app/models"
	"medstock/app/services"
)

type SecurityController struct {
	Audit *services.AuditService
}

func NewSecurityController(audit *services.AuditService) *SecurityController {
	return &SecurityController{Audit: audit}
}

// AuditLog serves the caller's own trail; ADMIN may pass userId to
// inspect another account.
func (c *SecurityController) AuditLog(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	q := r.URL.Query()

	target := p.UserID
	if raw := q.Get("userId"); raw != "" {
		if p.Role != models.RoleAdmin {
			writeJSONError(w, http.StatusForbidden, "insufficient role")
			return
		}
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid userId")
			return
		}
		target = uint(id)
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	rows, err := c.Audit.List(target, limit, offset)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := dto.AuditListResponse{Entries: make([]dto.AuditEntryResponse, 0, len(rows))}
	for _, e := range rows {
		out.Entries = append(out.Entries, dto.AuditEntryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Event:     string(e.Event),
			IPAddress: e.IPAddress,
			UserAgent: e.UserAgent,
			Success:   e.Success,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	if q.Get("detectSuspicious") == "true" {
		findings, err := c.Audit.DetectSuspicious(r.Context(), target, middleware.ClientIP(r))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		out.Suspicious = findings
	}
	writeJSON(w, http.StatusOK, out)
}
