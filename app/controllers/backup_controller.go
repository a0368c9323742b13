package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"medstock/app/dto"
	"medstock/app/middleware"
	"medstock/app/models"
	"medstock/app/repo"
	"medstock/app/services"
	"medstock/global"
)

type BackupController struct {
	Backups *services.BackupService
	Users   *services.UserService
	Audit   *services.AuditService
}

func NewBackupController(backups *services.BackupService, users *services.UserService, audit *services.AuditService) *BackupController {
	return &BackupController{Backups: backups, Users: users, Audit: audit}
}

func (c *BackupController) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	var req dto.CreateBackupRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	b, err := c.Backups.Create(r.Context(), req, p.UserID)
	if err != nil {
		middleware.BackupsCreated.WithLabelValues("failed").Inc()
		writeDomainError(w, err)
		return
	}
	middleware.BackupsCreated.WithLabelValues("completed").Inc()
	if err := c.Audit.Record(p.UserID, models.EventBackupCreated, middleware.ClientIP(r), r.UserAgent(), true, b.ID); err != nil {
		global.Logger.Error().Err(err).Msg("record backup creation")
	}
	writeJSON(w, http.StatusCreated, services.ToBackupResponse(b))
}

func (c *BackupController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := repo.BackupFilter{
		Type:   models.BackupType(q.Get("type")),
		Status: models.BackupStatus(q.Get("status")),
		Search: q.Get("search"),
	}
	out, err := c.Backups.List(filter, page, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *BackupController) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	id := strings.TrimPrefix(r.URL.Path, "/api/backup/")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing backup id")
		return
	}
	if err := c.Backups.Delete(r.Context(), id, p.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := c.Audit.Record(p.UserID, models.EventBackupDeleted, middleware.ClientIP(r), r.UserAgent(), true, id); err != nil {
		global.Logger.Error().Err(err).Msg("record backup deletion")
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (c *BackupController) Restore(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	var req dto.RestoreRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.BackupID == "" {
		writeJSONError(w, http.StatusBadRequest, "backupId is required")
		return
	}
	actor, err := c.Users.FindByID(p.UserID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	ip, ua := middleware.ClientIP(r), r.UserAgent()
	summary, err := c.Backups.Restore(r.Context(), req.BackupID, services.RestoreOptions{
		Mode:          services.RestoreMode(req.Mode),
		Password:      req.Password,
		AdminPassword: req.AdminPassword,
	}, actor)
	if err != nil {
		middleware.RestoresRun.WithLabelValues(req.Mode, "failed").Inc()
		// failed admin re-auth is security-relevant even though it maps
		// to a 400
		if err := c.Audit.Record(p.UserID, models.EventBackupRestored, ip, ua, false, req.BackupID); err != nil {
			global.Logger.Error().Err(err).Msg("record restore failure")
		}
		writeDomainError(w, err)
		return
	}
	middleware.RestoresRun.WithLabelValues(req.Mode, "ok").Inc()
	if err := c.Audit.Record(p.UserID, models.EventBackupRestored, ip, ua, true, req.BackupID+":"+req.Mode); err != nil {
		global.Logger.Error().Err(err).Msg("record restore")
	}
	writeJSON(w, http.StatusOK, summary)
}

func (c *BackupController) Validate(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.BackupID == "" {
		writeJSONError(w, http.StatusBadRequest, "backupId is required")
		return
	}
	result, err := c.Backups.Validate(r.Context(), req.BackupID, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *BackupController) Health(w http.ResponseWriter, r *http.Request) {
	metrics, err := c.Backups.HealthMetrics()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
