package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"medstock/app/dto"
	"medstock/app/middleware"
	"medstock/app/models"
	"medstock/app/services"
	"medstock/global"
)

type TwoFactorController struct {
	TwoFactor *services.TwoFactorService
	Audit     *services.AuditService
}

func NewTwoFactorController(twoFactor *services.TwoFactorService, audit *services.AuditService) *TwoFactorController {
	return &TwoFactorController{TwoFactor: twoFactor, Audit: audit}
}

func (c *TwoFactorController) Setup(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	result, err := c.TwoFactor.Setup(p.UserID, p.Email)
	if errors.Is(err, services.ErrTwoFactorEnabled) {
		writeJSONError(w, http.StatusBadRequest, "2FA is already enabled")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, dto.TwoFactorSetupResponse{
		Secret:      result.Secret,
		OTPAuthURL:  result.OTPAuthURL,
		BackupCodes: result.BackupCodes,
	})
}

func (c *TwoFactorController) Verify(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	var req dto.TwoFactorVerifyRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Code == "" {
		writeJSONError(w, http.StatusBadRequest, "code is required")
		return
	}
	ip, ua := middleware.ClientIP(r), r.UserAgent()
	ok, err := c.TwoFactor.VerifySetup(p.UserID, req.Code)
	if errors.Is(err, services.ErrTwoFactorNotPending) {
		writeJSONError(w, http.StatusBadRequest, "no pending 2FA setup")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		if err := c.Audit.Record(p.UserID, models.EventTwoFactorFailed, ip, ua, false, "setup"); err != nil {
			global.Logger.Error().Err(err).Msg("record 2fa setup failure")
		}
		writeJSONError(w, http.StatusBadRequest, "invalid 2FA code")
		return
	}
	if err := c.Audit.Record(p.UserID, models.EventTwoFactorEnabled, ip, ua, true, ""); err != nil {
		global.Logger.Error().Err(err).Msg("record 2fa enable")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": true})
}

// Disable requires a fresh valid code, so a hijacked session cannot
// silently strip 2FA.
func (c *TwoFactorController) Disable(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	var req dto.TwoFactorVerifyRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Code == "" {
		writeJSONError(w, http.StatusBadRequest, "code is required")
		return
	}
	ip, ua := middleware.ClientIP(r), r.UserAgent()
	ok, err := c.TwoFactor.VerifyLogin(p.UserID, req.Code)
	if errors.Is(err, services.ErrTwoFactorNotEnabled) {
		writeJSONError(w, http.StatusBadRequest, "2FA is not enabled")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		if err := c.Audit.Record(p.UserID, models.EventTwoFactorFailed, ip, ua, false, "disable"); err != nil {
			global.Logger.Error().Err(err).Msg("record 2fa disable failure")
		}
		writeJSONError(w, http.StatusBadRequest, "invalid 2FA code")
		return
	}
	if err := c.TwoFactor.Disable(p.UserID); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := c.Audit.Record(p.UserID, models.EventTwoFactorDisable, ip, ua, true, ""); err != nil {
		global.Logger.Error().Err(err).Msg("record 2fa disable")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": false})
}
