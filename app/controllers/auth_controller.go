package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"medstock/app/dto"
	jwtutil "medstock/app/jwt"
	"medstock/app/middleware"
	"medstock/app/models"
	"medstock/app/services"
	"medstock/global"
)

type AuthController struct {
	Users     *services.UserService
	Sessions  *services.SessionService
	TwoFactor *services.TwoFactorService
	Audit     *services.AuditService
	Signer    *jwtutil.Signer
	Prod      bool
}

func NewAuthController(users *services.UserService, sessions *services.SessionService, twoFactor *services.TwoFactorService, audit *services.AuditService, signer *jwtutil.Signer, prod bool) *AuthController {
	return &AuthController{Users: users, Sessions: sessions, TwoFactor: twoFactor, Audit: audit, Signer: signer, Prod: prod}
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "missing credentials")
		return
	}
	ip, ua := middleware.ClientIP(r), r.UserAgent()

	u, err := c.Users.ValidateCredentials(req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.Audit.RecordFailure(r.Context(), ip)
		if err := c.Audit.Record(0, models.EventLoginFailed, ip, ua, false, req.Email); err != nil {
			global.Logger.Error().Err(err).Msg("record login failure")
		}
		writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if u.TwoFactorEnabled {
		if req.Code == "" {
			writeJSON(w, http.StatusUnauthorized, dto.LoginResponse{TwoFactorRequired: true})
			return
		}
		ok, err := c.TwoFactor.VerifyLogin(u.ID, req.Code)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			c.Audit.RecordFailure(r.Context(), ip)
			if err := c.Audit.Record(u.ID, models.EventTwoFactorFailed, ip, ua, false, "login"); err != nil {
				global.Logger.Error().Err(err).Msg("record 2fa failure")
			}
			writeJSONError(w, http.StatusBadRequest, "invalid 2FA code")
			return
		}
		if err := c.Audit.Record(u.ID, models.EventTwoFactorVerify, ip, ua, true, "login"); err != nil {
			global.Logger.Error().Err(err).Msg("record 2fa verify")
		}
	}

	sess, err := c.Sessions.Create(u.ID, ua, ip)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	token, err := c.Signer.Sign(u.ID, u.Email, u.Role, sess.Token)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := c.Audit.Record(u.ID, models.EventLogin, ip, ua, true, ""); err != nil {
		global.Logger.Error().Err(err).Msg("record login")
	}
	c.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	writeJSON(w, http.StatusOK, dto.LoginResponse{AccessToken: token})
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := c.Sessions.Logout(p.SessionToken); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := c.Audit.Record(p.UserID, models.EventLogout, middleware.ClientIP(r), r.UserAgent(), true, ""); err != nil {
		global.Logger.Error().Err(err).Msg("record logout")
	}
	c.setSessionCookie(w, "", time.Now().Add(-time.Hour))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Register creates an account; admin only, wired behind RequireRole in
// the router.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	role := models.Role(req.Role)
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleStaff, "":
	default:
		writeJSONError(w, http.StatusBadRequest, "unknown role")
		return
	}
	u, err := c.Users.Register(req.Email, req.Name, req.Password, role)
	if err != nil {
		writeJSONError(w, http.StatusConflict, "could not create user")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": u.ID, "email": u.Email, "role": u.Role})
}

// ForgotPassword answers identically whether or not the email exists.
func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Email == "" {
		writeJSONError(w, http.StatusBadRequest, "email is required")
		return
	}
	token, err := c.Users.RequestReset(req.Email)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if token != "" {
		// delivery is the mail collaborator's job; the event is recorded
		// without the token itself
		if err := c.Audit.Record(0, models.EventPasswordReset, middleware.ClientIP(r), r.UserAgent(), true, req.Email); err != nil {
			global.Logger.Error().Err(err).Msg("record reset request")
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "if the account exists, a reset link has been sent"})
}

func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Token == "" || req.NewPassword == "" {
		writeJSONError(w, http.StatusBadRequest, "token and new password are required")
		return
	}
	u, err := c.Users.ResetPassword(req.Token, req.NewPassword)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeJSONError(w, http.StatusBadRequest, "invalid or expired token")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := c.Audit.Record(u.ID, models.EventPasswordChanged, middleware.ClientIP(r), r.UserAgent(), true, "reset"); err != nil {
		global.Logger.Error().Err(err).Msg("record password reset")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ChangePassword rotates the caller's session token afterwards to cut
// off any fixated session.
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	var req dto.ChangePasswordRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeJSONError(w, http.StatusBadRequest, "current and new password are required")
		return
	}
	err := c.Users.ChangePassword(p.UserID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeJSONError(w, http.StatusBadRequest, "current password is incorrect")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := c.Audit.Record(p.UserID, models.EventPasswordChanged, middleware.ClientIP(r), r.UserAgent(), true, ""); err != nil {
		global.Logger.Error().Err(err).Msg("record password change")
	}
	c.rotateAndRespond(w, r, p)
}

// RotateSession swaps the caller's session token.
func (c *AuthController) RotateSession(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	c.rotateAndRespond(w, r, p)
}

func (c *AuthController) rotateAndRespond(w http.ResponseWriter, r *http.Request, p *middleware.Principal) {
	newToken, err := c.Sessions.Rotate(p.SessionToken, p.UserID)
	if errors.Is(err, services.ErrSessionNotFound) {
		writeJSONError(w, http.StatusUnauthorized, "session no longer valid")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	access, err := c.Signer.Sign(p.UserID, p.Email, p.Role, newToken)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := c.Audit.Record(p.UserID, models.EventSessionRotated, middleware.ClientIP(r), r.UserAgent(), true, ""); err != nil {
		global.Logger.Error().Err(err).Msg("record session rotation")
	}
	c.setSessionCookie(w, newToken, time.Now().Add(24*time.Hour*30))
	writeJSON(w, http.StatusOK, dto.LoginResponse{AccessToken: access})
}

func (c *AuthController) ListSessions(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	sessions, err := c.Sessions.ListActive(p.UserID, p.SessionToken)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (c *AuthController) TerminateSession(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing session id")
		return
	}
	err := c.Sessions.Terminate(id, p.UserID)
	if errors.Is(err, services.ErrSessionNotFound) {
		writeJSONError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (c *AuthController) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName(c.Prod),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Prod,
		SameSite: http.SameSiteLaxMode,
	})
}
