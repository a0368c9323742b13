package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"medstock/app/models"
	"medstock/app/services"

	"github.com/rs/zerolog"
)

const (
	csrfCookieBase = "medstock_csrf"
	csrfHeader     = "X-CSRF-Token"
	// the auth subsystem carries its own protections and is exempt
	csrfExemptPrefix = "/api/auth/"
)

func csrfCookieName(prod bool) string {
	if prod {
		return "__Secure-" + csrfCookieBase
	}
	return csrfCookieBase
}

// CSRF implements the double-submit token pair: the header must
// byte-equal the cookie on every mutating request outside the auth
// subsystem, compared in constant time. Successful GETs on protected
// routes receive a fresh pair so the token rotates per navigation.
type CSRF struct {
	Prod   bool
	Audit  *services.AuditService
	Logger zerolog.Logger
}

func (c *CSRF) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			if strings.HasPrefix(r.URL.Path, "/api/") && !strings.HasPrefix(r.URL.Path, csrfExemptPrefix) {
				w = &issueWriter{ResponseWriter: w, csrf: c}
			}
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, csrfExemptPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		if !c.verify(r) {
			ip := ClientIP(r)
			c.Logger.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("csrf token mismatch")
			if err := c.Audit.Record(0, models.EventCSRFRejected, ip, r.UserAgent(), false, r.URL.Path); err != nil {
				c.Logger.Error().Err(err).Msg("record csrf rejection")
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "CSRF token mismatch",
				"kind":  "VALIDATION_ERROR",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// issueWriter holds the token pair back until the handler commits a
// 2xx, so rejected reads do not rotate the caller's pair.
type issueWriter struct {
	http.ResponseWriter
	csrf      *CSRF
	committed bool
}

func (w *issueWriter) WriteHeader(code int) {
	if !w.committed {
		w.committed = true
		if code >= 200 && code < 300 {
			w.csrf.issueToken(w.ResponseWriter)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *issueWriter) Write(b []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (c *CSRF) verify(r *http.Request) bool {
	header := r.Header.Get(csrfHeader)
	cookie, err := r.Cookie(csrfCookieName(c.Prod))
	if err != nil || header == "" || cookie.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) == 1
}

func (c *CSRF) issueToken(w http.ResponseWriter) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		c.Logger.Error().Err(err).Msg("csrf token entropy")
		return
	}
	token := hex.EncodeToString(raw)
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName(c.Prod),
		Value:    token,
		Path:     "/",
		Secure:   c.Prod,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(csrfHeader, token)
}
