package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"medstock/app/db"
	"medstock/app/models"
	"medstock/app/repo"
	"medstock/app/services"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCSRF(t *testing.T) (*CSRF, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.ConnectSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.SecurityAuditLog{}))
	audit := services.NewAuditService(repo.NewAuditRepository(gdb), nil)
	return &CSRF{Audit: audit, Logger: zerolog.Nop()}, gdb
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCSRFIssuesPairOnGet(t *testing.T) {
	csrf, _ := newCSRF(t)
	h := csrf.Guard(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	header := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, header)

	var cookieValue string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "medstock_csrf" {
			cookieValue = c.Value
		}
	}
	assert.Equal(t, header, cookieValue)
}

func TestCSRFIssuesPairOnImplicitOK(t *testing.T) {
	csrf, _ := newCSRF(t)
	h := csrf.Guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
}

func TestCSRFSkipsPairOutsideAPI(t *testing.T) {
	csrf, _ := newCSRF(t)
	h := csrf.Guard(okHandler())

	for _, path := range []string{"/ping", "/healthz", "/metrics", "/api/auth/login"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-CSRF-Token"), path)
		assert.Empty(t, rec.Result().Cookies(), path)
	}
}

func TestCSRFSkipsPairOnFailedGet(t *testing.T) {
	csrf, _ := newCSRF(t)
	h := csrf.Guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("X-CSRF-Token"))
	assert.Empty(t, rec.Result().Cookies())
}

func TestCSRFAcceptsMatchingPair(t *testing.T) {
	csrf, _ := newCSRF(t)
	h := csrf.Guard(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/inventory", nil)
	req.Header.Set("X-CSRF-Token", "tok-123")
	req.AddCookie(&http.Cookie{Name: "medstock_csrf", Value: "tok-123"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFRejectsMismatch(t *testing.T) {
	csrf, gdb := newCSRF(t)
	h := csrf.Guard(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/inventory", nil)
	req.Header.Set("X-CSRF-Token", "tok-123")
	req.AddCookie(&http.Cookie{Name: "medstock_csrf", Value: "tok-456"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")

	// rejection lands in the audit trail
	var count int64
	require.NoError(t, gdb.Model(&models.SecurityAuditLog{}).
		Where("event = ?", models.EventCSRFRejected).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCSRFRejectsMissingPair(t *testing.T) {
	csrf, _ := newCSRF(t)
	h := csrf.Guard(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/inventory", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFExemptsAuthRoutes(t *testing.T) {
	csrf, _ := newCSRF(t)
	h := csrf.Guard(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFCookieNameInProd(t *testing.T) {
	assert.Equal(t, "medstock_csrf", csrfCookieName(false))
	assert.Equal(t, "__Secure-medstock_csrf", csrfCookieName(true))
	assert.Equal(t, "medstock_session", SessionCookieName(false))
	assert.Equal(t, "__Secure-medstock_session", SessionCookieName(true))
}
