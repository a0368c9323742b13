package router

import (
	"net/http"

	"medstock/app/controllers"
	"medstock/app/middleware"
	"medstock/app/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Controllers struct {
	HTTP          *controllers.HTTPController
	Auth          *controllers.AuthController
	TwoFactor     *controllers.TwoFactorController
	Backup        *controllers.BackupController
	Security      *controllers.SecurityController
	Inventory     *controllers.InventoryController
	Notifications *controllers.NotificationController
	Help          *controllers.HelpController
}

func NewRouter(c Controllers, auth *middleware.Auth, csrf *middleware.CSRF) http.Handler {
	mux := http.NewServeMux()

	guard := func(h http.HandlerFunc, roles ...models.Role) http.Handler {
		if len(roles) > 0 {
			return auth.RequireRole(roles...)(h)
		}
		return auth.RequireAuth(h)
	}

	// public
	mux.HandleFunc("/ping", c.HTTP.Ping)
	mux.HandleFunc("/healthz", c.HTTP.Healthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/auth/login", post(c.Auth.Login))
	mux.HandleFunc("/api/auth/password/forgot", post(c.Auth.ForgotPassword))
	mux.HandleFunc("/api/auth/password/reset", post(c.Auth.ResetPassword))

	// authenticated
	mux.Handle("/api/auth/logout", guard(post(c.Auth.Logout)))
	mux.Handle("/api/auth/password/change", guard(post(c.Auth.ChangePassword)))
	mux.Handle("/api/auth/rotate-session", guard(post(c.Auth.RotateSession)))
	mux.Handle("/api/auth/sessions", guard(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			c.Auth.ListSessions(w, r)
		case http.MethodDelete:
			c.Auth.TerminateSession(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	mux.Handle("/api/auth/2fa/setup", guard(post(c.TwoFactor.Setup)))
	mux.Handle("/api/auth/2fa/verify", guard(post(c.TwoFactor.Verify)))
	mux.Handle("/api/auth/2fa/disable", guard(post(c.TwoFactor.Disable)))
	mux.Handle("/api/security/audit", guard(get(c.Security.AuditLog)))
	mux.Handle("/api/notifications", guard(get(c.Notifications.List)))
	mux.Handle("/api/notifications/", guard(post(c.Notifications.MarkRead)))
	mux.Handle("/api/help", guard(get(c.Help.List)))
	mux.Handle("/api/help/", guard(get(c.Help.Get)))

	// admin-only account creation
	mux.Handle("/api/auth/register", guard(post(c.Auth.Register), models.RoleAdmin))

	// inventory: everyone reads, staff and up write
	mux.Handle("/api/inventory", guard(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			c.Inventory.List(w, r)
		case http.MethodPost:
			c.Inventory.Create(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	mux.Handle("/api/inventory/", guard(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			c.Inventory.Update(w, r)
		case http.MethodDelete:
			c.Inventory.Delete(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	// backup subsystem
	mux.Handle("/api/backup/create", guard(post(c.Backup.Create), models.RoleAdmin, models.RoleManager))
	mux.Handle("/api/backup/list", guard(get(c.Backup.List), models.RoleAdmin, models.RoleManager))
	mux.Handle("/api/backup/validate", guard(post(c.Backup.Validate), models.RoleAdmin, models.RoleManager))
	mux.Handle("/api/backup/health", guard(get(c.Backup.Health), models.RoleAdmin, models.RoleManager))
	mux.Handle("/api/backup/restore", guard(post(c.Backup.Restore), models.RoleAdmin))
	mux.Handle("/api/backup/", guard(method(http.MethodDelete, c.Backup.Delete), models.RoleAdmin))

	return csrf.Guard(mux)
}

func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func post(h http.HandlerFunc) http.HandlerFunc { return method(http.MethodPost, h) }
func get(h http.HandlerFunc) http.HandlerFunc { return method(http.MethodGet, h) }
