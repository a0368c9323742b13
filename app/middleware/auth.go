package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	jwtutil "medstock/app/jwt"
	"medstock/app/models"
	"medstock/app/repo"
	"medstock/app/services"
)

const sessionCookieBase = "medstock_session"

// SessionCookieName returns the session cookie name for the deployment
// mode; prod carries the __Secure- prefix.
func SessionCookieName(prod bool) string {
	if prod {
		return "__Secure-" + sessionCookieBase
	}
	return sessionCookieBase
}

type Auth struct {
	Signer   *jwtutil.Signer
	Sessions *services.SessionService
	Users    *repo.UserRepository
	Prod     bool
}

// RequireAuth resolves the caller from the session cookie, falling back
// to a Bearer token for non-browser clients. The session row must exist
// and be unexpired in both cases, so a rotated or terminated token is
// unauthenticated immediately.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := a.resolve(r)
		if p == nil {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		a.Sessions.Touch(p.SessionToken)
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

// RequireRole is the per-request capability check at the routing
// boundary: a typed allow/deny instead of inline role conditionals in
// handlers.
func (a *Auth) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if p == nil || !allowed[p.Role] {
				writeAuthError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func (a *Auth) resolve(r *http.Request) *Principal {
	if c, err := r.Cookie(SessionCookieName(a.Prod)); err == nil && c.Value != "" {
		if p := a.fromSessionToken(c.Value); p != nil {
			return p
		}
	}
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		raw := strings.TrimPrefix(authz, "Bearer ")
		claims, err := a.Signer.Parse(raw)
		if err != nil {
			return nil
		}
		// the JWT carries the session token; the session row stays the
		// source of truth so rotation invalidates outstanding tokens
		sess, err := a.Sessions.Resolve(claims.SessionToken)
		if err != nil || sess.UserID != claims.UserID {
			return nil
		}
		return &Principal{UserID: claims.UserID, Email: claims.Email, Role: claims.Role, SessionToken: sess.Token}
	}
	return nil
}

func (a *Auth) fromSessionToken(token string) *Principal {
	sess, err := a.Sessions.Resolve(token)
	if err != nil {
		return nil
	}
	u, err := a.Users.FindByID(sess.UserID)
	if err != nil {
		return nil
	}
	return &Principal{UserID: u.ID, Email: u.Email, Role: u.Role, SessionToken: sess.Token}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ClientIP strips the port from RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
