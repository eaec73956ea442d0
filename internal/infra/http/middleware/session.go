package middleware

import (
	"net/http"

	"github.com/bunnystock/leaddesk/internal/auth"
)

// SessionVerifier is satisfied by *auth.SessionManager.
type SessionVerifier interface {
	Verify(token string) error
}

// SessionGate protects the admin pages. The login page stays reachable;
// anything else without a valid session cookie is sent to it.
func SessionGate(sessions SessionVerifier, adminHost string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/admin/login" {
				next.ServeHTTP(w, r)
				return
			}

			if c, err := r.Cookie(auth.SessionCookie); err == nil && sessions.Verify(c.Value) == nil {
				next.ServeHTTP(w, r)
				return
			}

			http.Redirect(w, r, LoginPath(r, adminHost), http.StatusSeeOther)
		})
	}
}

// LoginPath is the public login URL: /login on the admin host, /admin/login elsewhere.
func LoginPath(r *http.Request, adminHost string) string {
	return PublicAdminPath(r, adminHost, "/login")
}

// PublicAdminPath maps an admin page path to the URL a browser should use.
func PublicAdminPath(r *http.Request, adminHost, page string) string {
	if adminHost != "" && Hostname(r.Host) == adminHost {
		return page
	}
	return adminPrefix + page
}
