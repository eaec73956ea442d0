package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/bunnystock/leaddesk/internal/auth"
)

const APIKeyHeader = "X-API-Key"

type peerKey struct{}

// PeerAddr records the connection's address before RealIP rewrites
// RemoteAddr from forwarding headers. Mount it ahead of RealIP.
func PeerAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerKey{}, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// peerAddr falls back to RemoteAddr when PeerAddr is not mounted.
func peerAddr(r *http.Request) string {
	if a, ok := r.Context().Value(peerKey{}).(string); ok {
		return a
	}
	return r.RemoteAddr
}

// AccessPolicy decides whether a request carries an admin signal: it comes
// from the admin host or admin origin, from an /admin page on one of our
// hosts, or from a local development context.
type AccessPolicy struct {
	MainHost    string
	AdminHost   string
	AdminOrigin string
	// DevMode accepts every caller (APP_ENV=development).
	DevMode bool
	APIKey  string
}

func (p AccessPolicy) IsAdminRequest(r *http.Request) bool {
	if p.DevMode {
		return true
	}

	local := isLoopback(peerAddr(r))
	host := Hostname(r.Host)
	if IsLocalHost(host) && local {
		return true
	}
	if p.AdminHost != "" && host == p.AdminHost {
		return true
	}

	origin := r.Header.Get("Origin")
	referer := r.Header.Get("Referer")
	if o := strings.TrimRight(p.AdminOrigin, "/"); o != "" {
		if origin == o || strings.HasPrefix(referer, o+"/") || referer == o {
			return true
		}
	}
	if u, err := url.Parse(referer); err == nil && referer != "" && IsAdminPath(u.Path) {
		return p.ownHost(Hostname(u.Host), local)
	}
	return false
}

func (p AccessPolicy) ownHost(host string, local bool) bool {
	switch {
	case host == "":
		return false
	case p.AdminHost != "" && host == p.AdminHost:
		return true
	case p.MainHost != "" && (host == p.MainHost || host == "www."+p.MainHost):
		return true
	default:
		return IsLocalHost(host) && local
	}
}

// HasAPIKey reports whether the request carries the configured API key.
func (p AccessPolicy) HasAPIKey(r *http.Request) bool {
	return auth.APIKeyMatches(p.APIKey, r.Header.Get(APIKeyHeader))
}

// RequireAdmin rejects callers without an admin signal.
func (p AccessPolicy) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !p.IsAdminRequest(r) {
			forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdminOrAPIKey also lets API-key holders through.
func (p AccessPolicy) RequireAdminOrAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !p.IsAdminRequest(r) && !p.HasAPIKey(r) {
			forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]string{"error": "forbidden"})
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
