package middleware

import (
	"net"
	"net/http"
	"strings"
)

const adminPrefix = "/admin"

// bypassPrefixes are served identically on every host.
var bypassPrefixes = []string{"/api/", "/healthz", "/metrics", "/static/"}

// HostRouter separates the public site from the admin subdomain:
//   - main host (or www.) + /admin... answers 404;
//   - admin host + /admin... redirects (308) to the unprefixed path;
//   - admin host + anything else is rewritten to /admin + path;
//   - localhost and 127.0.0.1 are left untouched.
type HostRouter struct {
	MainHost  string
	AdminHost string
}

func (h HostRouter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		for _, p := range bypassPrefixes {
			if strings.HasPrefix(path, p) || path == strings.TrimSuffix(p, "/") {
				next.ServeHTTP(w, r)
				return
			}
		}

		host := Hostname(r.Host)
		adminPath := IsAdminPath(path)

		switch {
		case IsLocalHost(host):
		case h.isMain(host) && adminPath:
			http.NotFound(w, r)
			return
		case h.isAdmin(host) && adminPath:
			target := *r.URL
			target.Path = strings.TrimPrefix(path, adminPrefix)
			if target.Path == "" {
				target.Path = "/"
			}
			target.RawPath = ""
			http.Redirect(w, r, target.RequestURI(), http.StatusPermanentRedirect)
			return
		case h.isAdmin(host):
			r2 := r.Clone(r.Context())
			r2.URL.Path = adminPrefix + path
			r2.URL.RawPath = ""
			next.ServeHTTP(w, r2)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h HostRouter) isMain(host string) bool {
	return h.MainHost != "" && (host == h.MainHost || host == "www."+h.MainHost)
}

func (h HostRouter) isAdmin(host string) bool {
	return h.AdminHost != "" && host == h.AdminHost
}

// Hostname strips the port from a Host header value.
func Hostname(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(strings.Trim(hostport, "[]"))
}

func IsLocalHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func IsAdminPath(path string) bool {
	return path == adminPrefix || strings.HasPrefix(path, adminPrefix+"/")
}
