// Package router assembles the HTTP surface: the chi route table, its
// middleware stack and the host routing in front of it.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bunnystock/leaddesk/internal/infra/http/handlers"
	"github.com/bunnystock/leaddesk/internal/infra/http/middleware"
)

type Options struct {
	Log      *zap.Logger
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer

	Hosts          middleware.HostRouter
	Access         middleware.AccessPolicy
	Sessions       middleware.SessionVerifier
	AllowedOrigins []string
	RateLimiter    *handlers.RateLimiter

	Lead   *handlers.LeadHandler
	Query  *handlers.LeadQueryHandler
	Status *handlers.StatusHandler
	Admin  *handlers.AdminHandler
	Health *handlers.HealthHandler
}

// New returns the full handler. Host routing wraps the router so that
// rewritten admin paths are matched by the /admin routes.
func New(o Options) http.Handler {
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.PeerAddr)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	if o.Metrics != nil {
		r.Use(o.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.APIKeyHeader},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.With(o.RateLimiter.Middleware).Post("/consult", o.Lead.CaptureLead)
		r.Get("/consults", o.Query.Public)
		r.With(o.Access.RequireAdminOrAPIKey).Get("/admin/consults", o.Query.Admin)
		r.With(o.Access.RequireAdmin).Patch("/consults/{id}/status", o.Status.Handle)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.SessionGate(o.Sessions, o.Hosts.AdminHost))
		r.Get("/", o.Admin.Index)
		r.Get("/login", o.Admin.LoginForm)
		r.Post("/login", o.Admin.Login)
		r.Post("/logout", o.Admin.Logout)
		r.Get("/dashboard", o.Admin.Dashboard)
	})

	r.Get("/healthz", o.Health.Handle)
	if o.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{}))
	}

	return o.Hosts.Handler(r)
}
