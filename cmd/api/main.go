package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bunnystock/leaddesk/internal/auth"
	"github.com/bunnystock/leaddesk/internal/config"
	"github.com/bunnystock/leaddesk/internal/entity"
	"github.com/bunnystock/leaddesk/internal/infra/database"
	"github.com/bunnystock/leaddesk/internal/infra/database/memory"
	"github.com/bunnystock/leaddesk/internal/infra/http/handlers"
	"github.com/bunnystock/leaddesk/internal/infra/http/middleware"
	"github.com/bunnystock/leaddesk/internal/infra/http/router"
	"github.com/bunnystock/leaddesk/internal/infra/mail"
	"github.com/bunnystock/leaddesk/internal/infra/queue"
	"github.com/bunnystock/leaddesk/internal/infra/worker"
	"github.com/bunnystock/leaddesk/internal/logging"
	"github.com/bunnystock/leaddesk/internal/usecase"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.Must(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("❌ server stopped", zap.Error(err))
	}
}

// store is what the API needs from a lead store.
type store interface {
	entity.LeadRepositoryInterface
	handlers.Pinger
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(reg)

	// 1. Store
	repo, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// 2. Notifications
	var (
		notifier usecase.Notifier
		broker   handlers.QueueHealth
	)
	switch cfg.NotifyMode {
	case config.NotifyQueue:
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		notifier = queue.NewProducer(rabbit.Ch)
		broker = rabbit
		log.Info("📨 notifications go through RabbitMQ", zap.String("queue", queue.QueueName))
	default:
		notifier = mail.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, cfg.InternalRecipients())
		if cfg.SMTPHost == "" {
			log.Warn("⚠️ SMTP_HOST is not set, notification mails will fail")
		}
	}

	// 3. Use cases
	intakeUC := usecase.NewIntakeLeadUseCase(repo, notifier, metrics, log)
	listUC := usecase.NewListLeadsUseCase(repo, metrics, log, loc)
	statusUC := usecase.NewUpdateStatusUseCase(repo, metrics, log)

	// 4. Admin auth
	if cfg.SessionSecret == "" {
		log.Warn("⚠️ SESSION_SECRET is not set, admin sessions end on restart")
	}
	sessions, err := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	limiter := handlers.NewRateLimiter(cfg.IntakeRateLimit, time.Minute)
	defer limiter.Stop()

	// 5. Router
	h := router.New(router.Options{
		Log:      log,
		Metrics:  metrics,
		Gatherer: reg,
		Hosts:    middleware.HostRouter{MainHost: cfg.MainHost, AdminHost: cfg.AdminHost},
		Access: middleware.AccessPolicy{
			MainHost:    cfg.MainHost,
			AdminHost:   cfg.AdminHost,
			AdminOrigin: cfg.AdminOrigin,
			DevMode:     cfg.IsDevelopment(),
			APIKey:      cfg.AdminAPIKey,
		},
		Sessions:       sessions,
		AllowedOrigins: cfg.AllowedOrigins(),
		RateLimiter:    limiter,
		Lead:           handlers.NewLeadHandler(intakeUC, log),
		Query:          handlers.NewLeadQueryHandler(listUC, log),
		Status:         handlers.NewStatusHandler(statusUC, log),
		Admin: &handlers.AdminHandler{
			Sessions:  sessions,
			Passwords: auth.NewPasswordChecker(cfg.AdminPassword, cfg.AdminPasswordHash),
			List:      listUC,
			AdminHost: cfg.AdminHost,
			Secure:    cfg.IsProduction(),
			Location:  loc,
			Log:       log,
		},
		Health: handlers.NewHealthHandler(repo, broker, version),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Inline notifications may hold a request for up to 30s.
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	backlog := worker.NewBacklogWorker(repo, metrics, log, cfg.BacklogInterval, cfg.BacklogStaleAfter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		backlog.Start(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("🔥 lead desk listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.DBDriver),
			zap.String("notify", cfg.NotifyMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("🛑 shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(cfg *config.Config, log *zap.Logger) (store, func(), error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Warn("⚠️ using the in-memory lead store, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL, "up"); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("✅ migrations applied")
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	repo := database.NewLeadRepository(db, cfg.StrictOrdering)
	repo.OnFallback = func(err error) {
		log.Warn("⚠️ time-ordered lead query failed, falling back to id order", zap.Error(err))
	}
	return repo, func() { _ = db.Close() }, nil
}
