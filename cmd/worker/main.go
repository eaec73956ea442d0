package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bunnystock/leaddesk/internal/config"
	"github.com/bunnystock/leaddesk/internal/infra/http/middleware"
	"github.com/bunnystock/leaddesk/internal/infra/mail"
	"github.com/bunnystock/leaddesk/internal/infra/queue"
	"github.com/bunnystock/leaddesk/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.Must(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal("❌ rabbitmq", zap.Error(err))
	}
	defer rabbit.Close()

	mailer := mail.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, cfg.InternalRecipients())
	metrics := middleware.NewMetrics(prometheus.NewRegistry())

	w := queue.NewWorker(rabbit.Ch, mailer, metrics, log)
	if err := w.Start(ctx, queue.QueueName); err != nil {
		log.Fatal("❌ worker stopped", zap.Error(err))
	}
	log.Info("🛑 worker stopped")
}
