package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/bunnystock/leaddesk/internal/usecase"
)

var errUnknownKind = errors.New("unknown notification kind")

// consumer is satisfied by *amqp.Channel.
type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Worker drains the notification queue and delivers each job through the
// mail notifier. Failed jobs are rejected without requeue and go to the DLQ.
type Worker struct {
	Channel  consumer
	Notifier usecase.Notifier
	Metrics  usecase.Metrics
	Log      *zap.Logger
}

func NewWorker(ch consumer, notifier usecase.Notifier, metrics usecase.Metrics, log *zap.Logger) *Worker {
	if metrics == nil {
		metrics = usecase.NopMetrics
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{Channel: ch, Notifier: notifier, Metrics: metrics, Log: log}
}

// Start consumes until ctx is done or the delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Log.Info("👷 worker waiting for jobs", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var job NotificationJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.Log.Error("❌ malformed job", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	log := w.Log.With(zap.String("job_id", job.ID), zap.String("kind", job.Kind), zap.String("lead_id", job.Notice.LeadID))

	err := w.process(ctx, job)
	if !errors.Is(err, errUnknownKind) {
		w.Metrics.Notification(job.Kind, err)
	}
	if err != nil {
		log.Error("❌ notification failed", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	log.Info("✅ notification delivered")
	_ = d.Ack(false)
}

func (w *Worker) process(ctx context.Context, job NotificationJob) error {
	switch job.Kind {
	case KindInternal:
		return w.Notifier.NotifyInternal(ctx, job.Notice)
	case KindCustomer:
		return w.Notifier.NotifyCustomer(ctx, job.Notice)
	default:
		return fmt.Errorf("%w: %q", errUnknownKind, job.Kind)
	}
}
