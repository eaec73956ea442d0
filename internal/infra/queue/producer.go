package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/bunnystock/leaddesk/internal/usecase"
)

const (
	KindInternal = usecase.NotifyInternal
	KindCustomer = usecase.NotifyCustomer
)

// NotificationJob is one mail to deliver, published per notification kind.
type NotificationJob struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Notice     usecase.LeadNotice `json:"notice"`
	EnqueuedAt time.Time          `json:"enqueued_at"`
}

// publisher is satisfied by *amqp.Channel.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQProducer hands notifications to the worker instead of sending
// them from the request.
type RabbitMQProducer struct {
	Ch  publisher
	now func() time.Time
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch, now: time.Now}
}

var _ usecase.Notifier = (*RabbitMQProducer)(nil)

func (p *RabbitMQProducer) NotifyInternal(ctx context.Context, n usecase.LeadNotice) error {
	return p.Publish(ctx, KindInternal, n)
}

func (p *RabbitMQProducer) NotifyCustomer(ctx context.Context, n usecase.LeadNotice) error {
	return p.Publish(ctx, KindCustomer, n)
}

func (p *RabbitMQProducer) Publish(ctx context.Context, kind string, n usecase.LeadNotice) error {
	job := NotificationJob{
		ID:         uuid.NewString(),
		Kind:       kind,
		Notice:     n,
		EnqueuedAt: p.now().UTC(),
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    job.ID,
			Timestamp:    job.EnqueuedAt,
			Type:         kind,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s notification: %w", kind, err)
	}
	return nil
}
