package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bunnystock/leaddesk/internal/entity"
)

const (
	NotifyInternal = "internal"
	NotifyCustomer = "customer"

	notifyTimeout = 30 * time.Second
)

type IntakeLeadUseCase struct {
	Repo     entity.LeadRepositoryInterface
	Notifier Notifier
	Metrics  Metrics
	Log      *zap.Logger
}

func NewIntakeLeadUseCase(repo entity.LeadRepositoryInterface, notifier Notifier, metrics Metrics, log *zap.Logger) *IntakeLeadUseCase {
	if metrics == nil {
		metrics = NopMetrics
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &IntakeLeadUseCase{
		Repo:     repo,
		Notifier: notifier,
		Metrics:  metrics,
		Log:      log,
	}
}

// Execute persists the lead first, then attempts both notifications
// independently. Notification failures never fail the intake.
func (uc *IntakeLeadUseCase) Execute(ctx context.Context, input IntakeLeadInput) (*IntakeLeadOutput, error) {
	lead, validationErrors := NormalizeIntake(input)
	if len(validationErrors) > 0 {
		fields := make([]string, 0, len(validationErrors))
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fields = append(fields, e.Field)
			msgs = append(msgs, e.Error())
		}
		return nil, &DomainError{
			Code:    CodeInvalidInput,
			Message: "validation failed: " + strings.Join(msgs, ", "),
			Fields:  fields,
		}
	}

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, &TechnicalError{
			Code:    CodeFailedToSave,
			Message: "failed to persist lead",
			Err:     err,
		}
	}
	uc.Metrics.LeadCreated()
	uc.Log.Info("📩 lead received", zap.String("lead_id", lead.ID), zap.String("channel", lead.Channel))

	uc.notify(ctx, lead)

	return &IntakeLeadOutput{ID: lead.ID}, nil
}

func (uc *IntakeLeadUseCase) notify(ctx context.Context, lead *entity.Lead) {
	if uc.Notifier == nil {
		return
	}

	// The lead is already saved; a client disconnect must not cut the sends short.
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	notice := NoticeFromLead(lead)

	var g errgroup.Group
	g.Go(func() error {
		return uc.send(NotifyInternal, lead.ID, func() error { return uc.Notifier.NotifyInternal(nctx, notice) })
	})
	g.Go(func() error {
		return uc.send(NotifyCustomer, lead.ID, func() error { return uc.Notifier.NotifyCustomer(nctx, notice) })
	})

	if err := g.Wait(); err != nil {
		uc.Log.Warn("⚠️ lead saved but notifications incomplete", zap.String("lead_id", lead.ID), zap.Error(err))
	}
}

func (uc *IntakeLeadUseCase) send(kind, leadID string, fn func() error) error {
	err := fn()
	uc.Metrics.Notification(kind, err)
	if err != nil {
		uc.Log.Error("notification failed",
			zap.String("kind", kind), zap.String("lead_id", leadID), zap.Error(err))
		return err
	}
	uc.Log.Debug("notification sent", zap.String("kind", kind), zap.String("lead_id", leadID))
	return nil
}
