package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/bunnystock/leaddesk/internal/entity"
)

type UpdateStatusUseCase struct {
	Repo    entity.LeadRepositoryInterface
	Metrics Metrics
	Log     *zap.Logger
}

func NewUpdateStatusUseCase(repo entity.LeadRepositoryInterface, metrics Metrics, log *zap.Logger) *UpdateStatusUseCase {
	if metrics == nil {
		metrics = NopMetrics
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &UpdateStatusUseCase{Repo: repo, Metrics: metrics, Log: log}
}

// Execute changes only status and updated_at. Setting the current status
// again succeeds without touching the row.
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, id, status string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return badRequest("missing id")
	}
	s, err := entity.ParseStatus(status)
	if err != nil {
		return badRequest("invalid status")
	}

	if err := uc.Repo.UpdateStatus(ctx, id, s); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return &DomainError{Code: CodeNotFound, Message: "lead " + id + " not found"}
		}
		return &TechnicalError{Code: CodeUpdateFailed, Message: "failed to update lead status", Err: err}
	}

	uc.Metrics.StatusChanged(s)
	uc.Log.Info("lead status updated", zap.String("lead_id", id), zap.String("status", string(s)))
	return nil
}
