package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bunnystock/leaddesk/internal/entity"
)

const (
	PublicDefaultLimit = 10
	PublicMaxLimit     = 10

	AdminDefaultLimit = 200
	AdminMaxLimit     = 500
)

type ListLeadsUseCase struct {
	Repo     entity.LeadRepositoryInterface
	Metrics  Metrics
	Log      *zap.Logger
	Location *time.Location
}

func NewListLeadsUseCase(repo entity.LeadRepositoryInterface, metrics Metrics, log *zap.Logger, loc *time.Location) *ListLeadsUseCase {
	if metrics == nil {
		metrics = NopMetrics
	}
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ListLeadsUseCase{Repo: repo, Metrics: metrics, Log: log, Location: loc}
}

// Public returns the most recent leads with masked names only.
func (uc *ListLeadsUseCase) Public(ctx context.Context, limit int) ([]PublicLeadItem, error) {
	page, err := uc.list(ctx, entity.LeadFilter{Limit: clamp(limit, PublicDefaultLimit, 1, PublicMaxLimit)})
	if err != nil {
		return nil, err
	}

	items := make([]PublicLeadItem, 0, len(page.Leads))
	for _, l := range page.Leads {
		items = append(items, PublicLeadItem{
			ID:        l.ID,
			Name:      entity.MaskName(l.Name),
			CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items, nil
}

// Admin returns one page of full lead records. The text query is applied to
// the retrieved page, so a page may hold fewer items than the limit while a
// next page token is still present.
func (uc *ListLeadsUseCase) Admin(ctx context.Context, input AdminListInput) (*AdminListOutput, error) {
	filter := entity.LeadFilter{Limit: clamp(input.Limit, AdminDefaultLimit, 1, AdminMaxLimit)}

	if s := strings.TrimSpace(input.Status); s != "" {
		status, err := entity.ParseStatus(s)
		if err != nil {
			return nil, badRequest("unknown status " + s)
		}
		filter.Status = &status
	}

	start, end, err := timeRange(input.Start, input.End, uc.Location)
	if err != nil {
		return nil, badRequest(err.Error())
	}
	filter.Start, filter.End = start, end

	after, err := DecodePageToken(input.PageToken)
	if err != nil {
		return nil, badRequest(err.Error())
	}
	filter.After = after

	page, err := uc.list(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]AdminLeadItem, 0, len(page.Leads))
	for _, l := range page.Leads {
		if !l.MatchesQuery(input.Query) {
			continue
		}
		items = append(items, ToAdminItem(l))
	}

	return &AdminListOutput{
		Items:         items,
		NextPageToken: EncodePageToken(page.Next),
		Degraded:      page.Degraded,
	}, nil
}

func (uc *ListLeadsUseCase) list(ctx context.Context, filter entity.LeadFilter) (*entity.LeadPage, error) {
	page, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, &TechnicalError{Code: CodeFailedToFetch, Message: "failed to list leads", Err: err}
	}
	if page.Degraded {
		uc.Metrics.QueryFallback()
		uc.Log.Warn("⚠️ lead list served in id order; time range and cursor time ignored",
			zap.Int("limit", filter.Limit), zap.Int("returned", len(page.Leads)))
	}
	return page, nil
}

func ToAdminItem(l *entity.Lead) AdminLeadItem {
	item := AdminLeadItem{
		ID:        l.ID,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Channel:   l.Channel,
		Status:    string(l.Status),
		Message:   l.Message,
		CreatedAt: l.CreatedAt.UnixMilli(),
	}
	if l.UpdatedAt != nil {
		ms := l.UpdatedAt.UnixMilli()
		item.UpdatedAt = &ms
	}
	return item
}
