package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bunnystock/leaddesk/internal/entity"
)

// BacklogGauge receives the per-status lead counts.
type BacklogGauge interface {
	SetLeadsByStatus(status entity.Status, count int)
}

// BacklogWorker periodically publishes lead counts by status and warns when
// new leads have waited longer than staleAfter.
type BacklogWorker struct {
	repo         entity.LeadRepositoryInterface
	gauge        BacklogGauge
	log          *zap.Logger
	tickInterval time.Duration
	staleAfter   time.Duration
	now          func() time.Time
}

func NewBacklogWorker(repo entity.LeadRepositoryInterface, gauge BacklogGauge, log *zap.Logger, interval, staleAfter time.Duration) *BacklogWorker {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &BacklogWorker{
		repo:         repo,
		gauge:        gauge,
		log:          log,
		tickInterval: interval,
		staleAfter:   staleAfter,
		now:          time.Now,
	}
}

// Start blocks until ctx is done.
func (w *BacklogWorker) Start(ctx context.Context) {
	w.log.Info("🕒 backlog worker started",
		zap.Duration("interval", w.tickInterval), zap.Duration("stale_after", w.staleAfter))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.report(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("backlog worker stopped")
			return
		case <-ticker.C:
			w.report(ctx)
		}
	}
}

func (w *BacklogWorker) report(ctx context.Context) {
	counts, err := w.repo.CountByStatus(ctx)
	if err != nil {
		w.log.Error("❌ count leads by status", zap.Error(err))
		return
	}
	for _, s := range entity.Statuses {
		if w.gauge != nil {
			w.gauge.SetLeadsByStatus(s, counts[s])
		}
	}

	if w.staleAfter <= 0 || counts[entity.StatusNew] == 0 {
		return
	}

	oldest, err := w.repo.OldestWithStatus(ctx, entity.StatusNew)
	if err != nil {
		w.log.Error("❌ oldest new lead", zap.Error(err))
		return
	}
	if oldest == nil {
		return
	}
	if waited := w.now().Sub(*oldest); waited > w.staleAfter {
		w.log.Warn("⏱️ new leads waiting for follow-up",
			zap.Int("new", counts[entity.StatusNew]),
			zap.Duration("oldest_wait", waited.Round(time.Minute)))
	}
}
