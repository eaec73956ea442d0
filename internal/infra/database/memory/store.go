// Package memory is an in-process lead store with the same ordering, cursor
// and fallback behaviour as the Postgres repository. Used for local
// development (DB_DRIVER=memory) and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bunnystock/leaddesk/internal/entity"
)

type Store struct {
	mu    sync.RWMutex
	leads map[string]*entity.Lead
	now   func() time.Time

	// OrderedErr, when set, makes the time-ordered query fail so the
	// id-ordered fallback runs.
	OrderedErr error
	// Err makes every operation fail.
	Err error
}

func New() *Store {
	return &Store{
		leads: make(map[string]*entity.Lead),
		now:   time.Now,
	}
}

// WithClock replaces the insert clock.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Create(_ context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	lead.ID = uuid.NewString()
	lead.Status = entity.StatusNew
	lead.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	lead.UpdatedAt = nil

	stored := *lead
	s.leads[lead.ID] = &stored
	return nil
}

func (s *Store) List(_ context.Context, f entity.LeadFilter) (*entity.LeadPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Err != nil {
		return nil, s.Err
	}

	degraded := s.OrderedErr != nil
	out := make([]*entity.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if !matches(l, f, degraded) {
			continue
		}
		c := *l
		out = append(out, &c)
	}

	if degraded {
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	} else {
		sort.Slice(out, func(i, j int) bool { return before(out[j], out[i]) })
	}

	page := &entity.LeadPage{Leads: out, Degraded: degraded}
	if f.Limit > 0 && len(out) > f.Limit {
		page.Leads = out[:f.Limit]
		last := page.Leads[f.Limit-1]
		page.Next = &entity.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return page, nil
}

// before reports whether a sorts before b in ascending (created_at, id) order.
func before(a, b *entity.Lead) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func matches(l *entity.Lead, f entity.LeadFilter, degraded bool) bool {
	if f.Status != nil && l.Status != *f.Status {
		return false
	}
	if degraded {
		return f.After == nil || l.ID < f.After.ID
	}
	if f.Start != nil && l.CreatedAt.Before(*f.Start) {
		return false
	}
	if f.End != nil && !l.CreatedAt.Before(*f.End) {
		return false
	}
	if f.After != nil && !before(l, &entity.Lead{CreatedAt: f.After.CreatedAt, ID: f.After.ID}) {
		return false
	}
	return true
}

func (s *Store) UpdateStatus(_ context.Context, id string, status entity.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	l, ok := s.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	if l.Status == status {
		return nil
	}
	now := s.now().UTC()
	l.Status = status
	l.UpdatedAt = &now
	return nil
}

func (s *Store) CountByStatus(_ context.Context) (map[entity.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Err != nil {
		return nil, s.Err
	}

	counts := make(map[entity.Status]int, len(entity.Statuses))
	for _, st := range entity.Statuses {
		counts[st] = 0
	}
	for _, l := range s.leads {
		counts[l.Status]++
	}
	return counts, nil
}

func (s *Store) OldestWithStatus(_ context.Context, status entity.Status) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Err != nil {
		return nil, s.Err
	}

	var oldest *time.Time
	for _, l := range s.leads {
		if l.Status != status {
			continue
		}
		if oldest == nil || l.CreatedAt.Before(*oldest) {
			t := l.CreatedAt
			oldest = &t
		}
	}
	return oldest, nil
}

// Get returns a copy of the stored lead.
func (s *Store) Get(id string) (*entity.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, false
	}
	c := *l
	return &c, true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

func (s *Store) Ping(context.Context) error {
	return s.Err
}
