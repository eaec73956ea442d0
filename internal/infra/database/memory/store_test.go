package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunnystock/leaddesk/internal/entity"
)

// seed inserts n leads one second apart, oldest first.
func seed(t *testing.T, s *Store, n int) []*entity.Lead {
	t.Helper()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	i := 0
	s.WithClock(func() time.Time { return base.Add(time.Duration(i) * time.Second) })

	var out []*entity.Lead
	for ; i < n; i++ {
		l := &entity.Lead{Name: "lead", Phone: "01012345678", Email: "a@b.com", Message: "hi", Agree: true}
		require.NoError(t, s.Create(context.Background(), l))
		out = append(out, l)
	}
	return out
}

func TestStoreCreateAssignsServerFields(t *testing.T) {
	s := New()
	l := &entity.Lead{Name: "홍길동", Status: entity.StatusDone}

	require.NoError(t, s.Create(context.Background(), l))

	assert.NotEmpty(t, l.ID)
	assert.Equal(t, entity.StatusNew, l.Status)
	assert.False(t, l.CreatedAt.IsZero())
	assert.Equal(t, 1, s.Len())
}

func TestStoreListPaginatesNewestFirst(t *testing.T) {
	s := New()
	leads := seed(t, s, 5)
	ctx := context.Background()

	page, err := s.List(ctx, entity.LeadFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Leads, 2)
	assert.Equal(t, leads[4].ID, page.Leads[0].ID)
	assert.Equal(t, leads[3].ID, page.Leads[1].ID)
	require.NotNil(t, page.Next)

	page, err = s.List(ctx, entity.LeadFilter{Limit: 2, After: page.Next})
	require.NoError(t, err)
	require.Len(t, page.Leads, 2)
	assert.Equal(t, leads[2].ID, page.Leads[0].ID)
	assert.Equal(t, leads[1].ID, page.Leads[1].ID)

	page, err = s.List(ctx, entity.LeadFilter{Limit: 2, After: page.Next})
	require.NoError(t, err)
	require.Len(t, page.Leads, 1)
	assert.Equal(t, leads[0].ID, page.Leads[0].ID)
	assert.Nil(t, page.Next)
}

func TestStoreListTimeRangeAndStatus(t *testing.T) {
	s := New()
	leads := seed(t, s, 4)
	ctx := context.Background()
	require.NoError(t, s.UpdateStatus(ctx, leads[2].ID, entity.StatusDone))

	start := leads[1].CreatedAt
	end := leads[3].CreatedAt
	page, err := s.List(ctx, entity.LeadFilter{Start: &start, End: &end, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Leads, 2)
	assert.Equal(t, leads[2].ID, page.Leads[0].ID)
	assert.Equal(t, leads[1].ID, page.Leads[1].ID)

	done := entity.StatusDone
	page, err = s.List(ctx, entity.LeadFilter{Status: &done, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Leads, 1)
	assert.Equal(t, leads[2].ID, page.Leads[0].ID)
}

func TestStoreListFallbackIgnoresTimeRange(t *testing.T) {
	s := New()
	seed(t, s, 3)
	s.OrderedErr = errors.New("index missing")

	start := time.Now().Add(24 * time.Hour)
	page, err := s.List(context.Background(), entity.LeadFilter{Start: &start, Limit: 10})
	require.NoError(t, err)

	assert.True(t, page.Degraded)
	assert.Len(t, page.Leads, 3)
	assert.True(t, page.Leads[0].ID > page.Leads[1].ID)
}

func TestStoreUpdateStatus(t *testing.T) {
	s := New()
	leads := seed(t, s, 1)
	ctx := context.Background()

	require.NoError(t, s.UpdateStatus(ctx, leads[0].ID, entity.StatusNew))
	got, _ := s.Get(leads[0].ID)
	assert.Equal(t, entity.StatusNew, got.Status)
	assert.Nil(t, got.UpdatedAt)

	require.NoError(t, s.UpdateStatus(ctx, leads[0].ID, entity.StatusInProgress))
	got, _ = s.Get(leads[0].ID)
	assert.Equal(t, entity.StatusInProgress, got.Status)
	assert.NotNil(t, got.UpdatedAt)
	assert.Equal(t, leads[0].CreatedAt, got.CreatedAt)

	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", entity.StatusDone), entity.ErrLeadNotFound)
}

func TestStoreCounts(t *testing.T) {
	s := New()
	leads := seed(t, s, 3)
	ctx := context.Background()
	require.NoError(t, s.UpdateStatus(ctx, leads[0].ID, entity.StatusDone))

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[entity.Status]int{
		entity.StatusNew:        2,
		entity.StatusInProgress: 0,
		entity.StatusDone:       1,
	}, counts)

	oldest, err := s.OldestWithStatus(ctx, entity.StatusNew)
	require.NoError(t, err)
	require.NotNil(t, oldest)
	assert.Equal(t, leads[1].CreatedAt, *oldest)

	oldest, err = s.OldestWithStatus(ctx, entity.StatusInProgress)
	require.NoError(t, err)
	assert.Nil(t, oldest)
}
