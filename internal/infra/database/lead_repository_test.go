package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunnystock/leaddesk/internal/entity"
)

func TestBuildListQuery(t *testing.T) {
	status := entity.StatusDone
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	after := &entity.Cursor{CreatedAt: end.Add(-time.Hour), ID: "lead-9"}

	query, args, err := buildListQuery(entity.LeadFilter{
		Status: &status,
		Start:  &start,
		End:    &end,
		After:  after,
		Limit:  10,
	})
	require.NoError(t, err)

	assert.Contains(t, query, "FROM leads")
	assert.Contains(t, query, "status = $1")
	assert.Contains(t, query, "created_at >= $2")
	assert.Contains(t, query, "created_at < $3")
	assert.Contains(t, query, "(created_at, id) < ($4, $5)")
	assert.Contains(t, query, "ORDER BY created_at DESC, id DESC")
	assert.Contains(t, query, "LIMIT 11")
	assert.Equal(t, []any{"done", start, end, after.CreatedAt, "lead-9"}, args)
}

func TestBuildListQueryNoFilters(t *testing.T) {
	query, args, err := buildListQuery(entity.LeadFilter{Limit: 200})
	require.NoError(t, err)

	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "LIMIT 201")
	assert.Empty(t, args)
}

func TestBuildFallbackQueryDropsTimeRange(t *testing.T) {
	status := entity.StatusNew
	start := time.Now().Add(-time.Hour)
	end := time.Now()

	query, args, err := buildFallbackQuery(entity.LeadFilter{
		Status: &status,
		Start:  &start,
		End:    &end,
		After:  &entity.Cursor{CreatedAt: start, ID: "lead-3"},
		Limit:  5,
	})
	require.NoError(t, err)

	assert.NotContains(t, query, "created_at >=")
	assert.NotContains(t, query, "created_at <")
	assert.Contains(t, query, "status = $1")
	assert.Contains(t, query, "id < $2")
	assert.Contains(t, query, "ORDER BY id DESC")
	assert.Contains(t, query, "LIMIT 6")
	assert.Equal(t, []any{"new", "lead-3"}, args)
}

func TestPaginate(t *testing.T) {
	now := time.Now()
	leads := []*entity.Lead{
		{ID: "c", CreatedAt: now},
		{ID: "b", CreatedAt: now.Add(-time.Second)},
		{ID: "a", CreatedAt: now.Add(-2 * time.Second)},
	}

	page := paginate(leads, 2, false)
	require.Len(t, page.Leads, 2)
	require.NotNil(t, page.Next)
	assert.Equal(t, "b", page.Next.ID)
	assert.Equal(t, leads[1].CreatedAt, page.Next.CreatedAt)

	page = paginate(leads, 3, true)
	assert.Len(t, page.Leads, 3)
	assert.Nil(t, page.Next)
	assert.True(t, page.Degraded)

	page = paginate(nil, 3, false)
	assert.NotNil(t, page.Leads)
	assert.Empty(t, page.Leads)
}
