package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bunnystock/leaddesk/internal/entity"
)

func sampleLeads() []*entity.Lead {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	updated := base.Add(time.Hour)
	return []*entity.Lead{
		{ID: "c", Name: "홍길동", Phone: "01011112222", Email: "hong@example.com", Message: "ETF 문의", Channel: "blog", Status: entity.StatusNew, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "b", Name: "", Phone: "01033334444", Email: "anon@example.com", Message: "연금 상담", Status: entity.StatusDone, CreatedAt: base.Add(time.Minute), UpdatedAt: &updated},
		{ID: "a", Name: "Kim", Phone: "01055556666", Email: "kim@example.com", Message: "portfolio", Channel: "Instagram", Status: entity.StatusInProgress, CreatedAt: base},
	}
}

func TestListLeads_Public_ClampsAndMasks(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 10}, {-3, 1}, {5, 5}, {50, 10},
	}

	for _, tt := range tests {
		repo := new(MockLeadRepository)
		repo.On("List", mock.Anything, entity.LeadFilter{Limit: tt.want}).
			Return(&entity.LeadPage{Leads: sampleLeads()}, nil)

		items, err := NewListLeadsUseCase(repo, nil, nil, nil).Public(context.Background(), tt.in)

		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, PublicLeadItem{ID: "c", Name: "홍*동", CreatedAt: "2024-05-01T09:02:00Z"}, items[0])
		assert.Equal(t, "고객", items[1].Name)
		assert.Equal(t, "K*m", items[2].Name)
		repo.AssertExpectations(t)
	}
}

func TestListLeads_Admin_DefaultsAndShape(t *testing.T) {
	repo := new(MockLeadRepository)
	next := &entity.Cursor{CreatedAt: time.UnixMilli(1714554000000).UTC(), ID: "a"}
	repo.On("List", mock.Anything, entity.LeadFilter{Limit: AdminDefaultLimit}).
		Return(&entity.LeadPage{Leads: sampleLeads(), Next: next}, nil)

	out, err := NewListLeadsUseCase(repo, nil, nil, nil).Admin(context.Background(), AdminListInput{})

	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	assert.Equal(t, "홍길동", out.Items[0].Name)
	assert.Equal(t, int64(1714554120000), out.Items[0].CreatedAt)
	assert.Nil(t, out.Items[0].UpdatedAt)
	require.NotNil(t, out.Items[1].UpdatedAt)
	assert.Equal(t, "done", out.Items[1].Status)
	assert.Equal(t, EncodePageToken(next), out.NextPageToken)
	assert.False(t, out.Degraded)
}

func TestListLeads_Admin_LimitClamp(t *testing.T) {
	for in, want := range map[int]int{1000: 500, -1: 1, 42: 42} {
		repo := new(MockLeadRepository)
		repo.On("List", mock.Anything, entity.LeadFilter{Limit: want}).Return(&entity.LeadPage{}, nil)

		_, err := NewListLeadsUseCase(repo, nil, nil, nil).Admin(context.Background(), AdminListInput{Limit: in})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	}
}

func TestListLeads_Admin_BuildsFilter(t *testing.T) {
	repo := new(MockLeadRepository)
	cursor := &entity.Cursor{CreatedAt: time.UnixMilli(1714554000000).UTC(), ID: "x"}
	done := entity.StatusDone
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f entity.LeadFilter) bool {
		return f.Limit == 20 &&
			f.Status != nil && *f.Status == done &&
			f.Start != nil && f.Start.Equal(start) &&
			f.End != nil && f.End.Equal(end) &&
			f.After != nil && f.After.ID == "x" && f.After.CreatedAt.Equal(cursor.CreatedAt)
	})).Return(&entity.LeadPage{}, nil)

	out, err := NewListLeadsUseCase(repo, nil, nil, time.UTC).Admin(context.Background(), AdminListInput{
		Limit:     20,
		Status:    "done",
		Start:     "2024-05-01",
		End:       "2024-05-02",
		PageToken: EncodePageToken(cursor),
	})

	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Empty(t, out.NextPageToken)
	repo.AssertExpectations(t)
}

func TestListLeads_Admin_TextQueryAfterRetrieval(t *testing.T) {
	tests := []struct {
		q    string
		want []string
	}{
		{"", []string{"c", "b", "a"}},
		{"INSTAGRAM", []string{"a"}},
		{"3333", []string{"b"}},
		{"example.com", []string{"c", "b", "a"}},
		{"상담", []string{"b"}},
		{"nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			repo := new(MockLeadRepository)
			repo.On("List", mock.Anything, mock.Anything).
				Return(&entity.LeadPage{Leads: sampleLeads(), Next: &entity.Cursor{ID: "a"}}, nil)

			out, err := NewListLeadsUseCase(repo, nil, nil, nil).Admin(context.Background(), AdminListInput{Query: tt.q})

			require.NoError(t, err)
			ids := []string{}
			for _, it := range out.Items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.want, ids)
			// The cursor comes from the store page, not the filtered items.
			assert.NotEmpty(t, out.NextPageToken)
		})
	}
}

func TestListLeads_Admin_BadRequests(t *testing.T) {
	tests := []struct {
		name  string
		input AdminListInput
	}{
		{"unknown status", AdminListInput{Status: "archived"}},
		{"bad start", AdminListInput{Start: "yesterday"}},
		{"bad end", AdminListInput{End: "2024-13-45"}},
		{"bad token", AdminListInput{PageToken: "!!!"}},
		{"token without id", AdminListInput{PageToken: "MTIzNA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLeadRepository)
			_, err := NewListLeadsUseCase(repo, nil, nil, nil).Admin(context.Background(), tt.input)

			var de *DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, CodeBadRequest, de.Code)
			repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

func TestListLeads_DegradedIsReported(t *testing.T) {
	repo := new(MockLeadRepository)
	metrics := newRecordingMetrics()
	repo.On("List", mock.Anything, mock.Anything).
		Return(&entity.LeadPage{Leads: sampleLeads(), Degraded: true}, nil)

	out, err := NewListLeadsUseCase(repo, metrics, nil, nil).Admin(context.Background(), AdminListInput{})

	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Equal(t, 1, metrics.fallbacks)
}

func TestListLeads_StoreFailure(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	uc := NewListLeadsUseCase(repo, nil, nil, nil)

	_, err := uc.Admin(context.Background(), AdminListInput{})
	var te *TechnicalError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, CodeFailedToFetch, te.Code)

	_, err = uc.Public(context.Background(), 0)
	assert.True(t, IsTechnicalError(err))
}
