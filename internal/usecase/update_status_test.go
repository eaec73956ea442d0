package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bunnystock/leaddesk/internal/entity"
)

func TestUpdateStatus_Success(t *testing.T) {
	repo := new(MockLeadRepository)
	metrics := newRecordingMetrics()
	repo.On("UpdateStatus", mock.Anything, "lead-1", entity.StatusInProgress).Return(nil)

	err := NewUpdateStatusUseCase(repo, metrics, nil).Execute(context.Background(), "lead-1", "in_progress")

	require.NoError(t, err)
	repo.AssertExpectations(t)
	assert.Equal(t, []entity.Status{entity.StatusInProgress}, metrics.statuses)
}

func TestUpdateStatus_BadRequest(t *testing.T) {
	tests := []struct{ id, status string }{
		{"lead-1", "archived"},
		{"lead-1", ""},
		{"lead-1", "NEW"},
		{"lead-1", " done "},
		{"lead-1", "done\n"},
		{"  ", "done"},
	}

	for _, tt := range tests {
		repo := new(MockLeadRepository)
		err := NewUpdateStatusUseCase(repo, nil, nil).Execute(context.Background(), tt.id, tt.status)

		var de *DomainError
		require.True(t, errors.As(err, &de), "%q/%q", tt.id, tt.status)
		assert.Equal(t, CodeBadRequest, de.Code)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("UpdateStatus", mock.Anything, "ghost", entity.StatusDone).
		Return(fmt.Errorf("update lead: %w", entity.ErrLeadNotFound))

	err := NewUpdateStatusUseCase(repo, nil, nil).Execute(context.Background(), "ghost", "done")

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeNotFound, de.Code)
}

func TestUpdateStatus_StoreFailure(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("UpdateStatus", mock.Anything, "lead-1", entity.StatusDone).Return(errors.New("deadlock"))

	err := NewUpdateStatusUseCase(repo, nil, nil).Execute(context.Background(), "lead-1", "done")

	var te *TechnicalError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, CodeUpdateFailed, te.Code)
}
