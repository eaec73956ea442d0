package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bunnystock/leaddesk/internal/entity"
)

func boolPtr(b bool) *bool { return &b }

func validInput() IntakeLeadInput {
	return IntakeLeadInput{
		Name:    " 홍길동 ",
		Phone:   "010-1234-5678",
		Email:   " Hong@Example.COM ",
		Message: "  상담 요청합니다  ",
		Agree:   boolPtr(true),
		Channel: "instagram",
	}
}

func stubCreate(repo *MockLeadRepository, id string) {
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Lead")).
		Run(func(args mock.Arguments) {
			l := args.Get(1).(*entity.Lead)
			l.ID = id
			l.CreatedAt = time.Now()
		}).
		Return(nil)
}

func TestIntakeLead_Success_NormalizesAndNotifiesBoth(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := new(MockNotifier)
	metrics := newRecordingMetrics()

	stubCreate(repo, "lead-1")
	want := LeadNotice{LeadID: "lead-1", Name: "홍길동", Phone: "01012345678", Email: "hong@example.com", Message: "상담 요청합니다"}
	notifier.On("NotifyInternal", mock.Anything, want).Return(nil)
	notifier.On("NotifyCustomer", mock.Anything, want).Return(nil)

	uc := NewIntakeLeadUseCase(repo, notifier, metrics, zap.NewNop())
	out, err := uc.Execute(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, "lead-1", out.ID)

	saved := repo.Calls[0].Arguments.Get(1).(*entity.Lead)
	assert.Equal(t, "홍길동", saved.Name)
	assert.Equal(t, "01012345678", saved.Phone)
	assert.Equal(t, "hong@example.com", saved.Email)
	assert.Equal(t, "상담 요청합니다", saved.Message)
	assert.Equal(t, entity.StatusNew, saved.Status)
	assert.True(t, saved.Agree)

	notifier.AssertExpectations(t)
	assert.Equal(t, 1, metrics.created)
	assert.Equal(t, 1, metrics.notifications["internal/ok"])
	assert.Equal(t, 1, metrics.notifications["customer/ok"])
}

func TestIntakeLead_InvalidInput_NoWrite(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*IntakeLeadInput)
		field  string
	}{
		{"blank name", func(in *IntakeLeadInput) { in.Name = "   " }, "name"},
		{"short phone", func(in *IntakeLeadInput) { in.Phone = "010-123-45" }, "phone"},
		{"bad email", func(in *IntakeLeadInput) { in.Email = "a@b" }, "email"},
		{"blank message", func(in *IntakeLeadInput) { in.Message = "\n\t " }, "message"},
		{"agree false", func(in *IntakeLeadInput) { in.Agree = boolPtr(false) }, "agree"},
		{"agree missing", func(in *IntakeLeadInput) { in.Agree = nil }, "agree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLeadRepository)
			notifier := new(MockNotifier)
			uc := NewIntakeLeadUseCase(repo, notifier, nil, nil)

			in := validInput()
			tt.mutate(&in)
			out, err := uc.Execute(context.Background(), in)

			assert.Nil(t, out)
			var de *DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, CodeInvalidInput, de.Code)
			assert.Equal(t, []string{tt.field}, de.Fields)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			notifier.AssertNotCalled(t, "NotifyInternal", mock.Anything, mock.Anything)
			notifier.AssertNotCalled(t, "NotifyCustomer", mock.Anything, mock.Anything)
		})
	}
}

func TestIntakeLead_NineDigitPhoneAccepted(t *testing.T) {
	repo := new(MockLeadRepository)
	stubCreate(repo, "lead-9")

	in := validInput()
	in.Phone = "02-123-4567"
	out, err := NewIntakeLeadUseCase(repo, nil, nil, nil).Execute(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "lead-9", out.ID)
}

func TestIntakeLead_StoreFailure(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := new(MockNotifier)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	_, err := NewIntakeLeadUseCase(repo, notifier, nil, nil).Execute(context.Background(), validInput())

	var te *TechnicalError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, CodeFailedToSave, te.Code)
	notifier.AssertNotCalled(t, "NotifyInternal", mock.Anything, mock.Anything)
}

func TestIntakeLead_NotificationFailuresDoNotFailRequest(t *testing.T) {
	tests := []struct {
		name        string
		internalErr error
		customerErr error
	}{
		{"internal fails", errors.New("smtp down"), nil},
		{"customer fails", nil, errors.New("mailbox unavailable")},
		{"both fail", errors.New("smtp down"), errors.New("smtp down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLeadRepository)
			notifier := new(MockNotifier)
			metrics := newRecordingMetrics()
			stubCreate(repo, "lead-2")
			notifier.On("NotifyInternal", mock.Anything, mock.Anything).Return(tt.internalErr)
			notifier.On("NotifyCustomer", mock.Anything, mock.Anything).Return(tt.customerErr)

			out, err := NewIntakeLeadUseCase(repo, notifier, metrics, nil).Execute(context.Background(), validInput())

			require.NoError(t, err)
			assert.Equal(t, "lead-2", out.ID)
			// Both sends are attempted whatever the other one does.
			notifier.AssertNumberOfCalls(t, "NotifyInternal", 1)
			notifier.AssertNumberOfCalls(t, "NotifyCustomer", 1)
			assert.Equal(t, 2, metrics.notifications["internal/ok"]+metrics.notifications["internal/error"]+
				metrics.notifications["customer/ok"]+metrics.notifications["customer/error"])
		})
	}
}

func TestIntakeLead_NotificationsSurviveCanceledRequest(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := new(MockNotifier)
	stubCreate(repo, "lead-3")

	ctx, cancel := context.WithCancel(context.Background())
	check := func(args mock.Arguments) {
		cancel()
		assert.NoError(t, args.Get(0).(context.Context).Err())
	}
	notifier.On("NotifyInternal", mock.Anything, mock.Anything).Run(check).Return(nil)
	notifier.On("NotifyCustomer", mock.Anything, mock.Anything).Run(check).Return(nil)

	_, err := NewIntakeLeadUseCase(repo, notifier, nil, nil).Execute(ctx, validInput())
	require.NoError(t, err)
}
