package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bunnystock/leaddesk/internal/entity"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) (*entity.LeadPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeadPage), args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id string, status entity.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLeadRepository) CountByStatus(ctx context.Context) (map[entity.Status]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entity.Status]int), args.Error(1)
}

func (m *MockLeadRepository) OldestWithStatus(ctx context.Context, status entity.Status) (*time.Time, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyInternal(ctx context.Context, notice LeadNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNotifier) NotifyCustomer(ctx context.Context, notice LeadNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

// recordingMetrics is safe for the concurrent notification sends.
type recordingMetrics struct {
	mu            sync.Mutex
	created       int
	notifications map[string]int
	statuses      []entity.Status
	fallbacks     int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{notifications: map[string]int{}}
}

func (r *recordingMetrics) LeadCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *recordingMetrics) Notification(kind string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.notifications[kind+"/"+result]++
}

func (r *recordingMetrics) StatusChanged(s entity.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *recordingMetrics) QueryFallback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks++
}
