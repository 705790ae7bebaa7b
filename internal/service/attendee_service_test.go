package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/backstage/services/events/internal/metrics"
	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/repository"
)

// Mock attendee repository for testing
type MockAttendeeRepository struct {
	mock.Mock
}

func (m *MockAttendeeRepository) Create(ctx context.Context, attendee *models.Attendee) error {
	args := m.Called(ctx, attendee)
	return args.Error(0)
}

func (m *MockAttendeeRepository) CreateBatch(ctx context.Context, attendees []models.Attendee) error {
	args := m.Called(ctx, attendees)
	return args.Error(0)
}

func (m *MockAttendeeRepository) Save(ctx context.Context, attendee *models.Attendee) error {
	args := m.Called(ctx, attendee)
	return args.Error(0)
}

func (m *MockAttendeeRepository) FindByID(ctx context.Context, id uint) (*models.Attendee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendee), args.Error(1)
}

func (m *MockAttendeeRepository) FindByEventAndEmail(ctx context.Context, eventID uint, email string) (*models.Attendee, error) {
	args := m.Called(ctx, eventID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendee), args.Error(1)
}

func (m *MockAttendeeRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.Attendee, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attendee), args.Error(1)
}

func (m *MockAttendeeRepository) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttendeeRepository) EmailsByEvent(ctx context.Context, eventID uint) ([]string, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newAttendeeService(attendees repository.AttendeeRepository) *AttendeeService {
	return &AttendeeService{
		attendees: attendees,
		metrics:   metrics.NewMetrics(),
	}
}

func TestCheckInFlipsStatusOnce(t *testing.T) {
	repo := new(MockAttendeeRepository)
	service := newAttendeeService(repo)

	attendee := &models.Attendee{AttendeeID: 1, EventID: 1, Email: "john@example.com"}
	repo.On("FindByID", mock.Anything, uint(1)).Return(attendee, nil)
	repo.On("Save", mock.Anything, attendee).Return(nil).Once()

	got, err := service.CheckIn(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, got.CheckInStatus)

	// Second call finds the attendee already checked in and must not save again
	got, err = service.CheckIn(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, got.CheckInStatus)

	repo.AssertExpectations(t)
}

func TestCheckInUnknownAttendee(t *testing.T) {
	repo := new(MockAttendeeRepository)
	service := newAttendeeService(repo)

	repo.On("FindByID", mock.Anything, uint(999)).Return(nil, repository.ErrNotFound)

	_, err := service.CheckIn(context.Background(), 999)
	require.ErrorIs(t, err, ErrAttendeeNotFound)
}

func TestListByEventEmpty(t *testing.T) {
	repo := new(MockAttendeeRepository)
	service := newAttendeeService(repo)

	repo.On("ListByEvent", mock.Anything, uint(42)).Return([]models.Attendee{}, nil)

	_, err := service.ListByEvent(context.Background(), 42)
	require.ErrorIs(t, err, ErrNoAttendeesFound)
}

func TestReconcileCheckInsDuplicateEmailCountedOnce(t *testing.T) {
	repo := new(MockAttendeeRepository)

	attendee := &models.Attendee{AttendeeID: 1, EventID: 1, Email: "john@example.com"}
	// The duplicate occurrence is filtered by the processed set, so the
	// lookup and save happen exactly once.
	repo.On("FindByEventAndEmail", mock.Anything, uint(1), "john@example.com").Return(attendee, nil).Once()
	repo.On("Save", mock.Anything, attendee).Return(nil).Once()

	updated, err := reconcileCheckIns(context.Background(), repo, 1,
		[]string{"john@example.com", "john@example.com"})
	require.NoError(t, err)
	require.Equal(t, 1, updated)
	require.True(t, attendee.CheckInStatus)

	repo.AssertExpectations(t)
}

func TestReconcileCheckInsAlreadyCheckedIn(t *testing.T) {
	repo := new(MockAttendeeRepository)

	attendee := &models.Attendee{AttendeeID: 1, EventID: 1, Email: "john@example.com", CheckInStatus: true}
	repo.On("FindByEventAndEmail", mock.Anything, uint(1), "john@example.com").Return(attendee, nil).Once()

	updated, err := reconcileCheckIns(context.Background(), repo, 1, []string{"john@example.com"})
	require.NoError(t, err)
	require.Equal(t, 0, updated, "an already checked-in attendee contributes nothing")

	repo.AssertExpectations(t)
}

func TestReconcileCheckInsUnknownEmail(t *testing.T) {
	repo := new(MockAttendeeRepository)

	repo.On("FindByEventAndEmail", mock.Anything, uint(1), "ghost@example.com").
		Return(nil, repository.ErrNotFound)
	known := &models.Attendee{AttendeeID: 2, EventID: 1, Email: "jane@example.com"}
	repo.On("FindByEventAndEmail", mock.Anything, uint(1), "jane@example.com").Return(known, nil)
	repo.On("Save", mock.Anything, known).Return(nil)

	updated, err := reconcileCheckIns(context.Background(), repo, 1,
		[]string{"ghost@example.com", "jane@example.com"})
	require.NoError(t, err)
	require.Equal(t, 1, updated, "unknown emails are no-ops, not errors")
}
