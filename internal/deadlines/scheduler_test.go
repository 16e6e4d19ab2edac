package deadlines

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sharepoint-portal/portal-backend/internal/sharepoints"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, sp *sharepoints.SharePoint) error {
	return m.Called(ctx, sp).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*sharepoints.SharePoint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sharepoints.SharePoint), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, f sharepoints.Filter, s sharepoints.Sort, p sharepoints.Page) ([]sharepoints.SharePoint, error) {
	args := m.Called(ctx, f, s, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sharepoints.SharePoint), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, f sharepoints.Filter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, sp *sharepoints.SharePoint) error {
	return m.Called(ctx, sp).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var sweepNow = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

func overdue(title string, signed bool) sharepoints.SharePoint {
	return sharepoints.SharePoint{
		ID:              uuid.New(),
		Title:           title,
		CreatedBy:       uuid.New(),
		Deadline:        sweepNow.Add(-time.Hour),
		ManagerApproved: true,
		Status:          sharepoints.StatusPending,
		UsersToSign:     sharepoints.Signers{{User: uuid.New(), HasSigned: signed}},
	}
}

func TestSweepPagesThroughOverdue(t *testing.T) {
	repo := new(MockRepository)
	sweeper := NewSweeper(repo, zap.NewNop(), 2)
	sweeper.now = func() time.Time { return sweepNow }

	isOverdueQuery := mock.MatchedBy(func(f sharepoints.Filter) bool {
		return f.OverdueAt != nil && f.OverdueAt.Equal(sweepNow)
	})
	bySort := sharepoints.Sort{Field: sharepoints.SortDeadline}

	repo.On("List", mock.Anything, isOverdueQuery, bySort, sharepoints.Page{Offset: 0, Limit: 2}).
		Return([]sharepoints.SharePoint{overdue("a", false), overdue("b", false)}, nil)
	// A stale cached status the recompute resolves to completed is skipped.
	repo.On("List", mock.Anything, isOverdueQuery, bySort, sharepoints.Page{Offset: 2, Limit: 2}).
		Return([]sharepoints.SharePoint{overdue("c", true)}, nil)

	found, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a", found[0].Title)
	assert.Equal(t, sharepoints.StatusPending, found[1].Status)
	repo.AssertExpectations(t)
}

func TestSweepPropagatesStoreErrors(t *testing.T) {
	repo := new(MockRepository)
	repo.On("List", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	_, err := NewSweeper(repo, zap.NewNop(), 10).Sweep(context.Background())
	assert.ErrorContains(t, err, "timeout")
}

func TestSchedulerRejectsInvalidSchedule(t *testing.T) {
	repo := new(MockRepository)
	s := NewScheduler(NewSweeper(repo, zap.NewNop(), 10), zap.NewNop())
	assert.Error(t, s.Start(context.Background(), "not a schedule"))
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSchedulerRunsImmediately(t *testing.T) {
	repo := new(MockRepository)
	repo.On("List", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]sharepoints.SharePoint{}, nil)

	s := NewScheduler(NewSweeper(repo, zap.NewNop(), 10), zap.NewNop())
	require.NoError(t, s.Start(context.Background(), "@every 1h"))
	s.Stop()

	repo.AssertNumberOfCalls(t, "List", 1)
}
