package burnwatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simaogato/estateledger-backend/internal/adapter/events"
	"github.com/simaogato/estateledger-backend/internal/domain"
)

// MockExpiredLister is a mock implementation of ExpiredLister
type MockExpiredLister struct {
	mock.Mock
}

func (m *MockExpiredLister) ExpiredBurnWindows(ctx context.Context, now time.Time) ([]*domain.EstateToken, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EstateToken), args.Error(1)
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestWatcher(t *testing.T, lister ExpiredLister) (*Watcher, *events.Recorder) {
	t.Helper()
	recorder := events.NewRecorder()
	w, err := NewWatcher(lister, recorder, zap.NewNop(), time.Minute)
	require.NoError(t, err)
	w.Clock = func() time.Time { return now }
	return w, recorder
}

func TestWatcher_Check_ReportsEachExpiryOnce(t *testing.T) {
	ctx := context.Background()
	lister := new(MockExpiredLister)
	w, recorder := newTestWatcher(t, lister)

	deadline := now.Add(-time.Hour)
	expired := []*domain.EstateToken{
		{ID: 1, IsListed: true, BurnDeadline: deadline},
		{ID: 4, IsListed: true, BurnDeadline: deadline},
	}
	lister.On("ExpiredBurnWindows", ctx, now).Return(expired, nil)

	published, err := w.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, published)

	// Second pass sees the same tokens and stays quiet
	published, err = w.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, published)

	evs := recorder.OfType(domain.EventBurnWindowExpired)
	require.Len(t, evs, 2)
	assert.Equal(t, uint64(1), evs[0].EntityID)
	assert.Equal(t, uint64(4), evs[1].EntityID)
	assert.Equal(t, "1772362800", evs[0].Attributes["burn_deadline"])
	lister.AssertExpectations(t)
}

func TestWatcher_Check_ExtendedDeadlineReportsAgain(t *testing.T) {
	ctx := context.Background()
	lister := new(MockExpiredLister)
	w, recorder := newTestWatcher(t, lister)

	first := []*domain.EstateToken{{ID: 7, IsListed: true, BurnDeadline: now.Add(-2 * time.Hour)}}
	second := []*domain.EstateToken{{ID: 7, IsListed: true, BurnDeadline: now.Add(-time.Minute)}}
	lister.On("ExpiredBurnWindows", ctx, now).Return(first, nil).Once()
	lister.On("ExpiredBurnWindows", ctx, now).Return(second, nil).Once()

	_, err := w.Check(ctx)
	require.NoError(t, err)
	published, err := w.Check(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, published)
	assert.Len(t, recorder.OfType(domain.EventBurnWindowExpired), 2)
}

func TestWatcher_Check_ListerError(t *testing.T) {
	ctx := context.Background()
	lister := new(MockExpiredLister)
	w, recorder := newTestWatcher(t, lister)

	lister.On("ExpiredBurnWindows", ctx, now).Return(nil, errors.New("storage offline"))

	published, err := w.Check(ctx)

	assert.Error(t, err)
	assert.Equal(t, 0, published)
	assert.Empty(t, recorder.Events())
}

func TestNewWatcher_InvalidInterval(t *testing.T) {
	_, err := NewWatcher(new(MockExpiredLister), events.NewRecorder(), zap.NewNop(), 0)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}

func TestWatcher_StartStop(t *testing.T) {
	lister := new(MockExpiredLister)
	lister.On("ExpiredBurnWindows", mock.Anything, mock.Anything).Return([]*domain.EstateToken{}, nil).Maybe()

	w, err := NewWatcher(lister, events.NewRecorder(), zap.NewNop(), time.Hour)
	require.NoError(t, err)

	require.NoError(t, w.Start())
	assert.NoError(t, w.Stop())
}
