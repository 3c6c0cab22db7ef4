package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

// MockScheduleRepository is a mock implementation of ScheduleRepository for testing
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Get(ctx context.Context) (*domain.Schedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) Update(ctx context.Context, schedule domain.Schedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

// blockingRunner lets tests hold a run open and observe invocations
type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	runs    int
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (r *blockingRunner) Run(ctx context.Context) (*domain.RunSummary, error) {
	r.runs++
	r.started <- struct{}{}
	<-r.release
	return &domain.RunSummary{}, nil
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestTrigger_StartArmsFromStoredSchedule(t *testing.T) {
	ctx := context.Background()
	repo := new(MockScheduleRepository)
	repo.On("Get", ctx).Return(&domain.Schedule{Hour: 2, Minute: 0, Timezone: "UTC"}, nil)

	trigger := New(repo, newBlockingRunner(), newTestLogger())
	assert.Equal(t, StateIdle, trigger.State())

	require.NoError(t, trigger.Start(ctx))
	defer trigger.Stop()

	assert.Equal(t, StateArmed, trigger.State())

	require.Eventually(t, func() bool {
		return !trigger.NextFire().IsZero()
	}, 2*time.Second, 10*time.Millisecond)

	next := trigger.NextFire().UTC()
	assert.Equal(t, 2, next.Hour())
	assert.Equal(t, 0, next.Minute())
}

func TestTrigger_RearmReplacesPendingEntry(t *testing.T) {
	// Armed for 02:00; setSchedule(3, 30) must cancel the 02:00 entry and
	// arm 03:30 without restarting the process
	ctx := context.Background()
	repo := new(MockScheduleRepository)
	repo.On("Get", ctx).Return(&domain.Schedule{Hour: 2, Minute: 0, Timezone: "UTC"}, nil).Once()
	repo.On("Get", ctx).Return(&domain.Schedule{Hour: 3, Minute: 30, Timezone: "UTC"}, nil).Once()

	trigger := New(repo, newBlockingRunner(), newTestLogger())
	require.NoError(t, trigger.Start(ctx))
	defer trigger.Stop()

	require.NoError(t, trigger.Rearm(ctx))

	require.Eventually(t, func() bool {
		next := trigger.NextFire().UTC()
		return next.Hour() == 3 && next.Minute() == 30
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, StateArmed, trigger.State())
	repo.AssertExpectations(t)
}

func TestTrigger_SecondTriggerRejectedWhileRunning(t *testing.T) {
	ctx := context.Background()
	repo := new(MockScheduleRepository)
	repo.On("Get", mock.Anything).Return(&domain.Schedule{Hour: 2, Minute: 0, Timezone: "UTC"}, nil)

	runner := newBlockingRunner()
	trigger := New(repo, runner, newTestLogger())
	require.NoError(t, trigger.Start(ctx))
	defer trigger.Stop()

	done := make(chan error, 1)
	go func() {
		done <- trigger.TriggerNow(ctx)
	}()

	<-runner.started
	assert.Equal(t, StateRunning, trigger.State())

	// A second trigger while running is rejected, not queued
	assert.ErrorIs(t, trigger.TriggerNow(ctx), domain.ErrRunInProgress)

	close(runner.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, runner.runs)

	// Back to Armed once the run completes, schedule re-read
	require.Eventually(t, func() bool {
		return trigger.State() == StateArmed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTrigger_RearmAfterRunPicksUpMidRunUpdate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockScheduleRepository)
	// Initial arm at 02:00, post-run rearm reads the updated 05:45
	repo.On("Get", mock.Anything).Return(&domain.Schedule{Hour: 2, Minute: 0, Timezone: "UTC"}, nil).Once()
	repo.On("Get", mock.Anything).Return(&domain.Schedule{Hour: 5, Minute: 45, Timezone: "UTC"}, nil).Once()

	runner := newBlockingRunner()
	trigger := New(repo, runner, newTestLogger())
	require.NoError(t, trigger.Start(ctx))
	defer trigger.Stop()

	done := make(chan error, 1)
	go func() {
		done <- trigger.TriggerNow(ctx)
	}()
	<-runner.started
	close(runner.release)
	require.NoError(t, <-done)

	require.Eventually(t, func() bool {
		next := trigger.NextFire().UTC()
		return next.Hour() == 5 && next.Minute() == 45
	}, 2*time.Second, 10*time.Millisecond)
	repo.AssertExpectations(t)
}
