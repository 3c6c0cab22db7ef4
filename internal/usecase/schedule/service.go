package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

// Rearmer is notified after a successful schedule update so a pending
// timer can be replaced without restarting the process
type Rearmer interface {
	Rearm(ctx context.Context) error
}

// Service reads and updates the singleton ingestion schedule. It is the one
// accessor used by both the scheduler trigger and the web surface
type Service struct {
	Repo domain.ScheduleRepository
	Log  *logrus.Logger

	mu      sync.Mutex
	rearmer Rearmer
}

// NewService creates a new schedule Service instance
func NewService(repo domain.ScheduleRepository, log *logrus.Logger) *Service {
	return &Service{Repo: repo, Log: log}
}

// SetRearmer registers the trigger to notify on updates. Wired after
// construction because the trigger also reads through this service's
// repository
func (s *Service) SetRearmer(r Rearmer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rearmer = r
}

// Get returns the current schedule, seeded with the default on first read
func (s *Service) Get(ctx context.Context) (*domain.Schedule, error) {
	sched, err := s.Repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return sched, nil
}

// Set validates and persists a new schedule, then rearms the trigger.
// Invalid input returns a *domain.ValidationError and leaves the stored
// schedule unchanged
func (s *Service) Set(ctx context.Context, hour, minute int, timezone string) (*domain.Schedule, error) {
	sched := domain.Schedule{Hour: hour, Minute: minute, Timezone: timezone}
	if err := sched.Validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.Update(ctx, sched); err != nil {
		return nil, fmt.Errorf("failed to persist schedule: %w", err)
	}
	s.Log.WithField("schedule", sched.String()).Info("Updated ingestion schedule")

	s.mu.Lock()
	rearmer := s.rearmer
	s.mu.Unlock()
	if rearmer != nil {
		if err := rearmer.Rearm(ctx); err != nil {
			return nil, fmt.Errorf("schedule persisted but rearm failed: %w", err)
		}
	}

	return &sched, nil
}
