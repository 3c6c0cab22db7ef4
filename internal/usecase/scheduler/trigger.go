package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

// State is the trigger's lifecycle state
type State string

const (
	StateIdle    State = "idle"    // not started yet
	StateArmed   State = "armed"   // waiting for the configured fire time
	StateRunning State = "running" // an ingestion run is executing
)

// Runner is the slice of the ingestion runner the trigger depends on
type Runner interface {
	Run(ctx context.Context) (*domain.RunSummary, error)
}

// Trigger fires the ingestion runner at the persisted daily schedule. It
// owns an explicit cron entry: rearming removes the pending entry and adds
// a fresh one built from the stored hour/minute/timezone, so schedule
// updates take effect without a process restart. Only one run executes at
// a time; a firing that arrives mid-run is skipped
type Trigger struct {
	Schedules domain.ScheduleRepository
	Runner    Runner
	Log       *logrus.Logger

	mu       sync.Mutex
	cron     *cron.Cron
	entryID  cron.EntryID
	hasEntry bool
	state    State
}

// New creates a new Trigger instance in the Idle state
func New(schedules domain.ScheduleRepository, runner Runner, log *logrus.Logger) *Trigger {
	return &Trigger{
		Schedules: schedules,
		Runner:    runner,
		Log:       log,
		cron:      cron.New(),
		state:     StateIdle,
	}
}

// Start arms the trigger from the persisted schedule and starts the clock
func (t *Trigger) Start(ctx context.Context) error {
	if err := t.Rearm(ctx); err != nil {
		return err
	}
	t.cron.Start()
	return nil
}

// Stop halts the clock; a run already in flight keeps executing and its
// per-investor transactions commit or roll back atomically
func (t *Trigger) Stop() {
	t.cron.Stop()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hasEntry {
		t.cron.Remove(t.entryID)
		t.hasEntry = false
	}
	t.state = StateIdle
}

// Rearm re-reads the persisted schedule and replaces the pending cron
// entry with one matching it. Safe to call while a run is executing; the
// in-flight run is unaffected
func (t *Trigger) Rearm(ctx context.Context) error {
	sched, err := t.Schedules.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schedule for arming: %w", err)
	}

	spec := fmt.Sprintf("CRON_TZ=%s %d %d * * *", sched.Timezone, sched.Minute, sched.Hour)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hasEntry {
		t.cron.Remove(t.entryID)
		t.hasEntry = false
	}
	id, err := t.cron.AddFunc(spec, t.fire)
	if err != nil {
		return fmt.Errorf("failed to arm trigger for %s: %w", sched, err)
	}
	t.entryID = id
	t.hasEntry = true
	if t.state != StateRunning {
		t.state = StateArmed
	}

	t.Log.WithField("schedule", sched.String()).Info("Armed ingestion trigger")
	return nil
}

// State returns the current lifecycle state
func (t *Trigger) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// NextFire returns the armed fire time, or the zero time when not armed
func (t *Trigger) NextFire() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasEntry {
		return time.Time{}
	}
	return t.cron.Entry(t.entryID).Next
}

// TriggerNow runs the ingestion synchronously unless a run is already in
// progress, in which case it returns domain.ErrRunInProgress. After the
// run the schedule is re-read and the trigger rearmed, picking up any
// update that happened mid-run
func (t *Trigger) TriggerNow(ctx context.Context) error {
	t.mu.Lock()
	if t.state == StateRunning {
		t.mu.Unlock()
		return domain.ErrRunInProgress
	}
	t.state = StateRunning
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.state = StateArmed
		t.mu.Unlock()
		if err := t.Rearm(ctx); err != nil {
			t.Log.WithError(err).Error("Failed to rearm trigger after run")
		}
	}()

	summary, err := t.Runner.Run(ctx)
	if err != nil {
		return err
	}
	if failed := summary.Failed(); len(failed) > 0 {
		t.Log.WithField("failed", len(failed)).Warn("Scheduled run finished with failures")
	}
	return nil
}

func (t *Trigger) fire() {
	if err := t.TriggerNow(context.Background()); err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			t.Log.Warn("Skipping scheduled fire, previous run still in progress")
			return
		}
		t.Log.WithError(err).Error("Scheduled ingestion run failed")
	}
}
