package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

// scheduleRepository implements domain.ScheduleRepository over the
// ingest_schedule singleton row
type scheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *DB) domain.ScheduleRepository {
	return &scheduleRepository{db: db}
}

// Get retrieves the current schedule, seeding the default on first read
func (r *scheduleRepository) Get(ctx context.Context) (*domain.Schedule, error) {
	query := `
		SELECT hour, minute, timezone
		FROM ingest_schedule
		WHERE id = 1
	`

	var sched domain.Schedule
	err := r.db.QueryRowContext(ctx, query).Scan(&sched.Hour, &sched.Minute, &sched.Timezone)
	if err == nil {
		return &sched, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	// First read ever: seed the default. DO NOTHING keeps a concurrent
	// seeder from failing
	seed := `
		INSERT INTO ingest_schedule (id, hour, minute, timezone)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	def := domain.DefaultSchedule
	if _, err := r.db.ExecContext(ctx, seed, def.Hour, def.Minute, def.Timezone); err != nil {
		return nil, fmt.Errorf("failed to seed default schedule: %w", err)
	}

	return &def, nil
}

// Update atomically persists new schedule values
func (r *scheduleRepository) Update(ctx context.Context, schedule domain.Schedule) error {
	query := `
		INSERT INTO ingest_schedule (id, hour, minute, timezone)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET hour = EXCLUDED.hour,
		    minute = EXCLUDED.minute,
		    timezone = EXCLUDED.timezone,
		    updated_at = now()
	`

	if _, err := r.db.ExecContext(ctx, query, schedule.Hour, schedule.Minute, schedule.Timezone); err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	return nil
}
