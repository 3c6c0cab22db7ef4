package domain

import (
	"fmt"
	"time"
)

// Schedule is the singleton daily ingestion schedule: the wall-clock time
// (in the configured timezone) at which the scheduled run fires
type Schedule struct {
	Hour     int
	Minute   int
	Timezone string
}

// DefaultSchedule is seeded when no schedule row exists yet
var DefaultSchedule = Schedule{Hour: 2, Minute: 0, Timezone: "UTC"}

// Validate ensures the schedule adheres to domain rules.
// Returns a *ValidationError if validation fails
func (s Schedule) Validate() error {
	if s.Hour < 0 || s.Hour > 23 {
		return &ValidationError{Field: "hour", Message: fmt.Sprintf("hour must be between 0 and 23, got %d", s.Hour)}
	}
	if s.Minute < 0 || s.Minute > 59 {
		return &ValidationError{Field: "minute", Message: fmt.Sprintf("minute must be between 0 and 59, got %d", s.Minute)}
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return &ValidationError{Field: "timezone", Message: fmt.Sprintf("unknown timezone %q", s.Timezone)}
	}
	return nil
}

// Location resolves the schedule's timezone identifier
func (s Schedule) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

// String renders the schedule as "HH:MM <zone>" for logs and templates
func (s Schedule) String() string {
	return fmt.Sprintf("%02d:%02d %s", s.Hour, s.Minute, s.Timezone)
}
