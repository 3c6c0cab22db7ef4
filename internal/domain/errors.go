package domain

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned when a manual trigger arrives while a
// scheduled or manual ingestion run is still executing
var ErrRunInProgress = errors.New("an ingestion run is already in progress")

// FetchError indicates that an investor's source page could not be reached
// or did not contain the expected structure. It is a per-investor failure:
// the runner records it and continues with the remaining investors
type FetchError struct {
	Investor string
	URL      string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch data for %s (%s): %v", e.Investor, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ValidationError indicates rejected schedule input. The stored schedule is
// left unchanged when one is returned
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ReconcileError indicates that applying one investor's changes failed and
// that investor's transaction was rolled back. Other investors' committed
// transactions are unaffected
type ReconcileError struct {
	Investor string
	Err      error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("failed to reconcile %s: %v", e.Investor, e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}
