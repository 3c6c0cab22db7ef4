package domain

import "time"

// RunStatus is the per-investor outcome of an ingestion run
type RunStatus string

const (
	RunStatusOK     RunStatus = "ok"
	RunStatusFailed RunStatus = "failed"
)

// InvestorResult is one investor's entry in a run summary
type InvestorResult struct {
	Investor InvestorRef
	Status   RunStatus
	Result   *ReconcileResult // nil when the investor failed
	Err      error            // nil when the investor succeeded
}

// RunSummary aggregates the outcome of one ingestion run. A run never
// aborts because of a single investor's failure; every failure is captured
// here instead
type RunSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []InvestorResult
}

// Failed returns the results of investors that did not reconcile
func (s *RunSummary) Failed() []InvestorResult {
	var failed []InvestorResult
	for _, r := range s.Results {
		if r.Status == RunStatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}
