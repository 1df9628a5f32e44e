package model

import "sync/atomic"

// Totals accumulates probe counts across a whole report build.
// It is safe for concurrent use; increments are never lost.
type Totals struct {
	probed atomic.Int64
	errors atomic.Int64
}

// Record counts one probe attempt.
func (t *Totals) Record(r ProbeResult) {
	t.probed.Add(1)
	if r.IsError() {
		t.errors.Add(1)
	}
}

// Snapshot returns the current counter values.
func (t *Totals) Snapshot() TotalsSnapshot {
	return TotalsSnapshot{
		TotalProbed: int(t.probed.Load()),
		TotalErrors: int(t.errors.Load()),
	}
}

// TotalsSnapshot is a point-in-time copy of Totals.
type TotalsSnapshot struct {
	// TotalProbed counts every probe attempt, including sentinel failures.
	TotalProbed int `json:"total_probed"`

	// TotalErrors counts every attempt whose status is not 200.
	TotalErrors int `json:"total_errors"`
}
