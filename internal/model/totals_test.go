package model

import (
	"sync"
	"testing"
)

func TestTotalsConcurrentRecord(t *testing.T) {
	t.Parallel()

	var totals Totals
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code := 200
			if i%4 == 0 {
				code = 404
			}
			totals.Record(ProbeResult{StatusCode: code})
		}()
	}
	wg.Wait()

	snap := totals.Snapshot()
	if snap.TotalProbed != 100 {
		t.Errorf("probed = %d, expected 100", snap.TotalProbed)
	}
	if snap.TotalErrors != 25 {
		t.Errorf("errors = %d, expected 25", snap.TotalErrors)
	}
}

func TestTotalsCountsSentinel(t *testing.T) {
	t.Parallel()

	var totals Totals
	totals.Record(NewInvalidResult("example.com/x"))
	totals.Record(ProbeResult{StatusCode: 0, StatusLabel: LabelUnknown})

	expected := TotalsSnapshot{TotalProbed: 2, TotalErrors: 2}
	if got := totals.Snapshot(); got != expected {
		t.Errorf("got %+v, expected %+v", got, expected)
	}
}
