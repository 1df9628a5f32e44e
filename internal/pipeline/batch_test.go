package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBuilder returns an empty report per course, or an error for ids
// listed in fail.
type fakeBuilder struct {
	fail   map[string]error
	delay  time.Duration
	active atomic.Int64
	peak   atomic.Int64
}

func (f *fakeBuilder) Build(ctx context.Context, courseID string, filter model.Filter) (*model.Report, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.fail[courseID]; ok {
		return nil, err
	}
	return model.NewReport(courseID, filter), nil
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(&fakeBuilder{}, model.FilterAll)

		if bp.concurrency != 2 {
			t.Errorf("expected default concurrency 2, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(&fakeBuilder{}, model.FilterAll, WithConcurrency(0))

		if bp.concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", bp.concurrency)
		}
	})
}

func TestProcessBatch(t *testing.T) {
	t.Parallel()

	buildErr := errors.New("store offline")
	fb := &fakeBuilder{
		fail:  map[string]error{"b": buildErr},
		delay: 10 * time.Millisecond,
	}
	bp := NewBatchProcessor(fb, model.FilterErrorsOnly, WithConcurrency(2))

	results, err := bp.ProcessBatch(context.Background(), []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, id := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, id, results[i].CourseID)
	}
	assert.ErrorIs(t, results[1].Err, buildErr)
	assert.Nil(t, results[1].Report)
	assert.Equal(t, model.FilterErrorsOnly, results[0].Report.Filter)
	assert.LessOrEqual(t, fb.peak.Load(), int64(2))
}

func TestProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(&fakeBuilder{}, model.FilterAll)

	var mu sync.Mutex
	seen := make(map[int]string)
	err := bp.ProcessBatchWithCallback(context.Background(), []string{"x", "y", "z"}, func(r BatchResult, i int) {
		mu.Lock()
		defer mu.Unlock()
		seen[i] = r.CourseID
	})
	require.NoError(t, err)

	assert.Equal(t, map[int]string{0: "x", 1: "y", 2: "z"}, seen)
}

func TestProcessBatchCancelled(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(&fakeBuilder{delay: time.Second}, model.FilterAll, WithConcurrency(1))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	results, err := bp.ProcessBatch(ctx, []string{"a", "b"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Error(t, r.Err)
	}
}
