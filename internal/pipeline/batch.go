package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
	"golang.org/x/sync/errgroup"
)

// ReportBuilder builds the report of one course. *Builder satisfies it.
type ReportBuilder interface {
	Build(ctx context.Context, courseID string, filter model.Filter) (*model.Report, error)
}

// BatchResult is the outcome of one course build in a batch.
type BatchResult struct {
	// CourseID is the requested course.
	CourseID string

	// Report is the built report. It may be partial, or nil when Err is a
	// hard failure.
	Report *model.Report

	// Err is the build error, if any.
	Err error
}

// BatchProcessor builds reports for several courses concurrently.
type BatchProcessor struct {
	// builder builds each course report.
	builder ReportBuilder

	// filter is applied to every report of the batch.
	filter model.Filter

	// concurrency is the maximum number of concurrent builds.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent builds.
// Default is 2 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(builder ReportBuilder, filter model.Filter, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		builder:     builder,
		filter:      filter,
		concurrency: 2,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch builds the reports of all courses. Results are returned in
// the order of courseIDs regardless of completion order. A failed build
// does not stop the others; its error is recorded in its result.
//
// The returned error is only non-nil if ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, courseIDs []string) ([]BatchResult, error) {
	bp.logger.Info("starting batch processing",
		"total_courses", len(courseIDs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results to keep the input order; each goroutine writes
	// only its own index.
	results := make([]BatchResult, len(courseIDs))

	err := bp.ProcessBatchWithCallback(ctx, courseIDs, func(result BatchResult, index int) {
		results[index] = result
	})

	bp.logger.Info("batch processing complete",
		"total_courses", len(courseIDs),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

// ProcessBatchWithCallback builds the reports of all courses and calls
// callback for each finished build. The callback is called from the
// goroutine that ran the build, so it must be safe for concurrent use if
// it touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	courseIDs []string,
	callback func(result BatchResult, index int),
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, courseID := range courseIDs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				callback(BatchResult{CourseID: courseID, Err: gctx.Err()}, i)
				return nil
			default:
			}

			bp.logger.Info("building report",
				"course", courseID,
				"index", i+1,
				"total", len(courseIDs),
			)

			report, err := bp.builder.Build(gctx, courseID, bp.filter)
			if err != nil {
				bp.logger.Warn("build failed",
					"course", courseID,
					"error", err,
				)
			}

			callback(BatchResult{CourseID: courseID, Report: report, Err: err}, i)

			// Build errors stay in the result; other builds continue.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
