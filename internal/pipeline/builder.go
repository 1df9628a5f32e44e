package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
)

// BuildObserver is notified of every finished build, partial ones included.
type BuildObserver interface {
	ObserveBuild(report *model.Report, elapsed time.Duration)
}

// Builder builds link reports for courses.
type Builder struct {
	source             ContentSource
	validator          ItemValidator
	itemConcurrency    int
	abortOnLookupError bool
	observer           BuildObserver
	logger             *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBuilderLogger sets the logger passed to every pipeline and step.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithBuilderItemConcurrency sets how many items of one course are
// validated at once. The default is 1.
func WithBuilderItemConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.itemConcurrency = n
		}
	}
}

// WithBuilderAbortOnLookupError makes an unresolvable item fail the build.
// By default such items are skipped and logged.
func WithBuilderAbortOnLookupError(abort bool) BuilderOption {
	return func(b *Builder) {
		b.abortOnLookupError = abort
	}
}

// WithBuildObserver registers an observer for finished builds.
func WithBuildObserver(o BuildObserver) BuilderOption {
	return func(b *Builder) {
		b.observer = o
	}
}

// NewBuilder creates a Builder reading courses from source and validating
// items with v.
func NewBuilder(source ContentSource, v ItemValidator, opts ...BuilderOption) *Builder {
	b := &Builder{
		source:          source,
		validator:       v,
		itemConcurrency: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Build builds the report of one course.
//
// On success the complete report is returned. If ctx is cancelled after
// the course is loaded the partial report is returned together with the
// context error; it holds only the items whose validation finished. Any other failure (unknown course, aborting lookup error) returns
// a nil report.
func (b *Builder) Build(ctx context.Context, courseID string, filter model.Filter) (*model.Report, error) {
	start := time.Now()
	report := model.NewReport(courseID, filter)
	totals := &model.Totals{}

	validate := NewValidateStep(b.validator, totals,
		WithItemConcurrency(b.itemConcurrency),
		WithAbortOnLookupError(b.abortOnLookupError),
		WithValidateLogger(b.logger),
	)
	collect := New(WithLogger(b.logger))
	collect.AddSteps(NewLoadStep(b.source), validate)

	finish := New(WithLogger(b.logger))
	finish.AddSteps(
		NewFilterStep(),
		NewSummarizeStep(totals),
	)

	err := collect.Execute(ctx, report)
	if err != nil && !report.Partial {
		return nil, err
	}
	// Cancelled between load and validate: the loaded rows were never
	// checked and must not look like clean items.
	if report.Partial && !validate.Started() {
		dropItemRows(report)
	}

	// Filtering and summarizing only reshape collected data; they run on
	// partial reports too.
	if finishErr := finish.Execute(context.WithoutCancel(ctx), report); finishErr != nil {
		return nil, finishErr
	}

	elapsed := time.Since(start)
	b.logger.Info("report built",
		"course", courseID,
		"report_id", report.ID.String(),
		"filter", filter.String(),
		"total_probed", report.Totals.TotalProbed,
		"total_errors", report.Totals.TotalErrors,
		"partial", report.Partial,
		"elapsed", elapsed,
	)
	if b.observer != nil {
		b.observer.ObserveBuild(report, elapsed)
	}

	return report, err
}
