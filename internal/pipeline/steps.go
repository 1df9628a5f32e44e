package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/linkvalidator/internal/model"
	"golang.org/x/sync/errgroup"
)

// ContentSource supplies course content. *store.Store satisfies it.
type ContentSource interface {
	// Course returns the course with its sections and items in store order.
	// A missing course is reported with model.ErrCourseNotFound.
	Course(ctx context.Context, courseID string) (*model.Course, error)
}

// ItemValidator validates one content item. *validator.Validator
// satisfies it.
type ItemValidator interface {
	Validate(ctx context.Context, item model.ContentItem, totals *model.Totals) (*model.ItemReport, error)
}

// LoadStep fetches the course and lays out the report rows.
type LoadStep struct {
	source ContentSource
}

// NewLoadStep creates a LoadStep reading from source.
func NewLoadStep(source ContentSource) *LoadStep {
	return &LoadStep{source: source}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do fetches the course and emits one section header per section, even for
// empty sections, followed by one item row per item. Item rows start with
// an empty ItemReport that the validate step replaces.
func (s *LoadStep) Do(ctx context.Context, report *model.Report) error {
	course, err := s.source.Course(ctx, report.CourseID)
	if err != nil {
		return fmt.Errorf("load course %s: %w", report.CourseID, err)
	}

	report.CourseName = course.Name
	report.Rows = make([]model.Row, 0, len(course.Sections)+course.ItemCount())

	for _, section := range course.Sections {
		report.Rows = append(report.Rows, model.Row{
			Kind:         model.RowSection,
			SectionID:    section.ID,
			SectionTitle: section.Title,
		})
		for _, item := range section.Items {
			report.Rows = append(report.Rows, model.Row{
				Kind:         model.RowItem,
				SectionID:    section.ID,
				SectionTitle: section.Title,
				Item:         model.NewItemReport(item, 0),
			})
		}
	}

	return nil
}

// ValidateStep validates every item row of the report.
type ValidateStep struct {
	validator          ItemValidator
	totals             *model.Totals
	concurrency        int
	abortOnLookupError bool
	logger             *slog.Logger

	// started is set once Do runs; until then item rows are placeholders.
	started bool
}

// ValidateStepOption configures a ValidateStep.
type ValidateStepOption func(*ValidateStep)

// WithItemConcurrency sets how many items are validated at once.
func WithItemConcurrency(n int) ValidateStepOption {
	return func(s *ValidateStep) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithAbortOnLookupError makes an unresolvable item fail the whole build
// instead of being skipped.
func WithAbortOnLookupError(abort bool) ValidateStepOption {
	return func(s *ValidateStep) {
		s.abortOnLookupError = abort
	}
}

// WithValidateLogger sets a custom logger for the validate step.
func WithValidateLogger(logger *slog.Logger) ValidateStepOption {
	return func(s *ValidateStep) {
		s.logger = logger
	}
}

// NewValidateStep creates a ValidateStep that records probes in totals.
func NewValidateStep(v ItemValidator, totals *model.Totals, opts ...ValidateStepOption) *ValidateStep {
	s := &ValidateStep{
		validator:   v,
		totals:      totals,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do validates the items and writes each ItemReport into its row.
//
// Items whose content cannot be loaded are dropped and listed in
// report.SkippedItems, unless the step aborts on lookup errors. On
// cancellation the rows of unfinished items are dropped, the report is
// marked partial and the context error is returned.
func (s *ValidateStep) Do(ctx context.Context, report *model.Report) error {
	s.started = true
	done := make([]bool, len(report.Rows))
	skipped := make([]bool, len(report.Rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range report.Rows {
		if report.Rows[i].Kind != model.RowItem {
			continue
		}
		item := report.Rows[i].Item.Item

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			ir, err := s.validator.Validate(gctx, item, s.totals)
			if err != nil {
				var lookupErr *model.LookupError
				if errors.As(err, &lookupErr) && !s.abortOnLookupError {
					s.logger.Warn("skipping item",
						"course", report.CourseID,
						"item", item.ID,
						"error", err,
					)
					skipped[i] = true
					return nil
				}
				return err
			}

			// Each goroutine writes only its own row.
			report.Rows[i].Item = ir
			done[i] = true
			return nil
		})
	}

	waitErr := g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		report.Rows = keepRows(report, func(i int) bool { return done[i] })
		report.Partial = true
		return ctxErr
	}
	if waitErr != nil {
		return waitErr
	}

	for i, row := range report.Rows {
		if skipped[i] {
			report.SkippedItems = append(report.SkippedItems, row.Item.Item.ID)
		}
	}
	report.Rows = keepRows(report, func(i int) bool { return !skipped[i] })

	return nil
}

// Started reports whether Do has been called.
func (s *ValidateStep) Started() bool {
	return s.started
}

// dropItemRows removes every item row, keeping the section headers.
func dropItemRows(report *model.Report) {
	report.Rows = keepRows(report, func(int) bool { return false })
}

// keepRows returns the section headers and the item rows for which keep
// returns true.
func keepRows(report *model.Report, keep func(i int) bool) []model.Row {
	rows := make([]model.Row, 0, len(report.Rows))
	for i, row := range report.Rows {
		if row.Kind == model.RowSection || keep(i) {
			rows = append(rows, row)
		}
	}
	return rows
}

// FilterStep removes the entries the report filter does not keep.
type FilterStep struct{}

// NewFilterStep creates a FilterStep.
func NewFilterStep() *FilterStep {
	return &FilterStep{}
}

// Name returns the step name.
func (s *FilterStep) Name() string {
	return "filter"
}

// Do applies report.Filter to every item row. Items are never removed,
// only entries; totals are untouched.
func (s *FilterStep) Do(_ context.Context, report *model.Report) error {
	for _, row := range report.Rows {
		if row.Kind == model.RowItem && row.Item != nil {
			row.Item.Apply(report.Filter)
		}
	}
	return nil
}

// SummarizeStep copies the running totals into the report.
type SummarizeStep struct {
	totals *model.Totals
}

// NewSummarizeStep creates a SummarizeStep reading totals.
func NewSummarizeStep(totals *model.Totals) *SummarizeStep {
	return &SummarizeStep{totals: totals}
}

// Name returns the step name.
func (s *SummarizeStep) Name() string {
	return "summarize"
}

// Do snapshots the totals.
func (s *SummarizeStep) Do(_ context.Context, report *model.Report) error {
	report.Totals = s.totals.Snapshot()
	return nil
}
