package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/linkvalidator/internal/extract"
	"github.com/nao1215/linkvalidator/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of probes run at once for one item.
const DefaultConcurrency = 8

// Prober probes a single URL. *probe.Prober satisfies it.
type Prober interface {
	Probe(ctx context.Context, url string) model.ProbeResult
}

// Validator produces ItemReports.
type Validator struct {
	prober      Prober
	concurrency int
	logger      *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithConcurrency bounds the probes run at once for one item.
func WithConcurrency(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New creates a Validator that probes with p.
func New(p Prober, opts ...Option) *Validator {
	v := &Validator{
		prober:      p,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Validate checks every URL of item and records the results in totals.
//
// Parameters:
//   - ctx: cancels the outstanding probes of the item
//   - item: the content item whose text fields are scanned
//   - totals: receives one record per URL once the whole item completes
//
// The returned report holds one entry per extracted URL in extraction
// order. Matches without an http(s) scheme are labelled "URL is invalid"
// without a network call. A field lookup failure is returned as a
// *model.LookupError. If ctx is cancelled the context error is returned,
// no report is produced and nothing is counted, not even probes that had
// already finished.
//
// Design decision: Every probe writes into a slot pre-allocated at its
// extraction index instead of appending under a lock. The entry order is
// fixed before any probe starts, so completion order never leaks into the
// report, and the totals are recorded from the slots after the wait so an
// abandoned item contributes nothing.
func (v *Validator) Validate(ctx context.Context, item model.ContentItem, totals *model.Totals) (*model.ItemReport, error) {
	fields, err := item.TextFields(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var lookupErr *model.LookupError
		if errors.As(err, &lookupErr) {
			return nil, err
		}
		return nil, model.NewLookupError(item.ID, err)
	}

	urls := extract.URLs(flatten(fields)...)
	slots := make([]model.ProbeResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)

	for i, u := range urls {
		if !extract.IsProbeable(u) {
			slots[i] = model.NewInvalidResult(u)
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := v.prober.Probe(gctx, u)
			// A probe that finished after cancellation is discarded.
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("validate item %s: %w", item.ID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("validate item %s: %w", item.ID, err)
	}

	report := model.NewItemReport(item, len(urls))
	for _, r := range slots {
		totals.Record(r)
		report.Add(r)
	}

	v.logger.Debug("item validated",
		"item", item.ID,
		"urls", len(urls),
		"errors", report.ErrorCount(),
	)

	return report, nil
}

// flatten returns the strings to scan, one per field, with HTML fields
// reduced to text.
func flatten(fields []model.TextField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		if f.IsHTML() {
			out[i] = extract.FlattenHTML(f.Value)
			continue
		}
		out[i] = f.Value
	}
	return out
}
