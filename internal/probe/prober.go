package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Observer is notified of every finished probe. It must be safe for
// concurrent use.
type Observer interface {
	ObserveProbe(result model.ProbeResult)
}

// Prober checks URLs under a fixed Policy.
type Prober struct {
	policy   Policy
	client   *http.Client
	sem      *semaphore.Weighted
	limiter  *hostLimiter
	flight   singleflight.Group
	observer Observer
	logger   *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithLogger sets the logger used for per-probe debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// WithObserver registers an observer that sees every probe result.
func WithObserver(o Observer) Option {
	return func(p *Prober) {
		p.observer = o
	}
}

// WithHTTPClient replaces the client built from the policy. Redirect and
// timeout settings of the policy are not applied to a replaced client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Prober) {
		p.client = c
	}
}

// New creates a Prober. It returns an error if the policy is invalid.
func New(policy Policy, opts ...Option) (*Prober, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid probe policy: %w", err)
	}

	p := &Prober{
		policy:  policy,
		sem:     semaphore.NewWeighted(int64(policy.MaxConcurrent)),
		limiter: newHostLimiter(policy.HostRateLimit, policy.HostBurst),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		client, err := newHTTPClient(policy)
		if err != nil {
			return nil, err
		}
		p.client = client
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p, nil
}

// Policy returns the policy the prober was built with.
func (p *Prober) Policy() Policy {
	return p.policy
}

// Probe checks rawURL and classifies the outcome. It never returns an
// error: every failure is a result with status 0.
//
// Concurrent probes of the same URL share one request. If the shared
// request was cancelled by another caller while ctx is still live, the URL
// is probed again for this caller.
//
// Design decision: Duplicate URLs are collapsed with singleflight rather
// than a result cache. A course often links the same page from many items
// at once; sharing the in-flight request spares the target host while a
// later probe still sees the current state of the link.
func (p *Prober) Probe(ctx context.Context, rawURL string) model.ProbeResult {
	if !isPlausibleURL(rawURL) {
		result := model.ProbeResult{
			URL:         rawURL,
			StatusCode:  0,
			StatusLabel: model.LabelNotAString,
			Failure:     model.FailureInvalidURL,
		}
		p.observe(result)
		return result
	}

	v, _, _ := p.flight.Do(rawURL, func() (any, error) { //nolint:errcheck // probe never fails
		return p.probe(ctx, rawURL), nil
	})
	result, _ := v.(model.ProbeResult)

	if result.Failure == model.FailureCanceled && ctx.Err() == nil {
		result = p.probe(ctx, rawURL)
	}

	p.observe(result)
	return result
}

// probe performs the request for one URL.
func (p *Prober) probe(ctx context.Context, rawURL string) model.ProbeResult {
	start := time.Now()
	result := model.ProbeResult{URL: rawURL}

	fail := func(err error) model.ProbeResult {
		result.StatusCode = 0
		result.StatusLabel = model.LabelUnknown
		result.Failure = classifyError(err)
		result.Elapsed = time.Since(start)
		p.logger.Debug("probe failed",
			"url", rawURL,
			"failure", string(result.Failure),
			"error", err,
		)
		return result
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fail(err)
	}
	defer p.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fail(err)
	}

	if err := p.limiter.Wait(ctx, req.URL.Hostname()); err != nil {
		return fail(err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fail(err)
	}
	// HEAD responses carry no body, but the connection is only reused
	// once the body is drained and closed.
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // best effort drain
	_ = resp.Body.Close()                  //nolint:errcheck // read-only

	result.StatusCode = resp.StatusCode
	result.StatusLabel = StatusLabel(resp.StatusCode)
	result.Elapsed = time.Since(start)

	p.logger.Debug("probe completed",
		"url", rawURL,
		"status", resp.StatusCode,
		"elapsed", result.Elapsed,
	)

	return result
}

func (p *Prober) observe(result model.ProbeResult) {
	if p.observer != nil {
		p.observer.ObserveProbe(result)
	}
}

// isPlausibleURL re-checks what the extractor already filtered: a non-empty
// absolute http(s) URL with a host.
func isPlausibleURL(raw string) bool {
	if strings.TrimSpace(raw) == "" || strings.ContainsAny(raw, " \t\r\n") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// IsCanceled reports whether the result was cut short by cancellation.
func IsCanceled(result model.ProbeResult) bool {
	return result.Failure == model.FailureCanceled
}
