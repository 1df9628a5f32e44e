package metrics

import (
	"testing"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveProbe(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.ObserveProbe(model.ProbeResult{URL: "https://a.example/", StatusCode: 200, StatusLabel: "OK", Elapsed: 20 * time.Millisecond})
	m.ObserveProbe(model.ProbeResult{URL: "https://b.example/", StatusCode: 404, StatusLabel: "Not Found"})
	m.ObserveProbe(model.ProbeResult{URL: "https://c.example/", StatusLabel: model.LabelUnknown, Failure: model.FailureTimeout})
	m.ObserveProbe(model.NewInvalidResult("www.example.org"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("2xx", "none")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("4xx", "none")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("unresolved", "timeout")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("unresolved", "invalid_url")), 0)

	// Invalid URLs never reach the network and are not timed.
	assert.Equal(t, 3, testutil.CollectAndCount(m.ProbeDurationSeconds))
}

func TestObserveBuild(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	report := model.NewReport("42", model.FilterErrorsOnly)
	report.Totals = model.TotalsSnapshot{TotalProbed: 10, TotalErrors: 3}
	report.SkippedItems = []string{"7"}
	report.Partial = true

	m.ObserveBuild(report, 2*time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(m.BuildsTotal.WithLabelValues("errorsonly", "true")), 0)
	assert.InDelta(t, 10, testutil.ToFloat64(m.ReportLinks.WithLabelValues("42", "probed")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.ReportLinks.WithLabelValues("42", "errors")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SkippedItemsTotal), 0)
}

func TestObserveRequest(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.ObserveRequest("html", 200)
	m.ObserveRequest("html", 200)
	m.ObserveRequest("csv", 404)

	assert.InDelta(t, 2, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("html", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("csv", "404")), 0)
}

func TestNewRegistersOnce(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) })
}
