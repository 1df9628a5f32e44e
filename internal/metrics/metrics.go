// Package metrics exposes Prometheus metrics for probes, report builds and
// the HTTP report endpoint.
package metrics

import (
	"strconv"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the namespace for all linkvalidator metrics.
	Namespace = "linkvalidator"
)

// Metrics holds all Prometheus metrics. It implements probe.Observer and
// pipeline.BuildObserver.
type Metrics struct {
	// Probe metrics
	ProbesTotal          *prometheus.CounterVec
	ProbeDurationSeconds *prometheus.HistogramVec

	// Build metrics
	BuildsTotal          *prometheus.CounterVec
	BuildDurationSeconds prometheus.Histogram
	ReportLinks          *prometheus.GaugeVec
	SkippedItemsTotal    prometheus.Counter

	// HTTP metrics
	RequestsTotal *prometheus.CounterVec
}

// New creates and registers all metrics with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	m := &Metrics{}

	m.initProbeMetrics(factory)
	m.initBuildMetrics(factory)
	m.initHTTPMetrics(factory)

	return m
}

func (m *Metrics) initProbeMetrics(factory promauto.Factory) {
	m.ProbesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "probe",
			Name:      "results_total",
			Help:      "Total number of probe results by status class and failure kind",
		},
		[]string{"class", "failure"},
	)

	m.ProbeDurationSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "probe",
			Name:      "duration_seconds",
			Help:      "Duration of link probes in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"class"},
	)
}

func (m *Metrics) initBuildMetrics(factory promauto.Factory) {
	m.BuildsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "report",
			Name:      "builds_total",
			Help:      "Total number of report builds by filter and completeness",
		},
		[]string{"filter", "partial"},
	)

	m.BuildDurationSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "report",
			Name:      "build_duration_seconds",
			Help:      "Duration of report builds in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s to ~3.4min
		},
	)

	m.ReportLinks = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "report",
			Name:      "links",
			Help:      "Links probed and errors found by the last build of a course",
		},
		[]string{"course", "kind"},
	)

	m.SkippedItemsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "report",
			Name:      "skipped_items_total",
			Help:      "Total number of items skipped because their content could not be loaded",
		},
	)
}

func (m *Metrics) initHTTPMetrics(factory promauto.Factory) {
	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of report requests by format and status code",
		},
		[]string{"format", "code"},
	)
}

// ObserveProbe records one probe result.
func (m *Metrics) ObserveProbe(result model.ProbeResult) {
	class := string(result.Class())
	m.ProbesTotal.WithLabelValues(class, failureLabel(result.Failure)).Inc()
	if result.Probed() {
		m.ProbeDurationSeconds.WithLabelValues(class).Observe(result.Elapsed.Seconds())
	}
}

// ObserveBuild records one finished report build.
func (m *Metrics) ObserveBuild(report *model.Report, elapsed time.Duration) {
	m.BuildsTotal.WithLabelValues(report.Filter.String(), strconv.FormatBool(report.Partial)).Inc()
	m.BuildDurationSeconds.Observe(elapsed.Seconds())
	m.ReportLinks.WithLabelValues(report.CourseID, "probed").Set(float64(report.Totals.TotalProbed))
	m.ReportLinks.WithLabelValues(report.CourseID, "errors").Set(float64(report.Totals.TotalErrors))
	m.SkippedItemsTotal.Add(float64(len(report.SkippedItems)))
}

// ObserveRequest records one served report request.
func (m *Metrics) ObserveRequest(format string, code int) {
	m.RequestsTotal.WithLabelValues(format, strconv.Itoa(code)).Inc()
}

func failureLabel(f model.FailureKind) string {
	if f == model.FailureNone {
		return "none"
	}
	return string(f)
}
