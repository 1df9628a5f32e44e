package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/linkvalidator/internal/metrics"
	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/nao1215/linkvalidator/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBuilder returns a fixed report or error and records its inputs.
type fakeBuilder struct {
	mu      sync.Mutex
	calls   []string
	filters []model.Filter
	report  func(courseID string, filter model.Filter) *model.Report
	err     error
	block   bool
}

func (f *fakeBuilder) Build(ctx context.Context, courseID string, filter model.Filter) (*model.Report, error) {
	f.mu.Lock()
	f.calls = append(f.calls, courseID)
	f.filters = append(f.filters, filter)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		rep := f.report(courseID, filter)
		rep.Partial = true
		return rep, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.report(courseID, filter), nil
}

func sampleReport(courseID string, filter model.Filter) *model.Report {
	rep := model.NewReport(courseID, filter)
	rep.CourseName = "Sample"
	rep.Rows = []model.Row{
		{Kind: model.RowSection, SectionID: "1", SectionTitle: "Week 1"},
		{Kind: model.RowItem, SectionID: "1", SectionTitle: "Week 1", Item: &model.ItemReport{
			Item: model.ContentItem{ID: "5", Name: "Reading", ModuleType: "page", Visible: true, SectionID: "1"},
			Results: []model.ProbeResult{
				{URL: "https://example.com/gone", StatusCode: 404, StatusLabel: "Not Found"},
			},
		}},
	}
	rep.Totals = model.TotalsSnapshot{TotalProbed: 2, TotalErrors: 1}
	return rep
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleReport(t *testing.T) {
	t.Parallel()

	t.Run("renders html by default", func(t *testing.T) {
		t.Parallel()

		b := &fakeBuilder{report: sampleReport}
		rec := get(t, New(b).Handler(), "/courses/7/report")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Header().Get("X-Report-ID"))
		assert.Empty(t, rec.Header().Get("X-Report-Partial"))

		doc, err := goquery.NewDocumentFromReader(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, "Total links found: 2", doc.Find("p.total").Text())
		assert.Equal(t, []string{"7"}, b.calls)
		assert.Equal(t, []model.Filter{model.FilterAll}, b.filters)
	})

	t.Run("passes the filter", func(t *testing.T) {
		t.Parallel()

		b := &fakeBuilder{report: sampleReport}
		rec := get(t, New(b).Handler(), "/courses/7/report?filter=errorsonly")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []model.Filter{model.FilterErrorsOnly}, b.filters)
	})

	t.Run("serves downloads as attachments", func(t *testing.T) {
		t.Parallel()

		b := &fakeBuilder{report: sampleReport}
		rec := get(t, New(b).Handler(), "/courses/7/report?logformat=downloadascsv")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/tab-separated-values; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), `attachment; filename="link_validator_report_`))
		assert.Contains(t, rec.Body.String(), "Week 1\tReading\thttps://example.com/gone\t404 - Not Found\n")
	})

	t.Run("serves comma separated csv as text/csv", func(t *testing.T) {
		t.Parallel()

		opts := report.DefaultOptions()
		opts.CSVComma = ','
		b := &fakeBuilder{report: sampleReport}
		rec := get(t, New(b, WithRenderOptions(opts)).Handler(), "/courses/7/report?logformat=downloadascsv")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "Week 1,Reading,https://example.com/gone,404 - Not Found\n")
	})

	t.Run("rejects bad parameters", func(t *testing.T) {
		t.Parallel()

		b := &fakeBuilder{report: sampleReport}
		h := New(b).Handler()

		assert.Equal(t, http.StatusBadRequest, get(t, h, "/courses/7/report?filter=some").Code)
		assert.Equal(t, http.StatusBadRequest, get(t, h, "/courses/7/report?format=pdf").Code)
		assert.Empty(t, b.calls)
	})

	t.Run("maps unknown course to 404", func(t *testing.T) {
		t.Parallel()

		b := &fakeBuilder{err: model.ErrCourseNotFound}
		rec := get(t, New(b).Handler(), "/courses/404/report")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("maps build failures to 500", func(t *testing.T) {
		t.Parallel()

		b := &fakeBuilder{err: errors.New("database is locked")}
		rec := get(t, New(b).Handler(), "/courses/7/report")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "locked")
	})

	t.Run("serves partial report after build timeout", func(t *testing.T) {
		t.Parallel()

		b := &fakeBuilder{report: sampleReport, block: true}
		rec := get(t, New(b, WithBuildTimeout(20*time.Millisecond)).Handler(), "/courses/7/report?format=json")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "true", rec.Header().Get("X-Report-Partial"))
		assert.Contains(t, rec.Body.String(), `"partial": true`)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h := New(&fakeBuilder{report: sampleReport}, WithMetrics(m, reg)).Handler()

	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	require.Equal(t, http.StatusOK, get(t, h, "/courses/1/report?format=xls").Code)
	require.Equal(t, http.StatusBadRequest, get(t, h, "/courses/1/report?filter=nope").Code)

	rec = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `linkvalidator_http_requests_total{code="200",format="xlsx"} 1`)
	assert.Contains(t, body, `linkvalidator_http_requests_total{code="400",format="unknown"} 1`)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := New(&fakeBuilder{report: sampleReport}, WithAddr("127.0.0.1:0"))

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
