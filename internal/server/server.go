// Package server serves link reports over HTTP.
//
// Routes:
//
//	GET /courses/{courseID}/report?filter=all|errorsonly&format=html|csv|ods|xlsx|...
//	GET /healthz
//	GET /metrics
//
// Reports are rendered into a buffer before any header is written, so a
// render failure is reported as a 500 instead of a truncated body.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nao1215/linkvalidator/internal/metrics"
	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/nao1215/linkvalidator/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8080"

// shutdownTimeout bounds graceful shutdown after the serve context ends.
const shutdownTimeout = 10 * time.Second

// ReportBuilder builds the report of one course.
type ReportBuilder interface {
	Build(ctx context.Context, courseID string, filter model.Filter) (*model.Report, error)
}

// Server is the HTTP front end of the report builder.
type Server struct {
	builder      ReportBuilder
	render       report.Options
	metrics      *metrics.Metrics
	gatherer     prometheus.Gatherer
	logger       *slog.Logger
	addr         string
	buildTimeout time.Duration
	router       *chi.Mux
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithRenderOptions sets the writer options used for every response.
func WithRenderOptions(opts report.Options) Option {
	return func(s *Server) {
		s.render = opts
	}
}

// WithMetrics records request metrics in m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithBuildTimeout bounds each report build. When the timeout expires the
// partial report is served with the X-Report-Partial header set.
// Zero disables the timeout.
func WithBuildTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.buildTimeout = d
	}
}

// New creates a Server that builds reports with builder.
func New(builder ReportBuilder, opts ...Option) *Server {
	s := &Server{
		builder: builder,
		render:  report.DefaultOptions(),
		addr:    DefaultAddr,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/courses/{courseID}/report", s.handleReport)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	query := r.URL.Query()

	filter, err := model.ParseFilter(query.Get("filter"))
	if err != nil {
		s.fail(w, "", http.StatusBadRequest, err.Error())
		return
	}

	// "logformat" is the selector name of the legacy report page.
	formatName := query.Get("format")
	if formatName == "" {
		formatName = query.Get("logformat")
	}
	format := report.FormatHTML
	if formatName != "" {
		if format, err = report.ParseFormat(formatName); err != nil {
			s.fail(w, "", http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx := r.Context()
	if s.buildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.buildTimeout)
		defer cancel()
	}

	rep, err := s.builder.Build(ctx, courseID, filter)
	if err != nil {
		switch {
		case r.Context().Err() != nil:
			s.logger.Info("client went away during build", "course", courseID)
			return
		case errors.Is(err, model.ErrCourseNotFound):
			s.fail(w, format, http.StatusNotFound, "course not found")
			return
		case rep != nil && rep.Partial:
			s.logger.Warn("serving partial report", "course", courseID, "error", err)
		default:
			s.logger.Error("build report", "course", courseID, "error", err)
			s.fail(w, format, http.StatusInternalServerError, "report build failed")
			return
		}
	}

	var buf bytes.Buffer
	writer, err := report.NewWriter(format, &buf, s.render)
	if err != nil {
		s.fail(w, format, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := writer.Write(rep); err != nil {
		s.logger.Error("render report", "course", courseID, "format", format.String(), "error", err)
		s.fail(w, format, http.StatusInternalServerError, "report rendering failed")
		return
	}

	h := w.Header()
	h.Set("Content-Type", s.render.ContentType(format))
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	h.Set("X-Report-ID", rep.ID.String())
	if rep.Partial {
		h.Set("X-Report-Partial", "true")
	}
	if format.IsDownload() {
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(format, rep.GeneratedAt)))
		h.Set("Cache-Control", "must-revalidate")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("write response", "course", courseID, "error", err)
	}
	s.observe(format, http.StatusOK)
}

// fail writes a plain text error response.
func (s *Server) fail(w http.ResponseWriter, format report.Format, code int, msg string) {
	http.Error(w, msg, code)
	s.observe(format, code)
}

func (s *Server) observe(format report.Format, code int) {
	if s.metrics == nil {
		return
	}
	name := format.String()
	if name == "" {
		name = "unknown"
	}
	s.metrics.ObserveRequest(name, code)
}
