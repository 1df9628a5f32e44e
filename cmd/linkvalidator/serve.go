package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/linkvalidator/internal/config"
	"github.com/nao1215/linkvalidator/internal/metrics"
	"github.com/nao1215/linkvalidator/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve link reports over HTTP",
		Long: `Serve starts an HTTP server that builds link reports on request.

Routes:
  GET /courses/{courseID}/report?filter=all|errorsonly&format=html
  GET /healthz
  GET /metrics

Download formats (csv, tsv, ods, xlsx) are sent as attachments. A build
that exceeds --build-timeout is served as a partial report.

Examples:
  # Listen on the default address
  linkvalidator serve

  # Listen on all interfaces and link items to the course site
  linkvalidator serve -l :8080 --base-url https://lms.example.edu`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", server.DefaultAddr,
		"HTTP listen address")
	cmd.Flags().Duration("build-timeout", config.DefaultBuildTimeout,
		"Upper bound of one report build (0 disables it)")

	addBuildFlags(cmd)
	addProbeFlags(cmd)
	addStoreFlags(cmd)
	addRenderFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runServe(ctx, cfg, logger, cmd.OutOrStdout())
}

// newRegistry returns a registry with the runtime collectors and the
// linkvalidator metrics registered.
func newRegistry() (*prometheus.Registry, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.New(reg)
}

// newServer wires the builder and the metrics into an HTTP server.
func newServer(cfg *config.Config, builder server.ReportBuilder, logger *slog.Logger, reg *prometheus.Registry, m *metrics.Metrics) *server.Server {
	return server.New(builder,
		server.WithLogger(logger),
		server.WithAddr(cfg.ListenAddr),
		server.WithRenderOptions(cfg.RenderOptions(getVersion())),
		server.WithMetrics(m, reg),
		server.WithBuildTimeout(cfg.BuildTimeout),
	)
}

// runServe serves reports until ctx is cancelled.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, status io.Writer) error {
	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	reg, m := newRegistry()

	builder, err := newBuilder(cfg, s, logger, m)
	if err != nil {
		return err
	}

	srv := newServer(cfg, builder, logger, reg, m)
	fmt.Fprintf(status, "Serving link reports on http://%s\n", cfg.ListenAddr)

	return srv.ListenAndServe(ctx)
}
