package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/linkvalidator/internal/config"
	applog "github.com/nao1215/linkvalidator/internal/log"
	"github.com/nao1215/linkvalidator/internal/metrics"
	"github.com/nao1215/linkvalidator/internal/pipeline"
	"github.com/nao1215/linkvalidator/internal/probe"
	"github.com/nao1215/linkvalidator/internal/store"
	"github.com/nao1215/linkvalidator/internal/validator"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// addStoreFlags registers the content store flags.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", store.DriverSQLite,
		"Content store driver (sqlite or postgres)")
	cmd.Flags().String("dsn", "",
		"SQLite file path or PostgreSQL connection string (default: XDG data directory)")
}

// addProbeFlags registers the probe policy flags.
func addProbeFlags(cmd *cobra.Command) {
	policy := probe.DefaultPolicy()
	cmd.Flags().Duration("connect-timeout", policy.ConnectTimeout,
		"Timeout for DNS, TCP connect and TLS handshake")
	cmd.Flags().DurationP("timeout", "t", policy.TotalTimeout,
		"Timeout for a whole probe including redirects")
	cmd.Flags().Bool("follow-redirects", policy.FollowRedirects,
		"Report the status of the final response of a redirect chain")
	cmd.Flags().Int("max-redirects", policy.MaxRedirects,
		"Maximum number of redirects followed per probe")
	cmd.Flags().String("user-agent", policy.UserAgent,
		"User-Agent header sent with every probe")
	cmd.Flags().Int("max-concurrent", policy.MaxConcurrent,
		"Maximum number of probes in flight")
	cmd.Flags().Float64("host-rate-limit", 0,
		"Probes per second per host (0 disables limiting)")
	cmd.Flags().Int("host-burst", policy.HostBurst,
		"Burst size of the per-host rate limiter")
	cmd.Flags().String("proxy", "",
		"Route probes through a SOCKS5 proxy (host:port)")
}

// addBuildFlags registers the report build flags.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().Int("item-concurrency", config.DefaultItemConcurrency,
		"Number of items of one course validated at once")
	cmd.Flags().Bool("abort-on-lookup-error", false,
		"Fail the build when an item's content cannot be loaded")
}

// addRenderFlags registers the flags shared by every output format.
func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().Int("rows-per-sheet", 0,
		"Data rows per spreadsheet page for ods and xlsx (default 65533)")
	cmd.Flags().Bool("show-empty", false,
		"Show items without links in html and text output")
	cmd.Flags().String("base-url", "",
		"Course site root used to link items in html output")
	cmd.Flags().String("csv-comma", "",
		`Separator of the csv format: "tab" or a single character (default tab)`)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getConfigFlag retrieves the config file flag from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// loadConfig builds the configuration of a command. Later sources override
// earlier ones: defaults, the config file, .env and LINKVALIDATOR_*
// variables, then flags set on the command line.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.ConfigFilePath = getConfigFlag(cmd)

	// If the user explicitly specified a config file path, error if not found.
	// If no path was specified, silently continue without a file.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}

	if getVerboseFlag(cmd) {
		cfg.Verbose = true
	}
	cfg.Courses = args

	return cfg, nil
}

// applyFlags copies the flags given on the command line into cfg. Flags
// left at their default do not override values from the file or the
// environment, and flags the command does not define are skipped.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || flags.Lookup(name) == nil || !flags.Changed(name) {
			return
		}
		err = apply()
	}

	set("filter", func() (e error) { cfg.Filter, e = flags.GetString("filter"); return })
	set("format", func() (e error) { cfg.Format, e = flags.GetString("format"); return })
	set("output", func() (e error) { cfg.ReportFile, e = flags.GetString("output"); return })
	set("batch", func() (e error) { cfg.BatchSize, e = flags.GetInt("batch"); return })

	set("store", func() (e error) { cfg.StoreDriver, e = flags.GetString("store"); return })
	set("dsn", func() (e error) { cfg.StoreDSN, e = flags.GetString("dsn"); return })

	set("connect-timeout", func() (e error) { cfg.ConnectTimeout, e = flags.GetDuration("connect-timeout"); return })
	set("timeout", func() (e error) { cfg.TotalTimeout, e = flags.GetDuration("timeout"); return })
	set("follow-redirects", func() (e error) { cfg.FollowRedirects, e = flags.GetBool("follow-redirects"); return })
	set("max-redirects", func() (e error) { cfg.MaxRedirects, e = flags.GetInt("max-redirects"); return })
	set("user-agent", func() (e error) { cfg.UserAgent, e = flags.GetString("user-agent"); return })
	set("max-concurrent", func() (e error) { cfg.MaxConcurrent, e = flags.GetInt("max-concurrent"); return })
	set("host-rate-limit", func() (e error) { cfg.HostRateLimit, e = flags.GetFloat64("host-rate-limit"); return })
	set("host-burst", func() (e error) { cfg.HostBurst, e = flags.GetInt("host-burst"); return })
	set("proxy", func() (e error) { cfg.ProxyAddress, e = flags.GetString("proxy"); return })

	set("item-concurrency", func() (e error) { cfg.ItemConcurrency, e = flags.GetInt("item-concurrency"); return })
	set("abort-on-lookup-error", func() (e error) { cfg.AbortOnLookupError, e = flags.GetBool("abort-on-lookup-error"); return })

	set("rows-per-sheet", func() (e error) { cfg.RowsPerSheet, e = flags.GetInt("rows-per-sheet"); return })
	set("show-empty", func() (e error) { cfg.ShowEmptyItems, e = flags.GetBool("show-empty"); return })
	set("base-url", func() (e error) { cfg.BaseURL, e = flags.GetString("base-url"); return })
	set("csv-comma", func() (e error) { cfg.CSVComma, e = flags.GetString("csv-comma"); return })

	set("listen", func() (e error) { cfg.ListenAddr, e = flags.GetString("listen"); return })
	set("build-timeout", func() (e error) { cfg.BuildTimeout, e = flags.GetDuration("build-timeout"); return })

	return err
}

// setupLogger creates a structured logger that redacts credentials.
func setupLogger(verbose bool) *slog.Logger {
	return applog.NewSecureLogger(os.Stderr, verbose)
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// openStore opens the content store described by cfg.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	s, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open content store: %w", err)
	}
	logger.Info("content store opened", "driver", cfg.StoreDriver, "dsn", cfg.StoreDSN)
	return s, nil
}

// newBuilder wires the prober, the validator and the report builder.
// m may be nil when no metrics are collected.
func newBuilder(cfg *config.Config, source pipeline.ContentSource, logger *slog.Logger, m *metrics.Metrics) (*pipeline.Builder, error) {
	probeOpts := []probe.Option{probe.WithLogger(logger)}
	buildOpts := []pipeline.BuilderOption{
		pipeline.WithBuilderLogger(logger),
		pipeline.WithBuilderItemConcurrency(cfg.ItemConcurrency),
		pipeline.WithBuilderAbortOnLookupError(cfg.AbortOnLookupError),
	}
	if m != nil {
		probeOpts = append(probeOpts, probe.WithObserver(m))
		buildOpts = append(buildOpts, pipeline.WithBuildObserver(m))
	}

	prober, err := probe.New(cfg.ProbePolicy(), probeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create prober: %w", err)
	}

	v := validator.New(prober, validator.WithLogger(logger))
	return pipeline.NewBuilder(source, v, buildOpts...), nil
}
