package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nao1215/linkvalidator/internal/config"
	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/nao1215/linkvalidator/internal/pipeline"
	"github.com/nao1215/linkvalidator/internal/report"
	"github.com/spf13/cobra"
)

// errBinaryToStdout is returned when several spreadsheets would be
// concatenated on stdout.
var errBinaryToStdout = errors.New("ods and xlsx reports of several courses need --output")

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <course-id>...",
		Short: "Check the links of one or more courses",
		Long: `Report builds a link report for each course given as argument.

Every text field of every activity and resource is scanned for URLs. Each
URL is probed once per item and the HTTP status is reported next to it,
grouped by course section. Scheme-less matches such as "www.example.org"
are listed as invalid without being probed.

Examples:
  # Print a terminal table of all links of course 42
  linkvalidator report 42

  # Only show broken links
  linkvalidator report --filter errorsonly 42

  # Export a spreadsheet
  linkvalidator report -f xlsx -o report.xlsx 42

  # Export several courses into a directory, two builds at a time
  linkvalidator report -f csv -o reports/ -b 2 42 43 44

  # Read courses from PostgreSQL
  LINKVALIDATOR_STORE_DSN="postgres://..." linkvalidator report --store postgres 42

Output formats:
  text, html, csv (tab separated), tsv, ods, xlsx, json, markdown`,
		Args: cobra.MinimumNArgs(1),
		RunE: runReportCmd,
	}

	cmd.Flags().String("filter", model.FilterAll.String(),
		"Rows to include: all or errorsonly")
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Output format: text, html, csv, tsv, ods, xlsx, json or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file or directory (creates directories if needed)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of courses built concurrently")

	addBuildFlags(cmd)
	addProbeFlags(cmd)
	addStoreFlags(cmd)
	addRenderFlags(cmd)

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.ValidateForReport(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runReport(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// reportOutput delivers finished reports to stdout or to files.
type reportOutput struct {
	format  report.Format
	opts    report.Options
	path    string
	courses int
	stdout  io.Writer
	status  io.Writer
	logger  *slog.Logger

	// mu serializes output of concurrent builds.
	mu sync.Mutex
}

// runReport builds and renders the report of every configured course.
func runReport(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, status io.Writer) error {
	filter, err := cfg.ParsedFilter()
	if err != nil {
		return err
	}
	format, err := cfg.ParsedFormat()
	if err != nil {
		return err
	}
	if cfg.ReportFile == "" && len(cfg.Courses) > 1 && isBinary(format) {
		return errBinaryToStdout
	}

	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	builder, err := newBuilder(cfg, s, logger, nil)
	if err != nil {
		return err
	}

	out := &reportOutput{
		format:  format,
		opts:    cfg.RenderOptions(getVersion()),
		path:    cfg.ReportFile,
		courses: len(cfg.Courses),
		stdout:  stdout,
		status:  status,
		logger:  logger,
	}

	logger.Info("starting report build",
		"courses", cfg.Courses,
		"filter", filter.String(),
		"format", format.String(),
		"batch_size", cfg.BatchSize,
	)

	if len(cfg.Courses) > 1 && cfg.BatchSize > 1 {
		return runBatchReport(ctx, cfg, builder, filter, out, logger)
	}
	return runSequentialReport(ctx, cfg, builder, filter, out)
}

// runSequentialReport builds the courses one at a time.
func runSequentialReport(ctx context.Context, cfg *config.Config, builder pipeline.ReportBuilder, filter model.Filter, out *reportOutput) error {
	var errs []error
	for _, courseID := range cfg.Courses {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		rep, err := builder.Build(ctx, courseID, filter)
		if err := out.emit(pipeline.BatchResult{CourseID: courseID, Report: rep, Err: err}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// runBatchReport builds several courses concurrently with BatchProcessor.
func runBatchReport(ctx context.Context, cfg *config.Config, builder pipeline.ReportBuilder, filter model.Filter, out *reportOutput, logger *slog.Logger) error {
	bp := pipeline.NewBatchProcessor(builder, filter,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var (
		mu   sync.Mutex
		errs []error
	)
	err := bp.ProcessBatchWithCallback(ctx, cfg.Courses, func(result pipeline.BatchResult, index int) {
		if err := out.emit(result); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
		out.progress("[%d/%d] %s done\n", index+1, len(cfg.Courses), result.CourseID)
	})

	mu.Lock()
	defer mu.Unlock()
	if err != nil && !containsError(errs, err) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// emit renders one build result. A partial report is still written; the
// build error is returned afterwards.
func (o *reportOutput) emit(result pipeline.BatchResult) error {
	if result.Report == nil {
		if result.Err == nil {
			return nil
		}
		return fmt.Errorf("course %s: %w", result.CourseID, result.Err)
	}

	rep := result.Report
	if rep.Partial {
		o.logger.Warn("report is incomplete", "course", rep.CourseID, "error", result.Err)
	}

	if err := o.write(rep); err != nil {
		return fmt.Errorf("course %s: %w", rep.CourseID, err)
	}
	if result.Err != nil {
		return fmt.Errorf("course %s: %w", rep.CourseID, result.Err)
	}
	return nil
}

// write renders rep to stdout or to its output file.
func (o *reportOutput) write(rep *model.Report) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	path := reportPath(o.path, o.courses, o.format, rep)
	if path == "" {
		w, err := report.NewWriter(o.format, o.stdout, o.opts)
		if err != nil {
			return err
		}
		_, err = w.Write(rep)
		return err
	}

	n, err := report.WriteFile(path, o.format, rep, o.opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(o.status, "Report for course %s written to %s (%d bytes)\n", rep.CourseID, path, n)
	return nil
}

// progress prints a status line that never mixes with report output.
func (o *reportOutput) progress(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.status, format, args...)
}

// reportPath returns the file a report is written to, or "" for stdout.
//
// An existing directory, or a path ending in a separator, receives a file
// named after the export timestamp. With several courses the course id is
// added to every file name.
func reportPath(output string, courses int, format report.Format, rep *model.Report) string {
	if output == "" {
		return ""
	}

	if isDir(output) {
		name := report.FileName(format, rep.GeneratedAt)
		if courses > 1 {
			name = "course_" + safeName(rep.CourseID) + "_" + name
		}
		return filepath.Join(output, name)
	}

	if courses == 1 {
		return output
	}
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "_" + safeName(rep.CourseID) + ext
}

// isDir reports whether path names a directory.
func isDir(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// safeName keeps course ids usable as part of a file name.
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

// isBinary reports whether the format cannot be concatenated on stdout.
func isBinary(f report.Format) bool {
	return f == report.FormatODS || f == report.FormatXLSX
}

// containsError reports whether target is already among errs.
func containsError(errs []error, target error) bool {
	for _, err := range errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
