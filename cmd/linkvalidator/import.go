package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/linkvalidator/internal/config"
	"github.com/nao1215/linkvalidator/internal/store"
	"github.com/spf13/cobra"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <snapshot.yaml>...",
		Short: "Load course snapshots into the content store",
		Long: `Import reads YAML course snapshots and writes them to the content store.

A course that is already stored is replaced as a whole. Each file is
imported in its own transaction; use "-" to read a snapshot from stdin.

Snapshot example:
  courses:
    - id: "42"
      name: Networks
      sections:
        - id: "1"
          title: Week 1
          items:
            - id: "11"
              name: Reading list
              module: page
              fields:
                - name: content
                  format: html
                  value: <a href="https://example.com/rfc">RFC</a>

Examples:
  # Import into the default SQLite store
  linkvalidator import course.yaml

  # Import into PostgreSQL
  linkvalidator import --store postgres --dsn "postgres://..." course.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportCmd,
	}

	addStoreFlags(cmd)

	return cmd
}

// runImportCmd executes the import command.
func runImportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
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

	return runImport(ctx, cfg, logger, args, cmd.InOrStdin(), cmd.OutOrStdout())
}

// runImport imports every snapshot file in order and stops at the first
// failure. Files imported before the failure stay in the store.
func runImport(ctx context.Context, cfg *config.Config, logger *slog.Logger, files []string, stdin io.Reader, out io.Writer) error {
	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, file := range files {
		snap, err := readSnapshot(file, stdin)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		res, err := s.Import(ctx, snap)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		logger.Info("snapshot imported", "file", file, "courses", res.Courses, "items", res.Items)
		fmt.Fprintf(out, "Imported %s: %d courses, %d sections, %d items, %d instances\n",
			file, res.Courses, res.Sections, res.Items, res.Instances)
	}
	return nil
}

// readSnapshot parses the snapshot in file, or in stdin for "-".
func readSnapshot(file string, stdin io.Reader) (*store.Snapshot, error) {
	if file == "-" {
		return store.ParseSnapshot(stdin)
	}

	f, err := os.Open(file) //nolint:gosec // User-provided snapshot path is intentional
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return store.ParseSnapshot(f)
}
