package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkvalidator.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkvalidator",
		Short: "Find broken links in course content",
		Long: `linkvalidator extracts every URL from the text of course activities and
resources, probes each one over HTTP and reports the status per item.

Course content is read from a SQL store (SQLite by default, PostgreSQL
optionally). Use 'linkvalidator import' to load a course snapshot first.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .linkvalidator in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewCoursesCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
