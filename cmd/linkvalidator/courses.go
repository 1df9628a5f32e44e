package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nao1215/linkvalidator/internal/store"
	"github.com/spf13/cobra"
)

// NewCoursesCmd creates the courses command.
func NewCoursesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List the courses in the content store",
		Long: `Courses lists every course in the content store with its number of
sections and items and the time it was imported.

Examples:
  # List stored courses
  linkvalidator courses

  # Print the list as JSON
  linkvalidator courses --json

  # Remove a course
  linkvalidator courses --delete 42`,
		Args: cobra.NoArgs,
		RunE: runCoursesCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output the course list in JSON format")
	cmd.Flags().String("delete", "",
		"Delete the course with the given id instead of listing")

	addStoreFlags(cmd)

	return cmd
}

// runCoursesCmd executes the courses command.
func runCoursesCmd(cmd *cobra.Command, _ []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	deleteID, err := cmd.Flags().GetString("delete")
	if err != nil {
		return err
	}

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

	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	if deleteID != "" {
		if err := s.DeleteCourse(ctx, deleteID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted course %s\n", deleteID)
		return nil
	}

	return listCourses(ctx, s, out, jsonOutput)
}

// courseLister is the part of the store listCourses reads from.
type courseLister interface {
	ListCourses(ctx context.Context) ([]store.CourseSummary, error)
}

// listCourses writes the stored courses as a table or as JSON.
func listCourses(ctx context.Context, s courseLister, out io.Writer, jsonOutput bool) error {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(courses)
	}

	if len(courses) == 0 {
		fmt.Fprintln(out, "No courses in the content store. Use 'linkvalidator import' to add one.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "Name", "Sections", "Items", "Imported"})
	for _, c := range courses {
		imported := "-"
		if !c.ImportedAt.IsZero() {
			imported = c.ImportedAt.Local().Format("2006-01-02 15:04")
		}
		tw.AppendRow(table.Row{c.ID, c.Name, strconv.Itoa(c.Sections), strconv.Itoa(c.Items), imported})
	}
	tw.AppendFooter(table.Row{"Total", strconv.Itoa(len(courses)), "", "", ""})
	tw.Render()

	return nil
}
