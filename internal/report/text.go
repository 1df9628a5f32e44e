package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nao1215/linkvalidator/internal/model"
)

// TextWriter renders the interactive report as a terminal table.
// Section headers span the whole row; each item row lists its URLs and
// statuses one per line. Hidden items are marked with "(hidden)".
type TextWriter struct {
	baseWriter
	opts  ViewOptions
	style table.Style
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmptyItems renders items that contain no URLs.
func WithShowEmptyItems(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.opts.ShowEmptyItems = show
	}
}

// WithTableStyle sets the go-pretty table style.
func WithTableStyle(style table.Style) TextWriterOption {
	return func(w *TextWriter) {
		w.style = style
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		opts:       DefaultViewOptions(),
		style:      table.StyleLight,
	}
	// Terminal output has no site to link to.
	w.opts.ItemURLTemplate = ""
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report table followed by the summary lines.
func (w *TextWriter) Write(report *model.Report) (int, error) {
	v := newView(report, w.opts)

	t := table.NewWriter()
	t.SetStyle(w.style)
	t.SetTitle(v.CourseName)
	t.AppendHeader(table.Row{"Title", "URL", "Result"})

	merge := table.RowConfig{AutoMerge: true}
	for _, row := range v.Rows {
		if row.Section {
			t.AppendSeparator()
			t.AppendRow(table.Row{row.Title, row.Title, row.Title}, merge)
			t.AppendSeparator()
			continue
		}
		if row.Empty && !w.opts.ShowEmptyItems {
			continue
		}
		t.AppendRow(table.Row{itemTitle(row), urlLines(row.Results), resultLines(row.Results)})
	}

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	if v.Partial {
		sb.WriteString("The report is incomplete: the build was cancelled before every item was checked.\n")
	}
	fmt.Fprintf(&sb, "Total links found: %d\n", v.Totals.TotalProbed)
	fmt.Fprintf(&sb, "Total errors found: %d\n", v.Totals.TotalErrors)
	if len(v.Skipped) > 0 {
		fmt.Fprintf(&sb, "Skipped items: %s\n", strings.Join(v.Skipped, ", "))
	}

	return io.WriteString(w.output, sb.String())
}

func itemTitle(row viewRow) string {
	title := row.Name
	if row.Module != "" {
		title = row.Module + ": " + title
	}
	if row.Hidden {
		title += " (hidden)"
	}
	return title
}

func urlLines(results []model.ProbeResult) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.URL
	}
	return strings.Join(lines, "\n")
}

func resultLines(results []model.ProbeResult) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}
