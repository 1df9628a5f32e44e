package report

import (
	"io"
	"strconv"

	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, e.g. pasting a
// broken link summary into an issue.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeSections(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and build information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Link Validator Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Course", plainName(report.CourseName)},
			{"Course ID", "`" + report.CourseID + "`"},
			{"Filter", report.Filter.String()},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the build state of the report.
func statusText(report *model.Report) string {
	switch {
	case report.Partial:
		return "⚠️ Cancelled (partial results)"
	case len(report.SkippedItems) > 0:
		return "⚠️ Complete, " + strconv.Itoa(len(report.SkippedItems)) + " item(s) skipped"
	default:
		return "✅ Complete"
	}
}

// writeSummary writes the totals, status class distribution and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Total links found", strconv.Itoa(report.Totals.TotalProbed)},
			{"Total errors found", strconv.Itoa(report.Totals.TotalErrors)},
		},
	})
	md.PlainText("")

	counts := report.ClassCounts()
	if len(counts) > 0 {
		w.writePieChart(md, counts)
	}

	switch errs := report.Totals.TotalErrors; {
	case errs > 0:
		md.Cautionf("%d of %d link(s) are broken or unreachable.", errs, report.Totals.TotalProbed)
	case report.Totals.TotalProbed == 0:
		md.Note("No links were found in this course.")
	default:
		md.Tip("All links returned 200 OK.")
	}
	md.PlainText("")

	if len(report.SkippedItems) > 0 {
		md.Warningf("Skipped items whose content could not be loaded: %d", len(report.SkippedItems))
		md.PlainText("")
		md.BulletList(report.SkippedItems...)
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart of the rendered status classes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.StatusClass]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Status Distribution"),
		piechart.WithShowData(true),
	)

	for _, class := range model.StatusClasses {
		if n := counts[class]; n > 0 {
			chart.LabelAndIntValue(string(class), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeSections writes one table per section. Sections without rendered
// results are listed with a short note.
func (w *MarkdownWriter) writeSections(md *markdown.Markdown, report *model.Report) {
	md.H2("Links")
	md.PlainText("")

	var title string
	var rows [][]string
	flush := func() {
		if title == "" && rows == nil {
			return
		}
		md.H3(title)
		md.PlainText("")
		if len(rows) == 0 {
			md.PlainText("No links.")
		} else {
			md.Table(markdown.TableSet{
				Header: []string{"Title", "URL", "Result"},
				Rows:   rows,
			})
		}
		md.PlainText("")
	}

	for _, row := range report.Rows {
		if row.IsSection() {
			flush()
			title = plainName(row.SectionTitle)
			rows = [][]string{}
			continue
		}
		if row.Item == nil {
			continue
		}
		name := plainName(row.Item.Item.Name)
		for _, res := range row.Item.Results {
			rows = append(rows, []string{name, res.URL, res.String()})
		}
	}
	flush()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by linkvalidator*")
}
