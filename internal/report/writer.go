package report

import (
	"html"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nao1215/linkvalidator/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Writer defines the interface for report output.
// Implementations write link reports in various formats.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// We implement this as a separate type rather than using io.MultiWriter
// because our Writer interface writes reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter counts bytes passed through to the underlying writer.
// Library encoders (csv, excelize, zip) do not report how much they wrote.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// stripPolicy removes every tag from item names and section titles.
var stripPolicy = bluemonday.StrictPolicy()

// plainName returns s without markup. StrictPolicy escapes the remaining
// text, so entities are decoded once more to get the display string.
func plainName(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// moduleLabel turns a module type such as "page" or "external_tool" into
// a display label ("Page", "External Tool").
func moduleLabel(moduleType string) string {
	if moduleType == "" {
		return ""
	}
	// A Caser keeps state, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(moduleType, "_", " "))
}

// header is the column header shared by the delimited and spreadsheet exports.
var header = []string{"Section", "Title", "URL", "Result"}

// entryRecord returns the export columns of one entry.
func entryRecord(e model.Entry) []string {
	return []string{
		plainName(e.SectionTitle),
		plainName(e.Item.Name),
		e.Result.URL,
		e.Result.String(),
	}
}
