package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nao1215/linkvalidator/internal/model"
)

// DelimitedWriter exports one row per (section, item, URL, result) entry
// after a Section/Title/URL/Result header. Section headers and items
// without URLs produce no rows. Fields are quoted only when needed.
type DelimitedWriter struct {
	baseWriter
	comma rune
}

// DelimitedWriterOption configures a DelimitedWriter.
type DelimitedWriterOption func(*DelimitedWriter)

// WithComma sets the field separator. The default is a tab.
func WithComma(comma rune) DelimitedWriterOption {
	return func(w *DelimitedWriter) {
		w.comma = comma
	}
}

// NewDelimitedWriter creates a tab separated writer.
func NewDelimitedWriter(output io.Writer, opts ...DelimitedWriterOption) *DelimitedWriter {
	w := &DelimitedWriter{
		baseWriter: newBaseWriter(output),
		comma:      '\t',
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the header and every entry of the report.
func (w *DelimitedWriter) Write(report *model.Report) (int, error) {
	cw := &countingWriter{w: w.output}
	out := csv.NewWriter(cw)
	out.Comma = w.comma

	if err := out.Write(header); err != nil {
		return cw.n, fmt.Errorf("write header: %w", err)
	}
	for _, e := range report.Entries() {
		if err := out.Write(entryRecord(e)); err != nil {
			return cw.n, fmt.Errorf("write row: %w", err)
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return cw.n, fmt.Errorf("flush: %w", err)
	}
	return cw.n, nil
}
