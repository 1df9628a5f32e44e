package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/nao1215/linkvalidator/internal/model"
)

//go:embed templates/report.html.tmpl
var htmlTemplateText string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(htmlTemplateText))

// HTMLWriter renders the interactive report page: one table with a header
// row per section, one row per item listing each URL with its status, and
// the two summary lines below the table.
//
// Item names and section titles are stripped of markup before rendering;
// html/template escapes everything else.
type HTMLWriter struct {
	baseWriter
	opts ViewOptions
}

// HTMLWriterOption configures an HTMLWriter.
type HTMLWriterOption func(*HTMLWriter)

// WithViewOptions replaces the view options of an HTMLWriter.
func WithViewOptions(opts ViewOptions) HTMLWriterOption {
	return func(w *HTMLWriter) {
		w.opts = opts
	}
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer, opts ...HTMLWriterOption) *HTMLWriter {
	w := &HTMLWriter{
		baseWriter: newBaseWriter(output),
		opts:       DefaultViewOptions(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// htmlData adds writer settings to the shared view.
type htmlData struct {
	view
	ShowEmpty bool
}

// Write renders the page. Nothing is written if the template fails.
func (w *HTMLWriter) Write(report *model.Report) (int, error) {
	data := htmlData{
		view:      newView(report, w.opts),
		ShowEmpty: w.opts.ShowEmptyItems,
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return 0, fmt.Errorf("render html: %w", err)
	}
	return w.output.Write(buf.Bytes())
}
