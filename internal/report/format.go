package report

import (
	"fmt"
	"io"
	"strings"
)

// Format names an output format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatTSV      Format = "tsv"
	FormatODS      Format = "ods"
	FormatXLSX     Format = "xlsx"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format.
var Formats = []Format{
	FormatHTML, FormatText, FormatCSV, FormatTSV,
	FormatODS, FormatXLSX, FormatJSON, FormatMarkdown,
}

// formatAliases maps accepted names, including the legacy selector
// values of the report page, to formats.
var formatAliases = map[string]Format{
	"html":            FormatHTML,
	"showashtml":      FormatHTML,
	"text":            FormatText,
	"txt":             FormatText,
	"table":           FormatText,
	"csv":             FormatCSV,
	"downloadascsv":   FormatCSV,
	"tsv":             FormatTSV,
	"ods":             FormatODS,
	"downloadasods":   FormatODS,
	"xls":             FormatXLSX,
	"xlsx":            FormatXLSX,
	"excel":           FormatXLSX,
	"downloadasexcel": FormatXLSX,
	"json":            FormatJSON,
	"markdown":        FormatMarkdown,
	"md":              FormatMarkdown,
}

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f, ok := formatAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// String returns the canonical format name.
func (f Format) String() string {
	return string(f)
}

// Extension returns the file extension without the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return "txt"
	case FormatMarkdown:
		return "md"
	default:
		return string(f)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatTSV:
		return "text/tab-separated-values; charset=utf-8"
	case FormatODS:
		return odsMimeType
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// IsDownload reports whether the format is served as an attachment.
func (f Format) IsDownload() bool {
	switch f {
	case FormatCSV, FormatTSV, FormatODS, FormatXLSX:
		return true
	default:
		return false
	}
}

// Options carries the settings of every writer so callers can select a
// writer by format alone.
type Options struct {
	// View configures the HTML and terminal writers.
	View ViewOptions

	// Sheet configures the spreadsheet writers.
	Sheet SheetPolicy

	// CSVComma is the separator of the csv format. It defaults to a tab,
	// the layout of the legacy "download as text" export. The tsv format
	// always uses a tab.
	CSVComma rune

	// Version is embedded in JSON output when set.
	Version string

	// PrettyJSON indents JSON output.
	PrettyJSON bool
}

// DefaultOptions returns the default writer options.
func DefaultOptions() Options {
	return Options{
		View:       DefaultViewOptions(),
		Sheet:      DefaultSheetPolicy(),
		CSVComma:   '\t',
		PrettyJSON: true,
	}
}

// ContentType returns the MIME type of f as rendered with o. The csv
// format is tab-separated unless CSVComma says otherwise and is then
// served as tab-separated values.
func (o Options) ContentType(f Format) string {
	if f == FormatCSV && (o.CSVComma == 0 || o.CSVComma == '\t') {
		return FormatTSV.ContentType()
	}
	return f.ContentType()
}

// NewWriter returns the writer for format f.
func NewWriter(f Format, output io.Writer, opts Options) (Writer, error) {
	switch f {
	case FormatHTML:
		return NewHTMLWriter(output, WithViewOptions(opts.View)), nil
	case FormatText:
		return NewTextWriter(output, WithShowEmptyItems(opts.View.ShowEmptyItems)), nil
	case FormatCSV:
		if opts.CSVComma == 0 {
			return NewDelimitedWriter(output), nil
		}
		return NewDelimitedWriter(output, WithComma(opts.CSVComma)), nil
	case FormatTSV:
		return NewDelimitedWriter(output), nil
	case FormatODS:
		return NewODSWriter(output, WithSheetPolicy(opts.Sheet)), nil
	case FormatXLSX:
		return NewXLSXWriter(output, WithSheetPolicy(opts.Sheet)), nil
	case FormatJSON:
		var jopts []JSONWriterOption
		if opts.PrettyJSON {
			jopts = append(jopts, WithPrettyPrint())
		}
		if opts.Version != "" {
			jopts = append(jopts, WithVersion(opts.Version))
		}
		return NewJSONWriter(output, jopts...), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}
