package report

import "errors"

var (
	// ErrUnsupportedFormat is returned for an unknown output format name.
	ErrUnsupportedFormat = errors.New("unsupported report format")

	// ErrInvalidSheetPolicy is returned when a SheetPolicy cannot paginate.
	ErrInvalidSheetPolicy = errors.New("invalid sheet policy")
)

// RenderError wraps a failure of a writer for a given format.
type RenderError struct {
	Format Format
	Err    error
}

// Error implements error.
func (e *RenderError) Error() string {
	return "render " + string(e.Format) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}
