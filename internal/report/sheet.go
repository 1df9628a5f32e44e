package report

import (
	"fmt"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
)

const (
	// MaxSheetRows is the row limit of the legacy spreadsheet formats.
	MaxSheetRows = 65535

	// DefaultFirstDataRow is the 1-based row of the first data row: row 1
	// holds the "Saved at" line and row 2 the column header.
	DefaultFirstDataRow = 3

	// DefaultRowsPerSheet fills a sheet up to MaxSheetRows.
	DefaultRowsPerSheet = MaxSheetRows - DefaultFirstDataRow + 1
)

// SheetPolicy controls how entries are paginated across worksheets.
type SheetPolicy struct {
	// RowsPerSheet is the number of data rows per sheet.
	RowsPerSheet int

	// FirstDataRow is the 1-based row index of the first data row.
	// The header is written on the row above it.
	FirstDataRow int
}

// DefaultSheetPolicy returns the policy used when none is configured.
func DefaultSheetPolicy() SheetPolicy {
	return SheetPolicy{
		RowsPerSheet: DefaultRowsPerSheet,
		FirstDataRow: DefaultFirstDataRow,
	}
}

// Validate checks the policy for consistency.
func (p SheetPolicy) Validate() error {
	if p.RowsPerSheet < 1 {
		return fmt.Errorf("%w: rows per sheet must be positive, got %d", ErrInvalidSheetPolicy, p.RowsPerSheet)
	}
	if p.FirstDataRow < 2 {
		return fmt.Errorf("%w: first data row must leave room for the header, got %d", ErrInvalidSheetPolicy, p.FirstDataRow)
	}
	return nil
}

// headerRow is the 1-based row of the column header.
func (p SheetPolicy) headerRow() int {
	return p.FirstDataRow - 1
}

// sheet is one page of a paginated export.
type sheet struct {
	Title   string
	Entries []model.Entry
}

// paginate splits entries into sheets of at most RowsPerSheet entries.
// A report without entries still yields one sheet so the file carries its
// header. Sheets are titled "Links i-n".
func (p SheetPolicy) paginate(entries []model.Entry) []sheet {
	n := (len(entries) + p.RowsPerSheet - 1) / p.RowsPerSheet
	if n == 0 {
		n = 1
	}

	sheets := make([]sheet, n)
	for i := range sheets {
		start := i * p.RowsPerSheet
		end := min(start+p.RowsPerSheet, len(entries))
		sheets[i] = sheet{
			Title:   fmt.Sprintf("Links %d-%d", i+1, n),
			Entries: entries[min(start, len(entries)):end],
		}
	}
	return sheets
}

// savedAtLine is the first line of every sheet.
func savedAtLine(t time.Time) string {
	return "Saved at: " + t.Format("2006-01-02 15:04:05 MST")
}
