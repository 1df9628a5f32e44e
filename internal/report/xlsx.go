package report

import (
	"fmt"
	"io"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/xuri/excelize/v2"
)

// XLSXWriter exports the report as an Excel workbook paginated by a
// SheetPolicy. Each sheet starts with a "Saved at" line and the column
// header.
type XLSXWriter struct {
	baseWriter
	policy SheetPolicy
	now    func() time.Time
}

// SpreadsheetOption configures the spreadsheet writers.
type SpreadsheetOption func(*spreadsheetConfig)

type spreadsheetConfig struct {
	policy SheetPolicy
	now    func() time.Time
}

// WithSheetPolicy sets the pagination policy.
func WithSheetPolicy(policy SheetPolicy) SpreadsheetOption {
	return func(c *spreadsheetConfig) {
		c.policy = policy
	}
}

// WithClock sets the time source of the "Saved at" line.
func WithClock(now func() time.Time) SpreadsheetOption {
	return func(c *spreadsheetConfig) {
		c.now = now
	}
}

func newSpreadsheetConfig(opts []SpreadsheetOption) spreadsheetConfig {
	c := spreadsheetConfig{
		policy: DefaultSheetPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer, opts ...SpreadsheetOption) *XLSXWriter {
	c := newSpreadsheetConfig(opts)
	return &XLSXWriter{
		baseWriter: newBaseWriter(output),
		policy:     c.policy,
		now:        c.now,
	}
}

// Write builds the workbook in memory and writes it out.
func (w *XLSXWriter) Write(report *model.Report) (int, error) {
	if err := w.policy.Validate(); err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	savedAt := savedAtLine(w.now())
	for i, s := range w.policy.paginate(report.Entries()) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Title); err != nil {
				return 0, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Title); err != nil {
			return 0, fmt.Errorf("create sheet %q: %w", s.Title, err)
		}
		if err := w.writeSheet(f, s, savedAt); err != nil {
			return 0, err
		}
	}

	n, err := f.WriteTo(w.output)
	if err != nil {
		return int(n), fmt.Errorf("write workbook: %w", err)
	}
	return int(n), nil
}

func (w *XLSXWriter) writeSheet(f *excelize.File, s sheet, savedAt string) error {
	if err := f.SetCellValue(s.Title, "A1", savedAt); err != nil {
		return fmt.Errorf("write saved at: %w", err)
	}
	if err := f.SetColWidth(s.Title, "B", "B", 30); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := setRow(f, s.Title, w.policy.headerRow(), header); err != nil {
		return err
	}
	for i, e := range s.Entries {
		if err := setRow(f, s.Title, w.policy.FirstDataRow+i, entryRecord(e)); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheetName string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
