package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
)

// fileNameLayout matches the timestamp of exported report file names.
const fileNameLayout = "20060102-1504"

// FileName returns the default export name for a report rendered at t,
// for example "link_validator_report_20240131-0915.xlsx".
func FileName(f Format, t time.Time) string {
	return "link_validator_report_" + t.Format(fileNameLayout) + "." + f.Extension()
}

// WriteFile renders report in format f to path. Output goes to a temporary
// file in the target directory which is renamed over path only after the
// writer succeeds, so a failed render never leaves a partial file.
func WriteFile(path string, f Format, report *model.Report, opts Options) (int, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	w, err := NewWriter(f, tmp, opts)
	if err != nil {
		cleanup()
		return 0, err
	}

	n, err := w.Write(report)
	if err != nil {
		cleanup()
		return n, &RenderError{Format: f, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return n, fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return n, fmt.Errorf("rename report file: %w", err)
	}
	return n, nil
}
