package model

import (
	"time"

	"github.com/google/uuid"
)

// RowKind distinguishes the two kinds of report rows.
type RowKind string

const (
	// RowSection is a section group header.
	RowSection RowKind = "section"

	// RowItem carries the ItemReport of one content item.
	RowItem RowKind = "item"
)

// Row is one entry of the report sequence: either a section header or an
// item row. A section header always precedes the item rows of its section.
type Row struct {
	// Kind tells which of the fields below is meaningful.
	Kind RowKind `json:"kind"`

	// SectionID is the id of the section the row belongs to.
	SectionID string `json:"section_id"`

	// SectionTitle is the display title of the section.
	SectionTitle string `json:"section_title"`

	// Item is set for RowItem rows.
	Item *ItemReport `json:"item,omitempty"`
}

// IsSection reports whether the row is a section header.
func (r Row) IsSection() bool {
	return r.Kind == RowSection
}

// Report is the result of one report build for one course.
// It is built once per request, rendered by any number of writers and
// then discarded.
type Report struct {
	// ID identifies the build run in logs and exported files.
	ID uuid.UUID `json:"id"`

	// CourseID is the id of the course the report was built for.
	CourseID string `json:"course_id"`

	// CourseName is the course display name.
	CourseName string `json:"course_name"`

	// Filter is the filter applied to the item rows.
	Filter Filter `json:"filter"`

	// GeneratedAt is when the build started.
	GeneratedAt time.Time `json:"generated_at"`

	// === Rows ===

	// Rows are section headers and item rows in store order.
	Rows []Row `json:"rows"`

	// === Totals ===

	// Totals reflect the unfiltered probe universe.
	Totals TotalsSnapshot `json:"totals"`

	// === Build State ===

	// Partial is true when the build was cancelled. Rows of items that
	// completed before cancellation are kept.
	Partial bool `json:"partial"`

	// SkippedItems lists ids of items whose content could not be loaded.
	SkippedItems []string `json:"skipped_items,omitempty"`

	// Steps lists the builder steps that were performed.
	Steps []string `json:"steps,omitempty"`
}

// NewReport creates an empty report for the given course.
func NewReport(courseID string, filter Filter) *Report {
	return &Report{
		ID:          uuid.New(),
		CourseID:    courseID,
		Filter:      filter,
		GeneratedAt: time.Now(),
		Rows:        make([]Row, 0),
	}
}

// Entry is one flattened (section, item, result) tuple. Delimited and
// spreadsheet exports emit one data row per entry.
type Entry struct {
	SectionTitle string
	Item         ContentItem
	Result       ProbeResult
}

// Entries returns the flattened data rows of the report. Section headers
// and items without results contribute nothing.
func (r *Report) Entries() []Entry {
	entries := make([]Entry, 0)
	for _, row := range r.Rows {
		if row.IsSection() || row.Item == nil {
			continue
		}
		for _, res := range row.Item.Results {
			entries = append(entries, Entry{
				SectionTitle: row.SectionTitle,
				Item:         row.Item.Item,
				Result:       res,
			})
		}
	}
	return entries
}

// Items returns the item reports in row order.
func (r *Report) Items() []*ItemReport {
	items := make([]*ItemReport, 0, len(r.Rows))
	for _, row := range r.Rows {
		if row.Kind == RowItem && row.Item != nil {
			items = append(items, row.Item)
		}
	}
	return items
}

// SectionCount returns the number of section headers.
func (r *Report) SectionCount() int {
	n := 0
	for _, row := range r.Rows {
		if row.IsSection() {
			n++
		}
	}
	return n
}

// ClassCounts counts the entries left after filtering per status class.
func (r *Report) ClassCounts() map[StatusClass]int {
	counts := make(map[StatusClass]int, len(StatusClasses))
	for _, item := range r.Items() {
		for _, res := range item.Results {
			counts[res.Class()]++
		}
	}
	return counts
}
