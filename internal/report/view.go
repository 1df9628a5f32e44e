package report

import (
	"net/url"
	"strings"

	"github.com/nao1215/linkvalidator/internal/model"
)

// DefaultItemURLTemplate is the path of an activity page in the course
// site. {module} and {id} are replaced with the escaped module type and
// item id.
const DefaultItemURLTemplate = "/mod/{module}/view.php?id={id}"

// ViewOptions configures the interactive renderers (HTML and terminal).
type ViewOptions struct {
	// ShowEmptyItems renders items that contain no URLs.
	ShowEmptyItems bool

	// BaseURL is prepended to the expanded ItemURLTemplate.
	BaseURL string

	// ItemURLTemplate builds the link of an item row.
	// An empty template disables item links.
	ItemURLTemplate string
}

// DefaultViewOptions returns options that hide empty items and link items
// relative to the site root.
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		ShowEmptyItems:  false,
		ItemURLTemplate: DefaultItemURLTemplate,
	}
}

// ItemURL expands the item link template for item.
func (o ViewOptions) ItemURL(item model.ContentItem) string {
	if o.ItemURLTemplate == "" {
		return ""
	}
	r := strings.NewReplacer(
		"{module}", url.PathEscape(item.ModuleType),
		"{id}", url.QueryEscape(item.ID),
	)
	return strings.TrimSuffix(o.BaseURL, "/") + r.Replace(o.ItemURLTemplate)
}

// viewRow is one rendered row of the interactive views.
type viewRow struct {
	Section bool
	Title   string

	Name    string
	Module  string
	Link    string
	Hidden  bool
	Empty   bool
	Results []model.ProbeResult
}

// view is the render model shared by HTMLWriter and TextWriter.
type view struct {
	CourseName string
	CourseID   string
	Generated  string
	Rows       []viewRow
	Totals     model.TotalsSnapshot
	Partial    bool
	Skipped    []string
}

// newView flattens report rows into display rows. Empty items are kept
// with Empty set; each writer decides how to hide them.
func newView(report *model.Report, opts ViewOptions) view {
	v := view{
		CourseName: plainName(report.CourseName),
		CourseID:   report.CourseID,
		Generated:  report.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
		Rows:       make([]viewRow, 0, len(report.Rows)),
		Totals:     report.Totals,
		Partial:    report.Partial,
		Skipped:    report.SkippedItems,
	}

	for _, row := range report.Rows {
		if row.IsSection() {
			v.Rows = append(v.Rows, viewRow{
				Section: true,
				Title:   plainName(row.SectionTitle),
			})
			continue
		}
		if row.Item == nil {
			continue
		}
		item := row.Item.Item
		v.Rows = append(v.Rows, viewRow{
			Name:    plainName(item.Name),
			Module:  moduleLabel(item.ModuleType),
			Link:    opts.ItemURL(item),
			Hidden:  !item.Visible,
			Empty:   row.Item.IsEmpty(),
			Results: row.Item.Results,
		})
	}
	return v
}
