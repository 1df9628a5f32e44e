package model

import "context"

// FieldFormat describes how the value of a TextField is encoded.
type FieldFormat string

const (
	// FormatPlain is free-form text scanned as is.
	FormatPlain FieldFormat = "plain"

	// FormatHTML is markup. It is flattened to text (entities decoded,
	// attribute values kept) before URLs are extracted from it.
	FormatHTML FieldFormat = "html"
)

// TextField is one named text value of a content item, such as the
// introduction of a page or the external URL of a link resource.
type TextField struct {
	// Name is the field name in the content store (e.g. "intro").
	Name string `json:"name" yaml:"name"`

	// Value is the raw field content.
	Value string `json:"value" yaml:"value"`

	// Format tells the validator whether Value is plain text or HTML.
	// An empty format is treated as plain text.
	Format FieldFormat `json:"format,omitempty" yaml:"format,omitempty"`
}

// IsHTML reports whether the field value is markup.
func (f TextField) IsHTML() bool {
	return f.Format == FormatHTML
}

// TextFieldSource is the capability every content item variant provides:
// it yields the named text fields to scan for URLs.
//
// Implementations may load fields lazily from a content store. A record that
// cannot be resolved must be reported as a *LookupError.
type TextFieldSource interface {
	TextFields(ctx context.Context) ([]TextField, error)
}

// StaticFields is a TextFieldSource backed by an in-memory slice.
type StaticFields []TextField

// TextFields returns the fields unchanged.
func (s StaticFields) TextFields(_ context.Context) ([]TextField, error) {
	return s, nil
}

// ContentItem is a single course activity or resource.
// It is immutable for the duration of a report run.
type ContentItem struct {
	// ID is the stable identifier of the item in the content store.
	ID string `json:"id"`

	// Name is the display name. It may contain markup; renderers strip it.
	Name string `json:"name"`

	// ModuleType is the activity type (page, url, label, forum, ...).
	// It is only used for display; validation never branches on it.
	ModuleType string `json:"module_type,omitempty"`

	// Visible is false for items hidden from students.
	Visible bool `json:"visible"`

	// SectionID references the parent Section.
	SectionID string `json:"section_id"`

	// Fields yields the text fields to scan.
	Fields TextFieldSource `json:"-"`
}

// TextFields returns the item's fields, or nothing for an item without a source.
func (c ContentItem) TextFields(ctx context.Context) ([]TextField, error) {
	if c.Fields == nil {
		return nil, nil
	}
	return c.Fields.TextFields(ctx)
}

// Section is a named, ordered group of content items.
type Section struct {
	// ID is the section identifier.
	ID string `json:"id"`

	// Title is the display title of the section.
	Title string `json:"title"`

	// Items are the section's content items in store order.
	Items []ContentItem `json:"items,omitempty"`
}

// Course is the unit a report is built for: an ordered list of sections.
type Course struct {
	// ID is the course identifier.
	ID string `json:"id"`

	// Name is the course display name.
	Name string `json:"name"`

	// Sections are in store order.
	Sections []Section `json:"sections"`
}

// ItemCount returns the number of content items across all sections.
func (c *Course) ItemCount() int {
	n := 0
	for _, s := range c.Sections {
		n += len(s.Items)
	}
	return n
}
