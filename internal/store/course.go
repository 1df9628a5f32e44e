package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
)

type courseRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	ImportedAt string `db:"imported_at"`
}

type sectionRow struct {
	ID    string `db:"id"`
	Title string `db:"title"`
}

type itemRow struct {
	ID         string `db:"id"`
	SectionID  string `db:"section_id"`
	Name       string `db:"name"`
	ModuleType string `db:"module_type"`
	Visible    bool   `db:"visible"`
	InstanceID string `db:"instance_id"`
}

type fieldRow struct {
	Name   string `db:"name"`
	Value  string `db:"value"`
	Format string `db:"format"`
}

// Course returns the course with its sections and items in store order.
// Item text fields are loaded when the validator asks for them.
func (s *Store) Course(ctx context.Context, courseID string) (*model.Course, error) {
	var c courseRow
	err := s.db.GetContext(ctx, &c,
		s.db.Rebind(`SELECT id, name, imported_at FROM courses WHERE id = ?`), courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrCourseNotFound, courseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course %s: %w", courseID, err)
	}

	var sections []sectionRow
	err = s.db.SelectContext(ctx, &sections,
		s.db.Rebind(`SELECT id, title FROM sections WHERE course_id = ? ORDER BY position`), courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections of course %s: %w", courseID, err)
	}

	var items []itemRow
	err = s.db.SelectContext(ctx, &items, s.db.Rebind(`
		SELECT i.id, i.section_id, i.name, i.module_type, i.visible, i.instance_id
		FROM items i
		JOIN sections s ON s.course_id = i.course_id AND s.id = i.section_id
		WHERE i.course_id = ?
		ORDER BY s.position, i.position`), courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of course %s: %w", courseID, err)
	}

	course := &model.Course{
		ID:       c.ID,
		Name:     c.Name,
		Sections: make([]model.Section, len(sections)),
	}
	index := make(map[string]int, len(sections))
	for i, sec := range sections {
		course.Sections[i] = model.Section{ID: sec.ID, Title: sec.Title}
		index[sec.ID] = i
	}

	for _, it := range items {
		i := index[it.SectionID]
		course.Sections[i].Items = append(course.Sections[i].Items, model.ContentItem{
			ID:         it.ID,
			Name:       it.Name,
			ModuleType: it.ModuleType,
			Visible:    it.Visible,
			SectionID:  it.SectionID,
			Fields: &instanceFields{
				store:      s,
				itemID:     it.ID,
				moduleType: it.ModuleType,
				instanceID: it.InstanceID,
			},
		})
	}

	return course, nil
}

// instanceFields loads the text fields of one activity instance.
type instanceFields struct {
	store      *Store
	itemID     string
	moduleType string
	instanceID string
}

// TextFields implements model.TextFieldSource.
func (f *instanceFields) TextFields(ctx context.Context) ([]model.TextField, error) {
	return f.store.InstanceFields(ctx, f.itemID, f.moduleType, f.instanceID)
}

// InstanceFields returns the text fields of an activity instance. A missing
// instance is reported as a *model.LookupError for itemID.
func (s *Store) InstanceFields(ctx context.Context, itemID, moduleType, instanceID string) ([]model.TextField, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		s.db.Rebind(`SELECT COUNT(*) FROM instances WHERE module_type = ? AND id = ?`),
		moduleType, instanceID)
	if err != nil {
		return nil, model.NewLookupError(itemID, err)
	}
	if n == 0 {
		return nil, model.NewLookupError(itemID,
			fmt.Errorf("%w: %s instance %s", model.ErrItemNotFound, moduleType, instanceID))
	}

	var rows []fieldRow
	err = s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT name, value, format FROM instance_fields
		WHERE module_type = ? AND instance_id = ?
		ORDER BY position`), moduleType, instanceID)
	if err != nil {
		return nil, model.NewLookupError(itemID, err)
	}

	fields := make([]model.TextField, len(rows))
	for i, r := range rows {
		fields[i] = model.TextField{
			Name:   r.Name,
			Value:  r.Value,
			Format: model.FieldFormat(r.Format),
		}
	}
	return fields, nil
}

// CourseSummary describes a stored course.
type CourseSummary struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Sections   int       `db:"sections" json:"sections"`
	Items      int       `db:"items" json:"items"`
	ImportedAt time.Time `db:"-" json:"imported_at"`
}

type summaryRow struct {
	CourseSummary
	ImportedAtRaw string `db:"imported_at"`
}

// ListCourses returns all stored courses ordered by id.
func (s *Store) ListCourses(ctx context.Context) ([]CourseSummary, error) {
	var rows []summaryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.name, c.imported_at,
			(SELECT COUNT(*) FROM sections s WHERE s.course_id = c.id) AS sections,
			(SELECT COUNT(*) FROM items i WHERE i.course_id = c.id) AS items
		FROM courses c
		ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	out := make([]CourseSummary, len(rows))
	for i, r := range rows {
		out[i] = r.CourseSummary
		out[i].ImportedAt = parseTimestamp(r.ImportedAtRaw)
	}
	return out, nil
}

// DeleteCourse removes a course with its sections and items. Instances are
// kept because other courses may share them.
func (s *Store) DeleteCourse(ctx context.Context, courseID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := deleteCourse(ctx, tx, courseID); err != nil {
		return err
	}
	return tx.Commit()
}
