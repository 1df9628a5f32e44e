package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nao1215/linkvalidator/internal/model"
	"gopkg.in/yaml.v3"
)

// Snapshot is the YAML import format of the store.
//
//	courses:
//	  - id: "101"
//	    name: Networks
//	    sections:
//	      - id: "1"
//	        title: Week 1
//	        items:
//	          - id: "11"
//	            name: Reading list
//	            module: page
//	            visible: true
//	            fields:
//	              - name: content
//	                format: html
//	                value: <p><a href="https://example.com">Intro</a></p>
//	instances:
//	  - module: url
//	    id: "7"
//	    fields:
//	      - name: externalurl
//	        value: https://example.org/
//
// Inline item fields create an instance whose id is the item's instance id,
// or the item id when no instance is given. Items may instead reference an
// instance listed under instances.
type Snapshot struct {
	Courses   []SnapshotCourse   `yaml:"courses"`
	Instances []SnapshotInstance `yaml:"instances,omitempty"`
}

// SnapshotCourse is one course of a snapshot.
type SnapshotCourse struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Sections []SnapshotSection `yaml:"sections"`
}

// SnapshotSection is one section of a snapshot course.
type SnapshotSection struct {
	ID    string         `yaml:"id"`
	Title string         `yaml:"title"`
	Items []SnapshotItem `yaml:"items,omitempty"`
}

// SnapshotItem is one content item of a snapshot section.
type SnapshotItem struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Module   string            `yaml:"module"`
	Visible  *bool             `yaml:"visible,omitempty"`
	Instance string            `yaml:"instance,omitempty"`
	Fields   []model.TextField `yaml:"fields,omitempty"`
}

// SnapshotInstance is an activity instance shared by reference.
type SnapshotInstance struct {
	Module string            `yaml:"module"`
	ID     string            `yaml:"id"`
	Fields []model.TextField `yaml:"fields"`
}

// instanceID returns the instance the item points to.
func (it SnapshotItem) instanceID() string {
	if it.Instance != "" {
		return it.Instance
	}
	return it.ID
}

// visible defaults to true when the key is absent.
func (it SnapshotItem) visible() bool {
	return it.Visible == nil || *it.Visible
}

// ParseSnapshot decodes and validates a YAML snapshot. Unknown keys are
// rejected.
func ParseSnapshot(r io.Reader) (*Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidSnapshot)
		}
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Validate checks ids for presence and uniqueness.
func (s *Snapshot) Validate() error {
	if len(s.Courses) == 0 {
		return fmt.Errorf("%w: no courses", ErrInvalidSnapshot)
	}

	courses := make(map[string]bool)
	for _, c := range s.Courses {
		if c.ID == "" {
			return fmt.Errorf("%w: course without id", ErrInvalidSnapshot)
		}
		if courses[c.ID] {
			return fmt.Errorf("%w: duplicate course %s", ErrInvalidSnapshot, c.ID)
		}
		courses[c.ID] = true

		sections := make(map[string]bool)
		items := make(map[string]bool)
		for _, sec := range c.Sections {
			if sec.ID == "" || sections[sec.ID] {
				return fmt.Errorf("%w: course %s: missing or duplicate section id %q", ErrInvalidSnapshot, c.ID, sec.ID)
			}
			sections[sec.ID] = true
			for _, it := range sec.Items {
				if it.ID == "" || items[it.ID] {
					return fmt.Errorf("%w: course %s: missing or duplicate item id %q", ErrInvalidSnapshot, c.ID, it.ID)
				}
				if it.Module == "" {
					return fmt.Errorf("%w: course %s: item %s has no module", ErrInvalidSnapshot, c.ID, it.ID)
				}
				items[it.ID] = true
			}
		}
	}

	for _, inst := range s.Instances {
		if inst.Module == "" || inst.ID == "" {
			return fmt.Errorf("%w: instance without module or id", ErrInvalidSnapshot)
		}
	}
	return nil
}

// ImportResult counts what Import wrote.
type ImportResult struct {
	Courses   int
	Sections  int
	Items     int
	Instances int
}

// Import writes the snapshot in one transaction. Courses already in the
// store are replaced; instances are replaced field by field.
func (s *Store) Import(ctx context.Context, snap *Snapshot) (ImportResult, error) {
	var res ImportResult
	if err := snap.Validate(); err != nil {
		return res, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC().Format(time.RFC3339Nano)

	for _, inst := range snap.Instances {
		if err := putInstance(ctx, tx, inst.Module, inst.ID, inst.Fields); err != nil {
			return res, err
		}
		res.Instances++
	}

	for _, c := range snap.Courses {
		if err := deleteCourse(ctx, tx, c.ID); err != nil {
			return res, err
		}
		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO courses (id, name, imported_at) VALUES (?, ?, ?)`),
			c.ID, c.Name, now); err != nil {
			return res, fmt.Errorf("failed to insert course %s: %w", c.ID, err)
		}
		res.Courses++

		for si, sec := range c.Sections {
			if _, err := tx.ExecContext(ctx,
				tx.Rebind(`INSERT INTO sections (course_id, id, title, position) VALUES (?, ?, ?, ?)`),
				c.ID, sec.ID, sec.Title, si); err != nil {
				return res, fmt.Errorf("failed to insert section %s: %w", sec.ID, err)
			}
			res.Sections++

			for ii, it := range sec.Items {
				if _, err := tx.ExecContext(ctx, tx.Rebind(`
					INSERT INTO items (course_id, id, section_id, position, name, module_type, visible, instance_id)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
					c.ID, it.ID, sec.ID, ii, it.Name, it.Module, it.visible(), it.instanceID()); err != nil {
					return res, fmt.Errorf("failed to insert item %s: %w", it.ID, err)
				}
				res.Items++

				if it.Fields != nil {
					if err := putInstance(ctx, tx, it.Module, it.instanceID(), it.Fields); err != nil {
						return res, err
					}
					res.Instances++
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit import: %w", err)
	}
	return res, nil
}

func deleteCourse(ctx context.Context, tx *sqlx.Tx, courseID string) error {
	for _, stmt := range []string{
		`DELETE FROM items WHERE course_id = ?`,
		`DELETE FROM sections WHERE course_id = ?`,
		`DELETE FROM courses WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), courseID); err != nil {
			return fmt.Errorf("failed to delete course %s: %w", courseID, err)
		}
	}
	return nil
}

func putInstance(ctx context.Context, tx *sqlx.Tx, module, id string, fields []model.TextField) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO instances (module_type, id) VALUES (?, ?)
		ON CONFLICT (module_type, id) DO NOTHING`), module, id); err != nil {
		return fmt.Errorf("failed to insert %s instance %s: %w", module, id, err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(
		`DELETE FROM instance_fields WHERE module_type = ? AND instance_id = ?`), module, id); err != nil {
		return fmt.Errorf("failed to clear %s instance %s: %w", module, id, err)
	}

	for pos, f := range fields {
		format := f.Format
		if format == "" {
			format = model.FormatPlain
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO instance_fields (module_type, instance_id, name, value, format, position)
			VALUES (?, ?, ?, ?, ?, ?)`), module, id, f.Name, f.Value, string(format), pos); err != nil {
			return fmt.Errorf("failed to insert field %s of %s instance %s: %w", f.Name, module, id, err)
		}
	}
	return nil
}
