package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/linkvalidator/internal/config"
	"github.com/nao1215/linkvalidator/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunImport(t *testing.T) {
	t.Parallel()

	newConfig := func(t *testing.T) *config.Config {
		t.Helper()
		cfg := config.NewConfig()
		cfg.StoreDSN = filepath.Join(t.TempDir(), "content.db")
		return cfg
	}

	t.Run("file and stdin", func(t *testing.T) {
		t.Parallel()
		cfg := newConfig(t)
		file := filepath.Join(t.TempDir(), "course.yaml")
		require.NoError(t, os.WriteFile(file, []byte(courseSnapshot("https://example.com")), 0600))

		stdin := strings.NewReader(`
courses:
  - id: "50"
    name: Statistics
    sections:
      - id: "1"
        title: Week 1
`)
		var out bytes.Buffer
		require.NoError(t, runImport(context.Background(), cfg, discardLogger(), []string{file, "-"}, stdin, &out))

		assert.Contains(t, out.String(), "Imported "+file+": 2 courses, 2 sections, 3 items")
		assert.Contains(t, out.String(), "Imported -: 1 courses")

		s, err := store.Open(context.Background(), cfg.StoreOptions())
		require.NoError(t, err)
		defer s.Close()
		courses, err := s.ListCourses(context.Background())
		require.NoError(t, err)
		require.Len(t, courses, 3)
		assert.Equal(t, "42", courses[0].ID)
		assert.Equal(t, "50", courses[2].ID)
	})

	t.Run("invalid snapshot", func(t *testing.T) {
		t.Parallel()
		cfg := newConfig(t)
		file := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(file, []byte("courses: []\n"), 0600))

		err := runImport(context.Background(), cfg, discardLogger(), []string{file}, nil, &bytes.Buffer{})
		assert.ErrorIs(t, err, store.ErrInvalidSnapshot)
		assert.Contains(t, err.Error(), file)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		cfg := newConfig(t)
		err := runImport(context.Background(), cfg, discardLogger(),
			[]string{filepath.Join(t.TempDir(), "nope.yaml")}, nil, &bytes.Buffer{})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
