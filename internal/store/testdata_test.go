package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const snapshotYAML = `
courses:
  - id: "101"
    name: Networks
    sections:
      - id: "s1"
        title: Week 1
        items:
          - id: "11"
            name: Reading list
            module: page
            fields:
              - name: intro
                value: Start at http://example.com/start.
              - name: content
                format: html
                value: <a href="https://example.com/a">A</a>
          - id: "12"
            name: Course site
            module: url
            visible: false
            instance: "7"
      - id: "s0"
        title: Week 2
      - id: "s2"
        title: Week 3
        items:
          - id: "13"
            name: Deleted forum
            module: forum
            instance: "999"
instances:
  - module: url
    id: "7"
    fields:
      - name: externalurl
        value: https://example.org/
`

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DefaultOptions(filepath.Join(t.TempDir(), "content.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func importTestSnapshot(t *testing.T, s *Store) {
	t.Helper()
	snap, err := ParseSnapshot(strings.NewReader(snapshotYAML))
	require.NoError(t, err)
	_, err = s.Import(context.Background(), snap)
	require.NoError(t, err)
}
