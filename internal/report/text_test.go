package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders sections items and totals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewTextWriter(&buf).Write(createTestReport())
		require.NoError(t, err)
		assert.Equal(t, buf.Len(), n)

		out := buf.String()
		assert.Contains(t, out, "Intro to Go")
		assert.Contains(t, out, "Week 1")
		assert.Contains(t, out, "Week 2")
		assert.Contains(t, out, "Page: Intro Page")
		assert.Contains(t, out, "Url: Hidden link (hidden)")
		assert.Contains(t, out, "404 - Not Found")
		assert.Contains(t, out, "URL is invalid")
		assert.NotContains(t, out, "Empty label")
		assert.Contains(t, out, "Total links found: 4\n")
		assert.Contains(t, out, "Total errors found: 3\n")
		assert.Less(t, strings.Index(out, "Week 1"), strings.Index(out, "Week 2"))
	})

	t.Run("shows empty items when requested", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewTextWriter(&buf, WithShowEmptyItems(true)).Write(createTestReport())
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Label: Empty label")
	})

	t.Run("notes partial reports", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Partial = true
		report.SkippedItems = []string{"7", "8"}

		var buf bytes.Buffer
		_, err := NewTextWriter(&buf).Write(report)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "incomplete")
		assert.Contains(t, buf.String(), "Skipped items: 7, 8")
	})
}
