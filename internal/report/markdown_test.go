package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary and sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewMarkdownWriter(&buf).Write(createTestReport())
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "# Link Validator Report")
		assert.Contains(t, out, "Intro to Go")
		assert.Contains(t, out, "Total links found")
		assert.Contains(t, out, "```mermaid")
		assert.Contains(t, out, "[!CAUTION]")
		assert.Contains(t, out, "### Week 1")
		assert.Contains(t, out, "### Week 2")
		assert.Contains(t, out, "404 - Not Found")
		assert.Less(t, strings.Index(out, "### Week 1"), strings.Index(out, "### Week 2"))
	})

	t.Run("tips when every link works", func(t *testing.T) {
		t.Parallel()

		report := model.NewReport("1", model.FilterAll)
		report.Rows = []model.Row{
			{Kind: model.RowSection, SectionTitle: "Only"},
			{Kind: model.RowItem, SectionTitle: "Only", Item: &model.ItemReport{
				Item:    model.ContentItem{ID: "1", Name: "Page", Visible: true},
				Results: []model.ProbeResult{{URL: "https://ok.example/", StatusCode: 200, StatusLabel: "OK"}},
			}},
		}
		report.Totals = model.TotalsSnapshot{TotalProbed: 1}

		var buf bytes.Buffer
		_, err := NewMarkdownWriter(&buf).Write(report)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "[!TIP]")
		assert.NotContains(t, buf.String(), "[!CAUTION]")
	})

	t.Run("notes sections without links", func(t *testing.T) {
		t.Parallel()

		report := model.NewReport("1", model.FilterErrorsOnly)
		report.Rows = []model.Row{{Kind: model.RowSection, SectionTitle: "Quiet"}}

		var buf bytes.Buffer
		_, err := NewMarkdownWriter(&buf).Write(report)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "### Quiet")
		assert.Contains(t, buf.String(), "No links.")
		assert.Contains(t, buf.String(), "[!NOTE]")
	})
}
