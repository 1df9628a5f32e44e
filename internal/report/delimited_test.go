package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelimitedWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes one tab separated row per URL", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewDelimitedWriter(&buf).Write(createTestReport())
		require.NoError(t, err)
		assert.Equal(t, buf.Len(), n)

		r := csv.NewReader(&buf)
		r.Comma = '\t'
		records, err := r.ReadAll()
		require.NoError(t, err)

		assert.Equal(t, [][]string{
			{"Section", "Title", "URL", "Result"},
			{"Week 1", "Intro Page", "https://example.com/ok", "200 - OK"},
			{"Week 1", "Intro Page", "https://example.com/missing", "404 - Not Found"},
			{"Week 1", "Hidden link", "https://slow.example.com/", "0 - Invalid or unknown error"},
			{"Week 2", "Resources & more", "www.example.org", "URL is invalid"},
		}, records)
	})

	t.Run("uses the configured separator", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewDelimitedWriter(&buf, WithComma(',')).Write(createTestReport())
		require.NoError(t, err)

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, 5)
	})

	t.Run("quotes fields containing the separator", func(t *testing.T) {
		t.Parallel()

		report := model.NewReport("1", model.FilterAll)
		report.Rows = []model.Row{
			{Kind: model.RowSection, SectionTitle: "Intro, part 1"},
			{Kind: model.RowItem, SectionTitle: "Intro, part 1", Item: &model.ItemReport{
				Item:    model.ContentItem{ID: "1", Name: "Read \"this\"", Visible: true},
				Results: []model.ProbeResult{{URL: "https://a.example/", StatusCode: 200, StatusLabel: "OK"}},
			}},
		}

		var buf bytes.Buffer
		_, err := NewDelimitedWriter(&buf, WithComma(',')).Write(report)
		require.NoError(t, err)

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, []string{"Intro, part 1", `Read "this"`, "https://a.example/", "200 - OK"}, records[1])
	})

	t.Run("writes only the header for an empty report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewDelimitedWriter(&buf).Write(model.NewReport("1", model.FilterErrorsOnly))
		require.NoError(t, err)
		assert.Equal(t, "Section\tTitle\tURL\tResult\n", buf.String())
	})
}
