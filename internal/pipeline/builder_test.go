package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScenario(t *testing.T) {
	t.Parallel()

	srv := linkServer(t)
	source := &memorySource{courses: map[string]*model.Course{"101": scenarioCourse(srv.URL)}}
	b := newTestBuilder(t, source, WithBuilderItemConcurrency(2))

	t.Run("all", func(t *testing.T) {
		t.Parallel()

		report, err := b.Build(context.Background(), "101", model.FilterAll)
		require.NoError(t, err)

		assert.Equal(t, model.TotalsSnapshot{TotalProbed: 4, TotalErrors: 2}, report.Totals)
		assert.Equal(t, "Networks", report.CourseName)
		assert.False(t, report.Partial)

		require.Len(t, report.Rows, 4)
		assert.Equal(t, model.RowSection, report.Rows[0].Kind)
		assert.Equal(t, "Week 1", report.Rows[0].SectionTitle)
		assert.Equal(t, model.RowItem, report.Rows[1].Kind)
		assert.Equal(t, model.RowSection, report.Rows[2].Kind)
		assert.Equal(t, model.RowItem, report.Rows[3].Kind)

		first := report.Rows[1].Item
		assert.Equal(t, []string{srv.URL + "/ok", srv.URL + "/broken"}, first.URLs())
		assert.Equal(t, []string{"200 - OK", "404 - Not Found"},
			[]string{first.Results[0].String(), first.Results[1].String()})
	})

	t.Run("errors only", func(t *testing.T) {
		t.Parallel()

		report, err := b.Build(context.Background(), "101", model.FilterErrorsOnly)
		require.NoError(t, err)

		assert.Equal(t, model.TotalsSnapshot{TotalProbed: 4, TotalErrors: 2}, report.Totals)
		require.Len(t, report.Items(), 2)
		for _, item := range report.Items() {
			require.Equal(t, 1, item.Len())
			assert.Equal(t, 404, item.Results[0].StatusCode)
		}
	})
}

func TestBuildFilterLaw(t *testing.T) {
	t.Parallel()

	srv := linkServer(t)
	source := &memorySource{courses: map[string]*model.Course{"101": scenarioCourse(srv.URL)}}
	b := newTestBuilder(t, source)

	all, err := b.Build(context.Background(), "101", model.FilterAll)
	require.NoError(t, err)
	errorsOnly, err := b.Build(context.Background(), "101", model.FilterErrorsOnly)
	require.NoError(t, err)

	assert.Equal(t, all.Totals, errorsOnly.Totals)
	require.Len(t, errorsOnly.Rows, len(all.Rows))

	for i, row := range errorsOnly.Rows {
		assert.Equal(t, all.Rows[i].Kind, row.Kind)
		if row.Kind != model.RowItem {
			continue
		}
		expected := all.Rows[i].Item.Clone()
		expected.Apply(model.FilterErrorsOnly)
		assert.Equal(t, expected.Results, row.Item.Results)
	}
}

func TestBuildIdempotent(t *testing.T) {
	t.Parallel()

	srv := linkServer(t)
	source := &memorySource{courses: map[string]*model.Course{"101": scenarioCourse(srv.URL)}}
	b := newTestBuilder(t, source)

	first, err := b.Build(context.Background(), "101", model.FilterAll)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), "101", model.FilterAll)
	require.NoError(t, err)

	assert.Equal(t, first.Totals, second.Totals)
	require.Len(t, second.Rows, len(first.Rows))
	for i := range first.Rows {
		assert.Equal(t, first.Rows[i].Kind, second.Rows[i].Kind)
		assert.Equal(t, first.Rows[i].SectionTitle, second.Rows[i].SectionTitle)
		if first.Rows[i].Item != nil {
			assert.Equal(t, first.Rows[i].Item.URLs(), second.Rows[i].Item.URLs())
			for j, res := range first.Rows[i].Item.Results {
				assert.Equal(t, res.String(), second.Rows[i].Item.Results[j].String())
			}
		}
	}
	assert.NotEqual(t, first.ID, second.ID)
}

func TestBuildEmptySectionsKeepHeaders(t *testing.T) {
	t.Parallel()

	source := &memorySource{courses: map[string]*model.Course{
		"7": {
			ID:   "7",
			Name: "Empty",
			Sections: []model.Section{
				{ID: "s1", Title: "General"},
				{ID: "s2", Title: "Topic 1", Items: []model.ContentItem{textItem("1", "s2", "no links")}},
			},
		},
	}}
	b := newTestBuilder(t, source)

	report, err := b.Build(context.Background(), "7", model.FilterErrorsOnly)
	require.NoError(t, err)

	require.Len(t, report.Rows, 3)
	assert.Equal(t, 2, report.SectionCount())
	assert.True(t, report.Rows[2].Item.IsEmpty())
	assert.Equal(t, model.TotalsSnapshot{}, report.Totals)
}

func TestBuildCourseNotFound(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, &memorySource{courses: map[string]*model.Course{}})

	report, err := b.Build(context.Background(), "404", model.FilterAll)

	assert.Nil(t, report)
	assert.ErrorIs(t, err, model.ErrCourseNotFound)
}

type missingFields struct{ id string }

func (m missingFields) TextFields(context.Context) ([]model.TextField, error) {
	return nil, model.NewLookupError(m.id, model.ErrItemNotFound)
}

func lookupCourse(base string) *model.Course {
	c := scenarioCourse(base)
	c.Sections[0].Items = append(c.Sections[0].Items, model.ContentItem{
		ID: "99", Name: "Deleted", Visible: true, SectionID: "s1", Fields: missingFields{id: "99"},
	})
	return c
}

func TestBuildLookupError(t *testing.T) {
	t.Parallel()

	srv := linkServer(t)
	source := &memorySource{courses: map[string]*model.Course{"101": lookupCourse(srv.URL)}}

	t.Run("skips and records the item by default", func(t *testing.T) {
		t.Parallel()

		b := newTestBuilder(t, source)
		report, err := b.Build(context.Background(), "101", model.FilterAll)
		require.NoError(t, err)

		assert.Equal(t, []string{"99"}, report.SkippedItems)
		assert.Len(t, report.Items(), 2)
		assert.Equal(t, model.TotalsSnapshot{TotalProbed: 4, TotalErrors: 2}, report.Totals)
	})

	t.Run("aborts when configured", func(t *testing.T) {
		t.Parallel()

		b := newTestBuilder(t, source, WithBuilderAbortOnLookupError(true))
		report, err := b.Build(context.Background(), "101", model.FilterAll)

		assert.Nil(t, report)
		var lookupErr *model.LookupError
		require.ErrorAs(t, err, &lookupErr)
		assert.Equal(t, "99", lookupErr.ItemID)
	})
}

func TestBuildCancelledKeepsCompletedItems(t *testing.T) {
	t.Parallel()

	srv := linkServer(t)
	course := &model.Course{
		ID:   "5",
		Name: "Slow",
		Sections: []model.Section{
			{ID: "s1", Title: "Fast", Items: []model.ContentItem{textItem("1", "s1", srv.URL+"/ok")}},
			{ID: "s2", Title: "Slow", Items: []model.ContentItem{textItem("2", "s2", srv.URL+"/slow")}},
		},
	}
	b := newTestBuilder(t, &memorySource{courses: map[string]*model.Course{"5": course}})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	report, err := b.Build(ctx, "5", model.FilterAll)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	require.NotNil(t, report)
	assert.True(t, report.Partial)

	// Both headers stay; only the finished item survives.
	assert.Equal(t, 2, report.SectionCount())
	require.Len(t, report.Items(), 1)
	assert.Equal(t, "1", report.Items()[0].Item.ID)
	assert.Equal(t, model.TotalsSnapshot{TotalProbed: 1, TotalErrors: 0}, report.Totals)
	assert.Contains(t, report.Steps, "summarize")
}

// cancellingSource cancels the build right after handing out the course.
type cancellingSource struct {
	course *model.Course
	cancel context.CancelFunc
}

func (c *cancellingSource) Course(_ context.Context, _ string) (*model.Course, error) {
	c.cancel()
	return c.course, nil
}

func TestBuildCancelledBeforeValidation(t *testing.T) {
	t.Parallel()

	srv := linkServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := newTestBuilder(t, &cancellingSource{course: scenarioCourse(srv.URL), cancel: cancel})

	report, err := b.Build(ctx, "101", model.FilterAll)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.True(t, report.Partial)

	// Loaded but unchecked items are not reported as clean.
	assert.Equal(t, 2, report.SectionCount())
	assert.Empty(t, report.Items())
	assert.Equal(t, model.TotalsSnapshot{}, report.Totals)
	assert.Contains(t, report.Steps, "load")
	assert.NotContains(t, report.Steps, "validate")
}

type recordingObserver struct {
	reports []*model.Report
}

func (r *recordingObserver) ObserveBuild(report *model.Report, _ time.Duration) {
	r.reports = append(r.reports, report)
}

func TestBuildObserver(t *testing.T) {
	t.Parallel()

	srv := linkServer(t)
	obs := &recordingObserver{}
	source := &memorySource{courses: map[string]*model.Course{"101": scenarioCourse(srv.URL)}}
	b := newTestBuilder(t, source, WithBuildObserver(obs))

	report, err := b.Build(context.Background(), "101", model.FilterAll)
	require.NoError(t, err)

	require.Len(t, obs.reports, 1)
	assert.Same(t, report, obs.reports[0])
}
