package model

import (
	"reflect"
	"testing"
)

func newTestItemReport() *ItemReport {
	r := NewItemReport(ContentItem{ID: "1", Name: "Page"}, 4)
	r.Add(ProbeResult{URL: "http://a.example", StatusCode: 200, StatusLabel: LabelOK})
	r.Add(ProbeResult{URL: "http://b.example", StatusCode: 404, StatusLabel: "Not Found"})
	r.Add(ProbeResult{URL: "http://c.example", StatusCode: 200, StatusLabel: LabelOK})
	r.Add(ProbeResult{URL: "http://d.example", StatusCode: 0, StatusLabel: LabelUnknown})
	return r
}

func TestItemReportAdd(t *testing.T) {
	t.Parallel()

	r := newTestItemReport()
	r.Add(ProbeResult{URL: "http://a.example", StatusCode: 500})

	if r.Len() != 4 {
		t.Fatalf("len = %d, expected 4", r.Len())
	}
	got, ok := r.Get("http://a.example")
	if !ok || got.StatusCode != 200 {
		t.Errorf("duplicate add replaced the first entry: %+v", got)
	}
}

func TestItemReportApply(t *testing.T) {
	t.Parallel()

	t.Run("errors only keeps non-200 in order", func(t *testing.T) {
		t.Parallel()
		r := newTestItemReport()
		r.Apply(FilterErrorsOnly)

		expected := []string{"http://b.example", "http://d.example"}
		if !reflect.DeepEqual(r.URLs(), expected) {
			t.Errorf("got %v, expected %v", r.URLs(), expected)
		}
	})

	t.Run("all keeps everything", func(t *testing.T) {
		t.Parallel()
		r := newTestItemReport()
		r.Apply(FilterAll)
		if r.Len() != 4 {
			t.Errorf("len = %d, expected 4", r.Len())
		}
	})

	t.Run("item with only ok links becomes empty", func(t *testing.T) {
		t.Parallel()
		r := NewItemReport(ContentItem{ID: "2"}, 1)
		r.Add(ProbeResult{URL: "http://ok.example", StatusCode: 200})
		r.Apply(FilterErrorsOnly)
		if !r.IsEmpty() {
			t.Errorf("expected empty report, got %v", r.URLs())
		}
	})
}

func TestItemReportClone(t *testing.T) {
	t.Parallel()

	r := newTestItemReport()
	c := r.Clone()
	c.Apply(FilterErrorsOnly)

	if r.Len() != 4 {
		t.Errorf("filtering the clone changed the original: %v", r.URLs())
	}
	if r.ErrorCount() != 2 {
		t.Errorf("error count = %d, expected 2", r.ErrorCount())
	}
}
