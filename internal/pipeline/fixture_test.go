package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/nao1215/linkvalidator/internal/probe"
	"github.com/nao1215/linkvalidator/internal/validator"
	"github.com/stretchr/testify/require"
)

// memorySource is an in-memory ContentSource.
type memorySource struct {
	mu      sync.Mutex
	courses map[string]*model.Course
	calls   int
}

func (m *memorySource) Course(_ context.Context, id string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	c, ok := m.courses[id]
	if !ok {
		return nil, model.ErrCourseNotFound
	}
	return c, nil
}

// linkServer answers /ok with 200, /broken with 404 and /slow after a delay.
func linkServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func textItem(id, section, text string) model.ContentItem {
	return model.ContentItem{
		ID:        id,
		Name:      "Item " + id,
		Visible:   true,
		SectionID: section,
		Fields:    model.StaticFields{{Name: "intro", Value: text}},
	}
}

// scenarioCourse has two sections, each with one item linking to one
// working and one broken URL.
func scenarioCourse(base string) *model.Course {
	return &model.Course{
		ID:   "101",
		Name: "Networks",
		Sections: []model.Section{
			{ID: "s1", Title: "Week 1", Items: []model.ContentItem{
				textItem("1", "s1", "Read "+base+"/ok and "+base+"/broken."),
			}},
			{ID: "s2", Title: "Week 2", Items: []model.ContentItem{
				textItem("2", "s2", "Slides ("+base+"/ok?week=2) and notes "+base+"/broken?week=2"),
			}},
		},
	}
}

func newTestBuilder(t *testing.T, source ContentSource, opts ...BuilderOption) *Builder {
	t.Helper()
	policy := probe.DefaultPolicy()
	policy.ConnectTimeout = 500 * time.Millisecond
	policy.TotalTimeout = 2 * time.Second
	p, err := probe.New(policy)
	require.NoError(t, err)
	return NewBuilder(source, validator.New(p), opts...)
}
