package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/linkvalidator/internal/config"
	"github.com/nao1215/linkvalidator/internal/store"
)

// linkServer answers /ok with 200 and everything else with 404.
func linkServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// courseSnapshot returns two courses whose links point at base.
func courseSnapshot(base string) string {
	return fmt.Sprintf(`
courses:
  - id: "42"
    name: Networks
    sections:
      - id: "1"
        title: Week 1
        items:
          - id: "11"
            name: Reading list
            module: page
            fields:
              - name: content
                format: html
                value: <a href="%[1]s/ok">ok</a> <a href="%[1]s/missing">missing</a>
          - id: "12"
            name: Welcome
            module: label
            fields:
              - name: intro
                value: No links here.
  - id: "43"
    name: Databases
    sections:
      - id: "1"
        title: Week 1
        items:
          - id: "21"
            name: Slides
            module: url
            fields:
              - name: externalurl
                value: %[1]s/ok
`, base)
}

// newTestConfig returns a configuration backed by a fresh SQLite store
// holding courseSnapshot(base).
func newTestConfig(t *testing.T, base string) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.StoreDSN = filepath.Join(t.TempDir(), "content.db")

	s, err := store.Open(context.Background(), cfg.StoreOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	snap, err := store.ParseSnapshot(strings.NewReader(courseSnapshot(base)))
	if err != nil {
		t.Fatalf("failed to parse snapshot: %v", err)
	}
	if _, err := s.Import(context.Background(), snap); err != nil {
		t.Fatalf("failed to import snapshot: %v", err)
	}

	return cfg
}

// discardLogger returns a logger that drops every record.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
