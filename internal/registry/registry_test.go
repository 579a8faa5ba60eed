package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"aegis/internal/model"
)

func newTestClient(t *testing.T, reg model.Registry, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := New()
	c.baseURLs = map[model.Registry]string{reg: server.URL}
	return c
}

func TestExists_404IsPhantom(t *testing.T) {
	c := newTestClient(t, model.RegistryNPM, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	exists, err := c.Exists(context.Background(), "left-pad-typo", model.RegistryNPM)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false for 404")
	}
}

func TestExists_ServerErrorPropagates(t *testing.T) {
	c := newTestClient(t, model.RegistryNPM, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Exists(context.Background(), "left-pad", model.RegistryNPM)
	if err == nil {
		t.Fatalf("expected error to propagate on non-404 failure")
	}
}

func TestInfo_NPM_ParsesRepositoryAndCreated(t *testing.T) {
	c := newTestClient(t, model.RegistryNPM, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "left-pad",
			"description": "pad a string",
			"dist-tags": {"latest": "1.3.0"},
			"time": {"created": "2014-01-01T00:00:00.000Z"},
			"repository": {"url": "git+https://github.com/stevemao/left-pad.git"}
		}`))
	})

	info, err := c.Info(context.Background(), "left-pad", model.RegistryNPM)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info == nil {
		t.Fatalf("expected info, got nil")
	}
	if info.RepositoryURL != "https://github.com/stevemao/left-pad" {
		t.Errorf("expected normalized repo URL, got %q", info.RepositoryURL)
	}
	if info.Created.Year() != 2014 {
		t.Errorf("expected created year 2014, got %v", info.Created)
	}
}

func TestInfo_PyPI_SourceURLPreferenceOrder(t *testing.T) {
	c := newTestClient(t, model.RegistryPyPI, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"info": {
				"name": "flask",
				"version": "2.0.0",
				"project_urls": {"Repository": "https://github.com/pallets/flask", "GitHub": "https://github.com/other/other"}
			},
			"releases": {}
		}`))
	})

	info, err := c.Info(context.Background(), "flask", model.RegistryPyPI)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.RepositoryURL != "https://github.com/pallets/flask" {
		t.Errorf("expected Repository key preferred over GitHub, got %q", info.RepositoryURL)
	}
}

func TestInfo_Cached(t *testing.T) {
	calls := 0
	c := newTestClient(t, model.RegistryCrates, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"crate": {"name": "serde", "created_at": "2015-01-01T00:00:00Z"}}`))
	})

	for i := 0; i < 3; i++ {
		if _, err := c.Info(context.Background(), "serde", model.RegistryCrates); err != nil {
			t.Fatalf("Info: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 upstream call due to caching, got %d", calls)
	}
}

func TestExists_NegativeResultCached(t *testing.T) {
	calls := 0
	c := newTestClient(t, model.RegistryNPM, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 3; i++ {
		exists, err := c.Exists(context.Background(), "definitely-not-real-xyz", model.RegistryNPM)
		if err != nil {
			t.Fatalf("Exists: %v", err)
		}
		if exists {
			t.Fatalf("expected phantom")
		}
	}
	if calls != 1 {
		t.Fatalf("expected the 404 to be cached after 1 call, got %d", calls)
	}
}

func TestInfo_PyPI_ParsesISO8601UploadTime(t *testing.T) {
	c := newTestClient(t, model.RegistryPyPI, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"info": {"name": "requests", "version": "2.31.0"},
			"releases": {"0.1": [{"upload_time_iso_8601": "2011-02-14T00:00:00.123456Z"}]}
		}`))
	})

	info, err := c.Info(context.Background(), "requests", model.RegistryPyPI)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info == nil || info.Created.Year() != 2011 {
		t.Fatalf("expected creation year 2011 from earliest release, got %+v", info)
	}
}
