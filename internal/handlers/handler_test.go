// handler_test.go provides shared test infrastructure for the handler
// tests. Handlers run against the in-memory store, so no services are
// needed.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"jobboard/internal/apperr"
	"jobboard/internal/cache"
	"jobboard/internal/category"
	"jobboard/internal/filter"
	"jobboard/internal/job"
	"jobboard/internal/models"
	"jobboard/internal/ranking"
	"jobboard/internal/search"
	"jobboard/internal/store"
)

type testAPI struct {
	router http.Handler
	mem    *store.Memory
	tree   *category.Tree
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIWithCache(t, nil)
}

func newTestAPIWithCache(t *testing.T, cc *cache.CategoryCache) *testAPI {
	t.Helper()

	m := store.NewMemory()
	tree := category.NewTree(m)
	index := job.NewIndex(m)
	fe := filter.New(tree, index, ranking.New(search.New()))
	cats := NewCategories(tree, category.NewAggregator(tree, m), fe, cc)
	jobs := NewJobs(fe, index)

	r := chi.NewRouter()
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", cats.List)
		r.Post("/", cats.Create)
		r.Get("/resolve", cats.Resolve)
		r.Get("/slug/{slug}", cats.BySlug)
		r.Get("/{id}", cats.Get)
		r.Delete("/{id}", cats.Delete)
		r.Post("/{id}/move", cats.Move)
		r.Get("/{id}/jobs", cats.Jobs)
		r.Get("/{id}/ancestors", cats.Ancestors)
		r.Get("/{id}/descendants", cats.Descendants)
		r.Get("/{id}/siblings", cats.Siblings)
	})
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", jobs.List)
		r.Get("/search", jobs.Search)
		r.Get("/by-skills", jobs.BySkills)
		r.Get("/{id}", jobs.Get)
		r.Get("/{id}/similar", jobs.Similar)
		r.Post("/{id}/applications", jobs.Apply)
	})

	return &testAPI{router: r, mem: m, tree: tree}
}

// do sends a request through the router. body is sent as-is when non-empty.
func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// category creates a category through the tree directly.
func (a *testAPI) category(t *testing.T, name string, parent *models.Category) *models.Category {
	t.Helper()
	var pid *uuid.UUID
	if parent != nil {
		pid = &parent.ID
	}
	c, err := a.tree.Create(context.Background(), name, pid)
	if err != nil {
		t.Fatalf("Create(%q): %v", name, err)
	}
	return c
}

func (a *testAPI) job(t *testing.T, j models.Job) *models.Job {
	t.Helper()
	j.IsActive = true
	if j.ExperienceLevel == "" {
		j.ExperienceLevel = models.ExperienceMid
	}
	created, err := a.mem.CreateJob(context.Background(), &j)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	return created
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

// assertError checks the status and code of a JSON error response.
func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code apperr.Code) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	body := decode[struct {
		Error apperr.Error `json:"error"`
	}](t, rr)
	if body.Error.Code != code {
		t.Errorf("code: got %q, want %q", body.Error.Code, code)
	}
}

func ptr[T any](v T) *T { return &v }
