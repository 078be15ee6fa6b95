package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/category"
	"jobboard/internal/job"
	"jobboard/internal/models"
)

func TestMemoryCategoryConstraints(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	root, err := m.CreateCategory(ctx, &models.Category{Name: "Technology", Slug: "technology"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if root.ID == uuid.Nil {
		t.Error("expected an ID to be assigned")
	}
	if root.Status != models.CategoryActive {
		t.Errorf("status = %q, want active", root.Status)
	}

	_, err = m.CreateCategory(ctx, &models.Category{Name: "Other", Slug: "technology"})
	if !errors.Is(err, category.ErrSlugTaken) {
		t.Errorf("duplicate slug: err = %v, want ErrSlugTaken", err)
	}

	_, err = m.CreateCategory(ctx, &models.Category{Name: "Technology", Slug: "technology-1"})
	if !errors.Is(err, category.ErrNameTaken) {
		t.Errorf("duplicate root name: err = %v, want ErrNameTaken", err)
	}

	// Same name under a different parent is fine.
	if _, err := m.CreateCategory(ctx, &models.Category{Name: "Technology", Slug: "technology-technology", ParentID: &root.ID}); err != nil {
		t.Errorf("same name under parent: %v", err)
	}
}

func TestMemoryUpdateParentNameClash(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	a, _ := m.CreateCategory(ctx, &models.Category{Name: "A", Slug: "a"})
	b, _ := m.CreateCategory(ctx, &models.Category{Name: "B", Slug: "b"})
	m.CreateCategory(ctx, &models.Category{Name: "Go", Slug: "a-go", ParentID: &a.ID})
	goB, _ := m.CreateCategory(ctx, &models.Category{Name: "Go", Slug: "b-go", ParentID: &b.ID})

	if _, err := m.UpdateParent(ctx, goB.ID, &a.ID); !errors.Is(err, category.ErrNameTaken) {
		t.Errorf("err = %v, want ErrNameTaken", err)
	}

	moved, err := m.UpdateParent(ctx, goB.ID, nil)
	if err != nil {
		t.Fatalf("UpdateParent to root: %v", err)
	}
	if moved.ParentID != nil {
		t.Errorf("ParentID = %v, want nil", moved.ParentID)
	}
}

func TestMemoryListing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	z, _ := m.CreateCategory(ctx, &models.Category{Name: "Zeta", Slug: "zeta"})
	a, _ := m.CreateCategory(ctx, &models.Category{Name: "Alpha", Slug: "alpha"})
	m.CreateCategory(ctx, &models.Category{Name: "Two", Slug: "zeta-two", ParentID: &z.ID})
	m.CreateCategory(ctx, &models.Category{Name: "One", Slug: "alpha-one", ParentID: &a.ID})

	roots, _ := m.ListRoots(ctx)
	if len(roots) != 2 || roots[0].Name != "Alpha" || roots[1].Name != "Zeta" {
		t.Errorf("roots = %+v, want Alpha, Zeta", roots)
	}

	children, _ := m.ListChildren(ctx, []uuid.UUID{z.ID, a.ID})
	if len(children) != 2 || children[0].Name != "One" || children[1].Name != "Two" {
		t.Errorf("children = %+v, want One, Two", children)
	}

	if found, _ := m.FindBySlug(ctx, "zeta-two"); found == nil || found.Name != "Two" {
		t.Errorf("FindBySlug = %+v", found)
	}
	if found, _ := m.FindBySlug(ctx, "missing"); found != nil {
		t.Errorf("FindBySlug(missing) = %+v, want nil", found)
	}
	if exists, _ := m.SlugExists(ctx, "alpha-one"); !exists {
		t.Error("SlugExists(alpha-one) = false")
	}
}

func TestMemoryQueryJobs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	older, _ := m.CreateJob(ctx, &models.Job{Title: "older", IsActive: true, CreatedAt: base})
	newer, _ := m.CreateJob(ctx, &models.Job{Title: "newer", IsActive: true, CreatedAt: base.Add(time.Hour)})
	m.CreateJob(ctx, &models.Job{Title: "inactive", IsActive: false, CreatedAt: base.Add(2 * time.Hour)})

	jobs, err := m.QueryJobs(ctx, &job.Criteria{})
	if err != nil {
		t.Fatalf("QueryJobs: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != newer.ID || jobs[1].ID != older.ID {
		t.Errorf("jobs = %v, want newer then older", jobs)
	}

	if err := m.SetJobActive(ctx, newer.ID, false); err != nil {
		t.Fatalf("SetJobActive: %v", err)
	}
	jobs, _ = m.QueryJobs(ctx, &job.Criteria{})
	if len(jobs) != 1 || jobs[0].ID != older.ID {
		t.Errorf("after soft delete jobs = %v, want only older", jobs)
	}
}

func TestMemoryQueryJobsPopular(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	quiet, _ := m.CreateJob(ctx, &models.Job{Title: "quiet", IsActive: true})
	busy, _ := m.CreateJob(ctx, &models.Job{Title: "busy", IsActive: true})
	for range 4 {
		m.IncrementViews(ctx, busy.ID)
	}
	m.IncrementApplications(ctx, quiet.ID)
	m.CreateJob(ctx, &models.Job{Title: "dormant", IsActive: true})

	// Averages: views 4/3, applications 1/3. Both busy and quiet are above one.
	jobs, _ := m.QueryJobs(ctx, &job.Criteria{Popular: true})
	if len(jobs) != 2 {
		t.Fatalf("got %d popular jobs, want 2", len(jobs))
	}
	for _, j := range jobs {
		if j.Title == "dormant" {
			t.Error("dormant job should not be popular")
		}
	}
}

func TestMemoryCountActiveJobsDistinct(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a, b := uuid.New(), uuid.New()

	m.CreateJob(ctx, &models.Job{IsActive: true, CategoryIDs: []uuid.UUID{a, b}})
	m.CreateJob(ctx, &models.Job{IsActive: true, CategoryIDs: []uuid.UUID{b}})
	m.CreateJob(ctx, &models.Job{IsActive: false, CategoryIDs: []uuid.UUID{a}})

	tests := []struct {
		ids  []uuid.UUID
		want int
	}{
		{[]uuid.UUID{a}, 1},
		{[]uuid.UUID{b}, 2},
		{[]uuid.UUID{a, b}, 2},
		{nil, 0},
	}
	for _, tt := range tests {
		got, err := m.CountActiveJobs(ctx, tt.ids)
		if err != nil {
			t.Fatalf("CountActiveJobs: %v", err)
		}
		if got != tt.want {
			t.Errorf("CountActiveJobs(%v) = %d, want %d", tt.ids, got, tt.want)
		}
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	created, _ := m.CreateJob(ctx, &models.Job{IsActive: true, RequiredSkills: []string{"Go"}})
	created.RequiredSkills[0] = "Rust"

	stored, _ := m.FindJob(ctx, created.ID)
	if stored.RequiredSkills[0] != "Go" {
		t.Errorf("store shares slices with callers: %v", stored.RequiredSkills)
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	j, _ := m.CreateJob(ctx, &models.Job{IsActive: true})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.IncrementViews(ctx, j.ID)
		}()
		go func() {
			defer wg.Done()
			m.QueryJobs(ctx, &job.Criteria{Popular: true})
		}()
	}
	wg.Wait()

	got, _ := m.FindJob(ctx, j.ID)
	if got.ViewsCount != 20 {
		t.Errorf("ViewsCount = %d, want 20", got.ViewsCount)
	}
}
