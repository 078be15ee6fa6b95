// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/category"
	"jobboard/internal/job"
	"jobboard/internal/models"
)

// Memory is an in-process store holding categories and jobs. It enforces
// the same unique constraints as the database schema and evaluates job
// criteria with job.Criteria.Match. Safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]models.Category
	jobs       map[uuid.UUID]models.Job
	now        func() time.Time
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		categories: make(map[uuid.UUID]models.Category),
		jobs:       make(map[uuid.UUID]models.Job),
		now:        time.Now,
	}
}

// FindByID returns a category by ID, or nil.
func (m *Memory) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.categories[id]; ok {
		return &c, nil
	}
	return nil, nil
}

// FindBySlug returns a category by slug, or nil.
func (m *Memory) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

// FindByName returns the child of parentID called name, or nil.
func (m *Memory) FindByName(_ context.Context, parentID *uuid.UUID, name string) (*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c := m.byNameLocked(parentID, name); c != nil {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

// SlugExists reports whether any category uses slug.
func (m *Memory) SlugExists(ctx context.Context, slug string) (bool, error) {
	c, err := m.FindBySlug(ctx, slug)
	return c != nil, err
}

// ListChildren returns the direct children of every category in parentIDs,
// ordered by name.
func (m *Memory) ListChildren(_ context.Context, parentIDs []uuid.UUID) ([]models.Category, error) {
	want := make(map[uuid.UUID]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = struct{}{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Category
	for _, c := range m.categories {
		if c.ParentID == nil {
			continue
		}
		if _, ok := want[*c.ParentID]; ok {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out, nil
}

// ListRoots returns every category without a parent, ordered by name.
func (m *Memory) ListRoots(_ context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Category
	for _, c := range m.categories {
		if c.ParentID == nil {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out, nil
}

// CreateCategory stores a copy of c under a fresh ID.
func (m *Memory) CreateCategory(_ context.Context, c *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Slug == c.Slug {
			return nil, category.ErrSlugTaken
		}
	}
	if m.byNameLocked(c.ParentID, c.Name) != nil {
		return nil, category.ErrNameTaken
	}

	now := m.now().UTC()
	stored := models.Category{
		ID:        uuid.New(),
		Name:      c.Name,
		Slug:      c.Slug,
		ParentID:  copyID(c.ParentID),
		Status:    c.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if stored.Status == "" {
		stored.Status = models.CategoryActive
	}
	m.categories[stored.ID] = stored
	return &stored, nil
}

// UpdateParent re-attaches a category.
func (m *Memory) UpdateParent(_ context.Context, id uuid.UUID, parentID *uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, fmt.Errorf("update category parent: category %s not found", id)
	}
	if other := m.byNameLocked(parentID, c.Name); other != nil && other.ID != id {
		return nil, category.ErrNameTaken
	}
	c.ParentID = copyID(parentID)
	c.UpdatedAt = m.now().UTC()
	m.categories[id] = c
	return &c, nil
}

// UpdateStatus sets the lifecycle status of a category.
func (m *Memory) UpdateStatus(_ context.Context, id uuid.UUID, status models.CategoryStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return fmt.Errorf("update category status: category %s not found", id)
	}
	c.Status = status
	c.UpdatedAt = m.now().UTC()
	m.categories[id] = c
	return nil
}

func (m *Memory) byNameLocked(parentID *uuid.UUID, name string) *models.Category {
	for _, c := range m.categories {
		if c.Name == name && sameID(c.ParentID, parentID) {
			return &c
		}
	}
	return nil
}

// CreateJob stores a copy of j. A zero ID or CreatedAt is filled in.
func (m *Memory) CreateJob(_ context.Context, j *models.Job) (*models.Job, error) {
	stored := cloneJob(*j)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[stored.ID]; ok {
		return nil, fmt.Errorf("create job: id %s already exists", stored.ID)
	}
	m.jobs[stored.ID] = stored
	out := cloneJob(stored)
	return &out, nil
}

// SetJobActive soft-deletes or restores a job.
func (m *Memory) SetJobActive(_ context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("set job active: job %s not found", id)
	}
	j.IsActive = active
	m.jobs[id] = j
	return nil
}

// QueryJobs returns the active jobs matching c, newest first.
func (m *Memory) QueryJobs(_ context.Context, c *job.Criteria) ([]models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats job.Stats
	if c.Popular {
		stats = m.statsLocked()
	}
	out := []models.Job{}
	for _, j := range m.jobs {
		if c.Match(&j, stats) {
			out = append(out, cloneJob(j))
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].ID.String() < out[b].ID.String()
	})
	return out, nil
}

// statsLocked averages the counters over active jobs.
func (m *Memory) statsLocked() job.Stats {
	var s job.Stats
	n := 0
	for _, j := range m.jobs {
		if !j.IsActive {
			continue
		}
		s.AvgViews += float64(j.ViewsCount)
		s.AvgApplications += float64(j.ApplicationsCount)
		n++
	}
	if n > 0 {
		s.AvgViews /= float64(n)
		s.AvgApplications /= float64(n)
	}
	return s
}

// FindJob returns a job by ID, active or not, or nil.
func (m *Memory) FindJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if j, ok := m.jobs[id]; ok {
		out := cloneJob(j)
		return &out, nil
	}
	return nil, nil
}

// CountActiveJobs counts distinct active jobs linked to any of categoryIDs.
func (m *Memory) CountActiveJobs(_ context.Context, categoryIDs []uuid.UUID) (int, error) {
	want := make(map[uuid.UUID]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		want[id] = struct{}{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, j := range m.jobs {
		if j.IsActive && j.InCategory(want) {
			n++
		}
	}
	return n, nil
}

// IncrementViews bumps the view counter of a job.
func (m *Memory) IncrementViews(_ context.Context, id uuid.UUID) error {
	return m.bump(id, func(j *models.Job) { j.ViewsCount++ })
}

// IncrementApplications bumps the application counter of a job.
func (m *Memory) IncrementApplications(_ context.Context, id uuid.UUID) error {
	return m.bump(id, func(j *models.Job) { j.ApplicationsCount++ })
}

func (m *Memory) bump(id uuid.UUID, fn func(*models.Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	fn(&j)
	m.jobs[id] = j
	return nil
}

// cloneJob copies j so callers never share slices with the store.
func cloneJob(j models.Job) models.Job {
	j.RequiredSkills = append([]string{}, j.RequiredSkills...)
	j.PreferredSkills = append([]string{}, j.PreferredSkills...)
	j.CategoryIDs = append([]uuid.UUID{}, j.CategoryIDs...)
	return j
}

func sortCategories(cats []models.Category) {
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Name != cats[j].Name {
			return cats[i].Name < cats[j].Name
		}
		return cats[i].ID.String() < cats[j].ID.String()
	})
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
