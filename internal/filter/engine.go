// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package filter turns job listing parameters into a resolved criteria set,
// runs it through the job index and orders the result. Category references
// that do not resolve to an active category make the result empty instead
// of failing the request.
package filter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/apperr"
	"jobboard/internal/job"
	"jobboard/internal/models"
	"jobboard/internal/ranking"
)

// CategoryResolver is the part of the category tree the engine needs.
type CategoryResolver interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	ExpandActive(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	ResolvePath(ctx context.Context, path string) (*models.Category, error)
}

// Engine plans and runs job listing queries.
type Engine struct {
	categories CategoryResolver
	jobs       *job.Index
	ranker     *ranking.Engine
	now        func() time.Time
}

// New returns an Engine. Relative date filters are measured from the wall
// clock unless SetClock is used.
func New(categories CategoryResolver, jobs *job.Index, ranker *ranking.Engine) *Engine {
	return &Engine{categories: categories, jobs: jobs, ranker: ranker, now: time.Now}
}

// SetClock replaces the clock used for posted_days_ago and recent.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Plan resolves p into criteria. Category lookups hit the tree; everything
// else is copied across.
func (e *Engine) Plan(ctx context.Context, p *Params) (*job.Criteria, error) {
	c := &job.Criteria{
		Location:        p.Location,
		LocationExact:   p.LocationExact,
		NearLocation:    nearTerm(p.NearLocation),
		SalaryMinGTE:    p.SalaryMinGTE,
		SalaryMaxLTE:    p.SalaryMaxLTE,
		SalaryRangeMin:  p.SalaryRangeMin,
		SalaryRangeMax:  p.SalaryRangeMax,
		CompanyID:       p.Company,
		CompanyName:     p.CompanyName,
		IndustryID:      p.Industry,
		JobTypeID:       p.JobType,
		IsRemote:        p.IsRemote,
		RemoteFriendly:  p.RemoteFriendly,
		IsFeatured:      p.IsFeatured,
		PostedBefore:    p.PostedBefore,
		DeadlineAfter:   p.DeadlineAfter,
		DeadlineBefore:  p.DeadlineBefore,
		HasDeadline:     p.HasDeadline,
		RequiredSkills:  p.RequiredSkills,
		PreferredSkills: p.PreferredSkills,
		Popular:         p.Popular,
	}

	// experience_level and experience_levels are separate dimensions; when
	// both are given a job must satisfy each.
	switch {
	case p.ExperienceLevel != "" && len(p.ExperienceLevels) > 0:
		if !containsLevel(p.ExperienceLevels, p.ExperienceLevel) {
			c.Empty = true
		}
		c.ExperienceLevels = []models.ExperienceLevel{p.ExperienceLevel}
	case p.ExperienceLevel != "":
		c.ExperienceLevels = []models.ExperienceLevel{p.ExperienceLevel}
	default:
		c.ExperienceLevels = p.ExperienceLevels
	}

	c.PostedAfter = p.PostedAfter
	now := e.now()
	if p.PostedDaysAgo != nil {
		c.PostedAfter = later(c.PostedAfter, now.AddDate(0, 0, -*p.PostedDaysAgo))
	}
	if p.Recent != "" {
		c.PostedAfter = later(c.PostedAfter, recentSince(p.Recent, now))
	}

	if err := e.planCategories(ctx, p, c); err != nil {
		return nil, err
	}
	return c, nil
}

// planCategories adds one ID set per category dimension. Any dimension that
// resolves to nothing empties the whole query.
func (e *Engine) planCategories(ctx context.Context, p *Params, c *job.Criteria) error {
	if len(p.Categories) > 0 {
		var ids []uuid.UUID
		for _, id := range p.Categories {
			node, err := activeOnly(e.categories.Get(ctx, id))
			if err != nil {
				return err
			}
			if node != nil {
				ids = append(ids, node.ID)
			}
		}
		if !e.addSet(c, ids) {
			return nil
		}
	}

	if p.CategorySlug != "" {
		node, err := activeOnly(e.categories.FindBySlug(ctx, p.CategorySlug))
		if err != nil {
			return err
		}
		if !e.addSet(c, idsOf(node)) {
			return nil
		}
	}

	if len(p.CategorySlugs) > 0 {
		var ids []uuid.UUID
		for _, s := range p.CategorySlugs {
			node, err := activeOnly(e.categories.FindBySlug(ctx, s))
			if err != nil {
				return err
			}
			ids = append(ids, idsOf(node)...)
		}
		if !e.addSet(c, ids) {
			return nil
		}
	}

	if p.CategoryHierarchy != nil {
		node, err := activeOnly(e.categories.Get(ctx, *p.CategoryHierarchy))
		if err != nil {
			return err
		}
		if ok, err := e.addExpanded(ctx, c, node); err != nil || !ok {
			return err
		}
	}

	if p.CategoryTree != "" {
		node, err := activeOnly(e.categories.ResolvePath(ctx, p.CategoryTree))
		if err != nil {
			return err
		}
		if _, err := e.addExpanded(ctx, c, node); err != nil {
			return err
		}
	}
	return nil
}

// activeOnly unwraps a category lookup: not_found and inactive categories
// become (nil, nil), other errors pass through.
func activeOnly(node *models.Category, err error) (*models.Category, error) {
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve category filter: %w", err)
	}
	if node == nil || !node.IsActive() {
		return nil, nil
	}
	return node, nil
}

// addSet appends ids as one dimension, or marks c empty when there are none.
// It reports whether planning should continue.
func (e *Engine) addSet(c *job.Criteria, ids []uuid.UUID) bool {
	if len(ids) == 0 {
		c.Empty = true
		return false
	}
	c.AddCategorySet(ids)
	return true
}

// addExpanded adds node and its active descendants as one dimension.
func (e *Engine) addExpanded(ctx context.Context, c *job.Criteria, node *models.Category) (bool, error) {
	if node == nil {
		return e.addSet(c, nil), nil
	}
	ids, err := e.categories.ExpandActive(ctx, node.ID)
	if err != nil {
		return false, fmt.Errorf("expand category filter: %w", err)
	}
	return e.addSet(c, ids), nil
}

// List runs p and returns the matching jobs. A search term ranks and drops
// weak matches; an explicit ordering then re-sorts the ranked set.
func (e *Engine) List(ctx context.Context, p *Params) ([]ranking.Result, error) {
	if p == nil {
		p = &Params{}
	}
	jobs, err := e.candidates(ctx, p)
	if err != nil {
		return nil, err
	}

	var results []ranking.Result
	if p.Search != "" {
		results = e.ranker.Search(p.Search, jobs)
		if p.Ordering == "" {
			return results, nil
		}
	} else {
		results = wrap(jobs)
	}
	Order(results, p.Ordering)
	return results, nil
}

// MultiField runs p and then a targeted per-field search over the matches.
func (e *Engine) MultiField(ctx context.Context, p *Params, fields []ranking.FieldQuery) ([]ranking.Result, error) {
	jobs, err := e.candidates(ctx, p)
	if err != nil {
		return nil, err
	}
	results, err := e.ranker.MultiField(fields, jobs)
	if err != nil {
		return nil, apperr.New(apperr.CodeInvalid, "field", "%s", err)
	}
	return results, nil
}

// BySkills runs p and scores the matches against skills.
func (e *Engine) BySkills(ctx context.Context, p *Params, skills []string) ([]ranking.Result, error) {
	jobs, err := e.candidates(ctx, p)
	if err != nil {
		return nil, err
	}
	return e.ranker.BySkills(skills, jobs), nil
}

// Similar returns up to limit active jobs resembling the job with id.
func (e *Engine) Similar(ctx context.Context, id uuid.UUID, limit int) ([]ranking.Result, error) {
	target, err := e.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	jobs, err := e.jobs.Query(ctx, &job.Criteria{})
	if err != nil {
		return nil, err
	}
	return e.ranker.Similar(target, jobs, limit), nil
}

func (e *Engine) candidates(ctx context.Context, p *Params) ([]models.Job, error) {
	if p == nil {
		p = &Params{}
	}
	c, err := e.Plan(ctx, p)
	if err != nil {
		return nil, err
	}
	return e.jobs.Query(ctx, c)
}

// Order sorts results in place by an ordering key such as "-salary_min".
// Jobs missing the sort value go last either way; ties keep newest first.
func Order(results []ranking.Result, ordering string) {
	if ordering == "" {
		ordering = defaultOrdering
	}
	desc := strings.HasPrefix(ordering, "-")
	key := strings.TrimPrefix(ordering, "-")

	sort.SliceStable(results, func(a, b int) bool {
		ja, jb := &results[a].Job, &results[b].Job
		cmp := compare(key, ja, jb)
		if cmp == 0 {
			return ja.CreatedAt.After(jb.CreatedAt)
		}
		if cmp == nullsLast || cmp == -nullsLast {
			return cmp < 0
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// nullsLast is returned by compare when exactly one side lacks a value; its
// sign puts the missing side after the present one regardless of direction.
const nullsLast = 2

func compare(key string, a, b *models.Job) int {
	switch key {
	case "title":
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case "salary_min":
		return compareOptional(a.SalaryMin, b.SalaryMin)
	case "salary_max":
		return compareOptional(a.SalaryMax, b.SalaryMax)
	case "views_count":
		return compareInt(a.ViewsCount, b.ViewsCount)
	case "applications_count":
		return compareInt(a.ApplicationsCount, b.ApplicationsCount)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareOptional(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return nullsLast
	case b == nil:
		return -nullsLast
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// recentSince returns the start of a "recent" window ending at now.
func recentSince(window string, now time.Time) time.Time {
	switch window {
	case RecentToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case RecentWeek:
		return now.AddDate(0, 0, -7)
	case RecentMonth:
		return now.AddDate(0, -1, 0)
	default:
		return now.AddDate(0, -3, 0)
	}
}

// nearTerm reduces a free-form place ("Berlin, Germany") to the part a job
// location is matched against ("Berlin").
func nearTerm(place string) string {
	place, _, _ = strings.Cut(place, ",")
	return strings.TrimSpace(place)
}

func later(a *time.Time, b time.Time) *time.Time {
	if a != nil && a.After(b) {
		return a
	}
	return &b
}

func wrap(jobs []models.Job) []ranking.Result {
	results := make([]ranking.Result, len(jobs))
	for i, j := range jobs {
		results[i] = ranking.Result{Job: j}
	}
	return results
}

func idsOf(node *models.Category) []uuid.UUID {
	if node == nil {
		return nil
	}
	return []uuid.UUID{node.ID}
}

func containsLevel(levels []models.ExperienceLevel, l models.ExperienceLevel) bool {
	for _, x := range levels {
		if x == l {
			return true
		}
	}
	return false
}
