// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/apperr"
	"jobboard/internal/models"
)

// Recent windows accepted by the "recent" parameter.
const (
	RecentToday   = "today"
	RecentWeek    = "week"
	RecentMonth   = "month"
	Recent3Months = "3months"
)

const defaultOrdering = "-created_at"

// orderings maps accepted ordering keys (without the "-" prefix) to
// whether they are valid.
var orderings = map[string]bool{
	"created_at":         true,
	"title":              true,
	"salary_min":         true,
	"salary_max":         true,
	"views_count":        true,
	"applications_count": true,
}

// Params are the filter dimensions of a job listing request, parsed but not
// yet resolved against the category tree.
type Params struct {
	Location      string
	LocationExact string
	NearLocation  string

	SalaryMinGTE   *float64
	SalaryMaxLTE   *float64
	SalaryRangeMin *float64
	SalaryRangeMax *float64

	ExperienceLevel  models.ExperienceLevel
	ExperienceLevels []models.ExperienceLevel

	Company     *uuid.UUID
	CompanyName string
	Industry    *uuid.UUID
	JobType     *uuid.UUID

	Categories        []uuid.UUID
	CategorySlug      string
	CategorySlugs     []string
	CategoryHierarchy *uuid.UUID
	CategoryTree      string

	IsRemote       *bool
	RemoteFriendly bool
	IsFeatured     *bool

	PostedAfter   *time.Time
	PostedBefore  *time.Time
	PostedDaysAgo *int
	Recent        string

	DeadlineAfter  *time.Time
	DeadlineBefore *time.Time
	HasDeadline    *bool

	RequiredSkills  string
	PreferredSkills string

	Popular bool
	Search  string

	// Ordering is a field name, "-" prefixed for descending. Empty means
	// relevance for searches and newest first otherwise.
	Ordering string
}

// ParseParams reads filter parameters from a query string. Blank values are
// ignored; malformed ones fail with an invalid error naming the parameter.
func ParseParams(q url.Values) (*Params, error) {
	p := &Params{
		Location:        get(q, "location"),
		LocationExact:   get(q, "location_exact"),
		NearLocation:    get(q, "near_location"),
		CompanyName:     get(q, "company_name"),
		CategorySlug:    get(q, "category_slug"),
		CategorySlugs:   list(q, "category_slugs"),
		CategoryTree:    get(q, "category_tree"),
		RequiredSkills:  get(q, "required_skills"),
		PreferredSkills: get(q, "preferred_skills"),
		Search:          get(q, "search"),
	}
	var err error

	for name, dst := range map[string]**float64{
		"salary_min_gte":   &p.SalaryMinGTE,
		"salary_max_lte":   &p.SalaryMaxLTE,
		"salary_range_min": &p.SalaryRangeMin,
		"salary_range_max": &p.SalaryRangeMax,
	} {
		if *dst, err = parseFloat(q, name); err != nil {
			return nil, err
		}
	}

	if v := get(q, "experience_level"); v != "" {
		l, ok := models.ParseExperienceLevel(v)
		if !ok {
			return nil, invalid("experience_level", "unknown experience level %q", v)
		}
		p.ExperienceLevel = l
	}
	for _, v := range list(q, "experience_levels") {
		l, ok := models.ParseExperienceLevel(v)
		if !ok {
			return nil, invalid("experience_levels", "unknown experience level %q", v)
		}
		p.ExperienceLevels = append(p.ExperienceLevels, l)
	}

	for name, dst := range map[string]**uuid.UUID{
		"company":            &p.Company,
		"industry":           &p.Industry,
		"job_type":           &p.JobType,
		"category_hierarchy": &p.CategoryHierarchy,
	} {
		if *dst, err = parseUUID(q, name); err != nil {
			return nil, err
		}
	}
	for _, v := range list(q, "categories") {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, invalid("categories", "%q is not a valid id", v)
		}
		p.Categories = append(p.Categories, id)
	}

	for name, dst := range map[string]**bool{
		"is_remote":    &p.IsRemote,
		"is_featured":  &p.IsFeatured,
		"has_deadline": &p.HasDeadline,
	} {
		if *dst, err = parseBool(q, name); err != nil {
			return nil, err
		}
	}
	for name, dst := range map[string]*bool{
		"remote_friendly": &p.RemoteFriendly,
		"popular":         &p.Popular,
	} {
		b, err := parseBool(q, name)
		if err != nil {
			return nil, err
		}
		*dst = b != nil && *b
	}

	for name, dst := range map[string]**time.Time{
		"posted_after":    &p.PostedAfter,
		"posted_before":   &p.PostedBefore,
		"deadline_after":  &p.DeadlineAfter,
		"deadline_before": &p.DeadlineBefore,
	} {
		if *dst, err = parseDate(q, name); err != nil {
			return nil, err
		}
	}

	if v := get(q, "posted_days_ago"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, invalid("posted_days_ago", "must be a non-negative integer")
		}
		p.PostedDaysAgo = &n
	}

	if v := strings.ToLower(get(q, "recent")); v != "" {
		switch v {
		case RecentToday, RecentWeek, RecentMonth, Recent3Months:
			p.Recent = v
		default:
			return nil, invalid("recent", "must be one of today, week, month, 3months")
		}
	}

	if v := get(q, "ordering"); v != "" {
		if !orderings[strings.TrimPrefix(v, "-")] {
			return nil, invalid("ordering", "cannot order by %q", v)
		}
		p.Ordering = v
	}

	return p, nil
}

func get(q url.Values, name string) string {
	return strings.TrimSpace(q.Get(name))
}

// list splits a comma-separated parameter, dropping blank items.
func list(q url.Values, name string) []string {
	var out []string
	for _, v := range strings.Split(q.Get(name), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseFloat(q url.Values, name string) (*float64, error) {
	v := get(q, name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, invalid(name, "%q is not a number", v)
	}
	return &f, nil
}

func parseUUID(q url.Values, name string) (*uuid.UUID, error) {
	v := get(q, name)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, invalid(name, "%q is not a valid id", v)
	}
	return &id, nil
}

func parseBool(q url.Values, name string) (*bool, error) {
	v := get(q, name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, invalid(name, "%q is not a boolean", v)
	}
	return &b, nil
}

// parseDate accepts a calendar date (2006-01-02, midnight UTC) or an
// RFC 3339 timestamp.
func parseDate(q url.Values, name string) (*time.Time, error) {
	v := get(q, name)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, invalid(name, "%q is not a date (YYYY-MM-DD)", v)
}

func invalid(field, format string, args ...any) error {
	return apperr.New(apperr.CodeInvalid, field, format, args...)
}
