// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package job gives read access to job postings through a resolved
// predicate set. Stores evaluate Criteria either in SQL or with Match; both
// must agree on every predicate defined here.
package job

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/models"
)

// Criteria is a fully resolved predicate set. Non-zero fields combine with
// AND; values inside one field combine with OR. Category references have
// already been turned into ID sets by the filter engine.
type Criteria struct {
	// Empty short-circuits the query to no results. Set when a filter
	// referenced something that does not resolve.
	Empty bool

	Location      string // case-insensitive substring
	LocationExact string
	NearLocation  string // case-insensitive substring, already reduced to a place name

	SalaryMinGTE   *float64 // salary_min >= X
	SalaryMaxLTE   *float64 // salary_max <= Y
	SalaryRangeMin *float64 // salary interval reaches X: salary_min >= X or salary_max >= X
	SalaryRangeMax *float64 // salary interval reaches down to Y: salary_max <= Y or salary_min <= Y

	ExperienceLevels []models.ExperienceLevel

	CompanyID   *uuid.UUID
	CompanyName string // case-insensitive substring
	IndustryID  *uuid.UUID
	JobTypeID   *uuid.UUID

	// CategorySets holds one ID set per category dimension. A job must
	// intersect every set.
	CategorySets [][]uuid.UUID

	IsRemote       *bool
	RemoteFriendly bool
	IsFeatured     *bool

	PostedAfter  *time.Time
	PostedBefore *time.Time

	DeadlineAfter  *time.Time
	DeadlineBefore *time.Time
	HasDeadline    *bool

	RequiredSkills  string // case-insensitive substring of the serialized list
	PreferredSkills string

	// Popular keeps jobs with above-average views or applications among
	// active jobs.
	Popular bool
}

// Stats are the population figures some predicates compare against.
type Stats struct {
	AvgViews        float64
	AvgApplications float64
}

// RemoteMarkers are location substrings that make a job remote friendly.
var RemoteMarkers = []string{"remote", "hybrid"}

// AddCategorySet appends one OR-set of category IDs.
func (c *Criteria) AddCategorySet(ids []uuid.UUID) {
	c.CategorySets = append(c.CategorySets, ids)
}

// Match reports whether j satisfies every predicate. Inactive jobs never match.
func (c *Criteria) Match(j *models.Job, stats Stats) bool {
	if c.Empty || !j.IsActive {
		return false
	}

	if c.Location != "" && !containsFold(j.Location, c.Location) {
		return false
	}
	if c.LocationExact != "" && j.Location != c.LocationExact {
		return false
	}
	if c.NearLocation != "" && !containsFold(j.Location, c.NearLocation) {
		return false
	}

	if c.SalaryMinGTE != nil && (j.SalaryMin == nil || *j.SalaryMin < *c.SalaryMinGTE) {
		return false
	}
	if c.SalaryMaxLTE != nil && (j.SalaryMax == nil || *j.SalaryMax > *c.SalaryMaxLTE) {
		return false
	}
	if c.SalaryRangeMin != nil && !rangeMinMatch(j, *c.SalaryRangeMin) {
		return false
	}
	if c.SalaryRangeMax != nil && !rangeMaxMatch(j, *c.SalaryRangeMax) {
		return false
	}

	if len(c.ExperienceLevels) > 0 && !containsLevel(c.ExperienceLevels, j.ExperienceLevel) {
		return false
	}

	if c.CompanyID != nil && j.CompanyID != *c.CompanyID {
		return false
	}
	if c.CompanyName != "" && !containsFold(j.CompanyName, c.CompanyName) {
		return false
	}
	if c.IndustryID != nil && (j.IndustryID == nil || *j.IndustryID != *c.IndustryID) {
		return false
	}
	if c.JobTypeID != nil && (j.JobTypeID == nil || *j.JobTypeID != *c.JobTypeID) {
		return false
	}

	for _, set := range c.CategorySets {
		if !j.InCategory(toSet(set)) {
			return false
		}
	}

	if c.IsRemote != nil && j.IsRemote != *c.IsRemote {
		return false
	}
	if c.RemoteFriendly && !IsRemoteFriendly(j) {
		return false
	}
	if c.IsFeatured != nil && j.IsFeatured != *c.IsFeatured {
		return false
	}

	if c.PostedAfter != nil && j.CreatedAt.Before(*c.PostedAfter) {
		return false
	}
	if c.PostedBefore != nil && !j.CreatedAt.Before(*c.PostedBefore) {
		return false
	}

	if c.HasDeadline != nil && (j.ApplicationDeadline != nil) != *c.HasDeadline {
		return false
	}
	if c.DeadlineAfter != nil && (j.ApplicationDeadline == nil || j.ApplicationDeadline.Before(*c.DeadlineAfter)) {
		return false
	}
	if c.DeadlineBefore != nil && (j.ApplicationDeadline == nil || !j.ApplicationDeadline.Before(*c.DeadlineBefore)) {
		return false
	}

	if c.RequiredSkills != "" && !containsFold(models.SkillsText(j.RequiredSkills), c.RequiredSkills) {
		return false
	}
	if c.PreferredSkills != "" && !containsFold(models.SkillsText(j.PreferredSkills), c.PreferredSkills) {
		return false
	}

	if c.Popular && !(float64(j.ViewsCount) > stats.AvgViews || float64(j.ApplicationsCount) > stats.AvgApplications) {
		return false
	}
	return true
}

// IsRemoteFriendly reports whether a job is remote or its location mentions
// remote or hybrid work.
func IsRemoteFriendly(j *models.Job) bool {
	if j.IsRemote {
		return true
	}
	for _, m := range RemoteMarkers {
		if containsFold(j.Location, m) {
			return true
		}
	}
	return false
}

// rangeMinMatch treats the job's salary as an interval and keeps it when the
// interval reaches x: either bound at or above x.
func rangeMinMatch(j *models.Job, x float64) bool {
	if j.SalaryMin != nil && *j.SalaryMin >= x {
		return true
	}
	return j.SalaryMax != nil && *j.SalaryMax >= x
}

// rangeMaxMatch is the mirror of rangeMinMatch: either bound at or below y.
func rangeMaxMatch(j *models.Job, y float64) bool {
	if j.SalaryMax != nil && *j.SalaryMax <= y {
		return true
	}
	return j.SalaryMin != nil && *j.SalaryMin <= y
}

func containsLevel(levels []models.ExperienceLevel, l models.ExperienceLevel) bool {
	for _, x := range levels {
		if x == l {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
