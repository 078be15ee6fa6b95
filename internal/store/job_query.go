// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"strconv"
	"strings"

	"jobboard/internal/job"
)

const jobColumns = `j.id, j.title, j.description, j.location, j.is_remote,
	j.salary_min::float8, j.salary_max::float8, j.salary_type, j.currency,
	j.experience_level, j.required_skills, j.preferred_skills,
	COALESCE((SELECT json_agg(jc.category_id) FROM job_categories jc WHERE jc.job_id = j.id), '[]'::json),
	j.company_id, j.company_name, j.industry_id, j.job_type_id,
	j.is_active, j.is_featured, j.views_count, j.applications_count,
	j.application_deadline, j.created_at`

// The skill text expressions render a JSONB skill list the way job.Criteria
// matches it: elements joined by ", ".
const (
	requiredSkillsText  = `array_to_string(ARRAY(SELECT jsonb_array_elements_text(j.required_skills)), ', ')`
	preferredSkillsText = `array_to_string(ARRAY(SELECT jsonb_array_elements_text(j.preferred_skills)), ', ')`
)

// whereBuilder collects AND-ed conditions and their positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

// arg registers v and returns its placeholder.
func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *whereBuilder) add(cond string) {
	b.conds = append(b.conds, cond)
}

// contains adds a case-insensitive substring match of expr against v.
func (b *whereBuilder) contains(expr, v string) {
	b.add(expr + ` ILIKE ` + b.arg(likePattern(v)))
}

// buildJobQuery translates c into a SELECT over active jobs, newest first.
// Every predicate mirrors job.Criteria.Match.
func buildJobQuery(c *job.Criteria) (string, []any) {
	b := &whereBuilder{}
	b.add(`j.is_active`)
	if c.Empty {
		b.add(`FALSE`)
	}

	if c.Location != "" {
		b.contains(`j.location`, c.Location)
	}
	if c.LocationExact != "" {
		b.add(`j.location = ` + b.arg(c.LocationExact))
	}
	if c.NearLocation != "" {
		b.contains(`j.location`, c.NearLocation)
	}

	if c.SalaryMinGTE != nil {
		b.add(`j.salary_min >= ` + b.arg(*c.SalaryMinGTE))
	}
	if c.SalaryMaxLTE != nil {
		b.add(`j.salary_max <= ` + b.arg(*c.SalaryMaxLTE))
	}
	if c.SalaryRangeMin != nil {
		p := b.arg(*c.SalaryRangeMin)
		b.add(`(j.salary_min >= ` + p + ` OR j.salary_max >= ` + p + `)`)
	}
	if c.SalaryRangeMax != nil {
		p := b.arg(*c.SalaryRangeMax)
		b.add(`(j.salary_max <= ` + p + ` OR j.salary_min <= ` + p + `)`)
	}

	if len(c.ExperienceLevels) > 0 {
		levels := make([]string, len(c.ExperienceLevels))
		for i, l := range c.ExperienceLevels {
			levels[i] = string(l)
		}
		b.add(`j.experience_level = ANY(` + b.arg(levels) + `::text[])`)
	}

	if c.CompanyID != nil {
		b.add(`j.company_id = ` + b.arg(*c.CompanyID))
	}
	if c.CompanyName != "" {
		b.contains(`j.company_name`, c.CompanyName)
	}
	if c.IndustryID != nil {
		b.add(`j.industry_id = ` + b.arg(*c.IndustryID))
	}
	if c.JobTypeID != nil {
		b.add(`j.job_type_id = ` + b.arg(*c.JobTypeID))
	}

	for _, set := range c.CategorySets {
		b.add(`EXISTS (SELECT 1 FROM job_categories jc WHERE jc.job_id = j.id AND jc.category_id = ANY(` +
			b.arg(uuidStrings(set)) + `::uuid[]))`)
	}

	if c.IsRemote != nil {
		b.add(`j.is_remote = ` + b.arg(*c.IsRemote))
	}
	if c.RemoteFriendly {
		parts := []string{`j.is_remote`}
		for _, m := range job.RemoteMarkers {
			parts = append(parts, `j.location ILIKE `+b.arg(likePattern(m)))
		}
		b.add(`(` + strings.Join(parts, ` OR `) + `)`)
	}
	if c.IsFeatured != nil {
		b.add(`j.is_featured = ` + b.arg(*c.IsFeatured))
	}

	if c.PostedAfter != nil {
		b.add(`j.created_at >= ` + b.arg(*c.PostedAfter))
	}
	if c.PostedBefore != nil {
		b.add(`j.created_at < ` + b.arg(*c.PostedBefore))
	}

	if c.HasDeadline != nil {
		if *c.HasDeadline {
			b.add(`j.application_deadline IS NOT NULL`)
		} else {
			b.add(`j.application_deadline IS NULL`)
		}
	}
	if c.DeadlineAfter != nil {
		b.add(`j.application_deadline >= ` + b.arg(*c.DeadlineAfter))
	}
	if c.DeadlineBefore != nil {
		b.add(`j.application_deadline < ` + b.arg(*c.DeadlineBefore))
	}

	if c.RequiredSkills != "" {
		b.contains(requiredSkillsText, c.RequiredSkills)
	}
	if c.PreferredSkills != "" {
		b.contains(preferredSkillsText, c.PreferredSkills)
	}

	if c.Popular {
		b.add(`(j.views_count > (SELECT COALESCE(AVG(views_count), 0) FROM jobs WHERE is_active)` +
			` OR j.applications_count > (SELECT COALESCE(AVG(applications_count), 0) FROM jobs WHERE is_active))`)
	}

	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE ` +
		strings.Join(b.conds, ` AND `) + ` ORDER BY j.created_at DESC, j.id`
	return query, b.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps v for a substring ILIKE, escaping LIKE metacharacters.
func likePattern(v string) string {
	return "%" + likeEscaper.Replace(v) + "%"
}
