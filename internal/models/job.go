// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExperienceLevel is the seniority a job posting targets.
type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "entry"
	ExperienceJunior    ExperienceLevel = "junior"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceLead      ExperienceLevel = "lead"
	ExperienceExecutive ExperienceLevel = "executive"
)

// ExperienceLevels lists every valid level from least to most senior.
var ExperienceLevels = []ExperienceLevel{
	ExperienceEntry, ExperienceJunior, ExperienceMid,
	ExperienceSenior, ExperienceLead, ExperienceExecutive,
}

// ParseExperienceLevel returns the level named by s (case-insensitive).
func ParseExperienceLevel(s string) (ExperienceLevel, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range ExperienceLevels {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// SalaryType is the period a salary figure refers to.
type SalaryType string

const (
	SalaryHourly  SalaryType = "hourly"
	SalaryMonthly SalaryType = "monthly"
	SalaryYearly  SalaryType = "yearly"
)

// Job is a job posting. Jobs reference categories by ID only.
type Job struct {
	ID                  uuid.UUID       `json:"id"`
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	Location            string          `json:"location"`
	IsRemote            bool            `json:"is_remote"`
	SalaryMin           *float64        `json:"salary_min,omitempty"`
	SalaryMax           *float64        `json:"salary_max,omitempty"`
	SalaryType          SalaryType      `json:"salary_type"`
	Currency            string          `json:"currency"`
	ExperienceLevel     ExperienceLevel `json:"experience_level"`
	RequiredSkills      []string        `json:"required_skills"`
	PreferredSkills     []string        `json:"preferred_skills"`
	CategoryIDs         []uuid.UUID     `json:"category_ids"`
	CompanyID           uuid.UUID       `json:"company_id"`
	CompanyName         string          `json:"company_name"`
	IndustryID          *uuid.UUID      `json:"industry_id,omitempty"`
	JobTypeID           *uuid.UUID      `json:"job_type_id,omitempty"`
	IsActive            bool            `json:"is_active"`
	IsFeatured          bool            `json:"is_featured"`
	ViewsCount          int             `json:"views_count"`
	ApplicationsCount   int             `json:"applications_count"`
	ApplicationDeadline *time.Time      `json:"application_deadline,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// InCategory returns true if the job is directly linked to any of ids.
func (j *Job) InCategory(ids map[uuid.UUID]struct{}) bool {
	for _, id := range j.CategoryIDs {
		if _, ok := ids[id]; ok {
			return true
		}
	}
	return false
}

// SkillsText returns the skill list serialized the way filters match it.
func SkillsText(skills []string) string {
	return strings.Join(skills, ", ")
}
