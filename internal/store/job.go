// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"jobboard/internal/job"
	"jobboard/internal/models"
)

// JobStore reads job postings and their category links.
type JobStore struct {
	db *sql.DB
}

// NewJobStore returns a new JobStore.
func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

// scanJob scans a row selected with jobColumns. The skill lists and the
// category links arrive as JSON arrays.
func scanJob(scanner interface{ Scan(...any) error }) (*models.Job, error) {
	var j models.Job
	var required, preferred, categories []byte
	err := scanner.Scan(
		&j.ID, &j.Title, &j.Description, &j.Location, &j.IsRemote,
		&j.SalaryMin, &j.SalaryMax, &j.SalaryType, &j.Currency,
		&j.ExperienceLevel, &required, &preferred, &categories,
		&j.CompanyID, &j.CompanyName, &j.IndustryID, &j.JobTypeID,
		&j.IsActive, &j.IsFeatured, &j.ViewsCount, &j.ApplicationsCount,
		&j.ApplicationDeadline, &j.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(required, &j.RequiredSkills); err != nil {
		return nil, fmt.Errorf("decode required skills: %w", err)
	}
	if err := json.Unmarshal(preferred, &j.PreferredSkills); err != nil {
		return nil, fmt.Errorf("decode preferred skills: %w", err)
	}
	if err := json.Unmarshal(categories, &j.CategoryIDs); err != nil {
		return nil, fmt.Errorf("decode job categories: %w", err)
	}
	return &j, nil
}

// QueryJobs returns the active jobs matching c, newest first.
func (s *JobStore) QueryJobs(ctx context.Context, c *job.Criteria) ([]models.Job, error) {
	query, args := buildJobQuery(c)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// FindJob retrieves a job by ID, active or not. Returns nil if not found.
func (s *JobStore) FindJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = $1`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job by id: %w", err)
	}
	return j, nil
}

// CountActiveJobs counts distinct active jobs linked to any of categoryIDs.
func (s *JobStore) CountActiveJobs(ctx context.Context, categoryIDs []uuid.UUID) (int, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT j.id)
		FROM jobs j
		JOIN job_categories jc ON jc.job_id = j.id
		WHERE j.is_active AND jc.category_id = ANY($1::uuid[])
	`, uuidStrings(categoryIDs)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active jobs: %w", err)
	}
	return n, nil
}

// IncrementViews bumps the view counter of a job.
func (s *JobStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE jobs SET views_count = views_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("increment job views: %w", err)
	}
	return nil
}

// IncrementApplications bumps the application counter of a job.
func (s *JobStore) IncrementApplications(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE jobs SET applications_count = applications_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("increment job applications: %w", err)
	}
	return nil
}

// CreateJob inserts a job with its category links in one transaction and
// returns the stored row.
func (s *JobStore) CreateJob(ctx context.Context, j *models.Job) (*models.Job, error) {
	required, err := json.Marshal(nonNil(j.RequiredSkills))
	if err != nil {
		return nil, fmt.Errorf("encode required skills: %w", err)
	}
	preferred, err := json.Marshal(nonNil(j.PreferredSkills))
	if err != nil {
		return nil, fmt.Errorf("encode preferred skills: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO jobs (title, description, location, is_remote, salary_min, salary_max,
			salary_type, currency, experience_level, required_skills, preferred_skills,
			company_id, company_name, industry_id, job_type_id, is_active, is_featured,
			application_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`,
		j.Title, j.Description, j.Location, j.IsRemote, j.SalaryMin, j.SalaryMax,
		j.SalaryType, j.Currency, j.ExperienceLevel, string(required), string(preferred),
		j.CompanyID, j.CompanyName, j.IndustryID, j.JobTypeID, j.IsActive, j.IsFeatured,
		j.ApplicationDeadline,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	for _, cid := range j.CategoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO job_categories (job_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			id, cid); err != nil {
			return nil, fmt.Errorf("link job category: %w", err)
		}
	}

	row := tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = $1`, id)
	created, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("reload job: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit job: %w", err)
	}
	return created, nil
}

// SetJobActive soft-deletes or restores a job.
func (s *JobStore) SetJobActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE jobs SET is_active = $1 WHERE id = $2`, active, id); err != nil {
		return fmt.Errorf("set job active: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
