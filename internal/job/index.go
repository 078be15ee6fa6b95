// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"jobboard/internal/apperr"
	"jobboard/internal/models"
)

// Store is the job table as the engine sees it.
type Store interface {
	// QueryJobs returns the active jobs matching c, newest first.
	QueryJobs(ctx context.Context, c *Criteria) ([]models.Job, error)
	// FindJob returns a job by ID, active or not, or (nil, nil).
	FindJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	CountActiveJobs(ctx context.Context, categoryIDs []uuid.UUID) (int, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	IncrementApplications(ctx context.Context, id uuid.UUID) error
}

// Index is read-oriented access to job records.
type Index struct {
	store Store
}

// NewIndex returns an Index over store.
func NewIndex(store Store) *Index {
	return &Index{store: store}
}

// Query returns the active jobs matching c. An Empty criteria set returns
// no jobs without touching the store.
func (x *Index) Query(ctx context.Context, c *Criteria) ([]models.Job, error) {
	if c == nil {
		c = &Criteria{}
	}
	if c.Empty {
		return []models.Job{}, nil
	}
	jobs, err := x.store.QueryJobs(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	return jobs, nil
}

// Get returns an active job or a not_found error. Soft-deleted jobs are
// reported as not found.
func (x *Index) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j, err := x.store.FindJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find job: %w", err)
	}
	if j == nil || !j.IsActive {
		return nil, apperr.New(apperr.CodeNotFound, "id", "job %s not found", id)
	}
	return j, nil
}

// RecordView bumps the view counter of a job. Failures are logged, not
// returned, so a counter hiccup never fails a read.
func (x *Index) RecordView(ctx context.Context, id uuid.UUID) {
	if err := x.store.IncrementViews(ctx, id); err != nil {
		slog.Warn("failed to record job view", "job_id", id, "error", err)
	}
}

// RecordApplication bumps the application counter of an active job.
func (x *Index) RecordApplication(ctx context.Context, id uuid.UUID) error {
	if _, err := x.Get(ctx, id); err != nil {
		return err
	}
	if err := x.store.IncrementApplications(ctx, id); err != nil {
		return fmt.Errorf("record application: %w", err)
	}
	return nil
}
