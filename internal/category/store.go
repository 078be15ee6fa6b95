// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package category maintains the job category forest: structural validation
// on create/move/deactivate, ancestor and descendant traversal, slug
// assignment and job count aggregation.
//
// Create, Move and Deactivate are serialized: within a process by the Tree,
// across processes by the store when it implements Locker. Reads take no
// locks and give no snapshot isolation. A count computed while
// categories or jobs are being written may mix before and after states.
package category

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"jobboard/internal/models"
)

// Errors a Store reports when a write hits one of its unique constraints or
// a serialization conflict.
var (
	ErrSlugTaken = errors.New("category slug already taken")
	ErrNameTaken = errors.New("category name already taken under parent")
	ErrConflict  = errors.New("concurrent write conflict")
)

// Store is the flat node table the tree is built on. Lookups return
// (nil, nil) when nothing matches.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByName(ctx context.Context, parentID *uuid.UUID, name string) (*models.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)

	// ListChildren returns the direct children, of any status, of every
	// category in parentIDs.
	ListChildren(ctx context.Context, parentIDs []uuid.UUID) ([]models.Category, error)
	// ListRoots returns every category without a parent, of any status.
	ListRoots(ctx context.Context) ([]models.Category, error)

	// CreateCategory inserts c and returns the stored row. It reports
	// ErrSlugTaken or ErrNameTaken on unique violations.
	CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	// UpdateParent re-attaches id under parentID (nil for root). It reports
	// ErrNameTaken when the new parent already has a child with that name.
	UpdateParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*models.Category, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CategoryStatus) error
}

// Locker is implemented by stores shared between processes. WithWriteLock
// runs fn while holding a lock that excludes every other structural write,
// handing fn a Store whose reads and writes happen under that lock.
type Locker interface {
	WithWriteLock(ctx context.Context, fn func(Store) error) error
}

// JobCounter counts active jobs linked to categories.
type JobCounter interface {
	// CountActiveJobs returns the number of distinct active jobs linked to
	// at least one of categoryIDs.
	CountActiveJobs(ctx context.Context, categoryIDs []uuid.UUID) (int, error)
}
