// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists categories and jobs. CategoryStore and JobStore
// run on PostgreSQL; Memory implements the same contracts in process.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"jobboard/internal/category"
	"jobboard/internal/models"
)

// Constraint names from the categories migration.
const (
	constraintCategorySlug       = "categories_slug_key"
	constraintCategoryParentName = "categories_parent_name_key"
)

// categoryWriteLock keys the advisory lock that serializes structural
// category writes across every process sharing the database.
const categoryWriteLock int64 = 0x6a6f62636174 // "jobcat"

// querier is the part of *sql.DB and *sql.Tx the category queries use.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var _ category.Locker = (*CategoryStore)(nil)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
	q  querier
	tx bool
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db, q: db}
}

// WithWriteLock runs fn in a transaction holding the category write lock.
// The Store handed to fn reads and writes inside that transaction, so the
// checks fn makes still hold when its write commits. fn's error rolls the
// transaction back.
func (s *CategoryStore) WithWriteLock(ctx context.Context, fn func(category.Store) error) error {
	if s.tx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, categoryWriteLock); err != nil {
		return fmt.Errorf("lock categories: %w", mapWriteError(err))
	}
	if err := fn(&CategoryStore{db: s.db, q: tx, tx: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit categories: %w", mapWriteError(err))
	}
	return nil
}

// savepoint runs a single write so that a failure inside a locked
// transaction leaves the transaction usable for the caller's retry.
func (s *CategoryStore) savepoint(ctx context.Context, write func() error) error {
	if !s.tx {
		return write()
	}
	if _, err := s.q.ExecContext(ctx, `SAVEPOINT category_write`); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := write(); err != nil {
		if _, rbErr := s.q.ExecContext(ctx, `ROLLBACK TO SAVEPOINT category_write`); rbErr != nil {
			return fmt.Errorf("rollback to savepoint: %w", rbErr)
		}
		return err
	}
	if _, err := s.q.ExecContext(ctx, `RELEASE SAVEPOINT category_write`); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

const categoryColumns = `id, name, slug, parent_id, status, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryStore) findOne(ctx context.Context, what, where string, args ...any) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE `+where, args...)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by %s: %w", what, err)
	}
	return c, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.findOne(ctx, "id", `id = $1`, id)
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.findOne(ctx, "slug", `slug = $1`, slug)
}

// FindByName retrieves the child of parentID (nil for roots) called name.
func (s *CategoryStore) FindByName(ctx context.Context, parentID *uuid.UUID, name string) (*models.Category, error) {
	if parentID == nil {
		return s.findOne(ctx, "name", `parent_id IS NULL AND name = $1`, name)
	}
	return s.findOne(ctx, "name", `parent_id = $1 AND name = $2`, *parentID, name)
}

// SlugExists reports whether any category, of any status, uses slug.
func (s *CategoryStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category slug: %w", err)
	}
	return exists, nil
}

// ListChildren returns the direct children of every category in parentIDs.
func (s *CategoryStore) ListChildren(ctx context.Context, parentIDs []uuid.UUID) ([]models.Category, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	return s.list(ctx, "list category children",
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id = ANY($1::uuid[]) ORDER BY name`,
		uuidStrings(parentIDs))
}

// ListRoots returns every category without a parent.
func (s *CategoryStore) ListRoots(ctx context.Context) ([]models.Category, error) {
	return s.list(ctx, "list root categories",
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id IS NULL ORDER BY name`)
}

func (s *CategoryStore) list(ctx context.Context, what, query string, args ...any) ([]models.Category, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// CreateCategory inserts a new category and returns it. Unique violations
// are reported as category.ErrSlugTaken or category.ErrNameTaken.
func (s *CategoryStore) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	status := c.Status
	if status == "" {
		status = models.CategoryActive
	}
	var created *models.Category
	err := s.savepoint(ctx, func() error {
		row := s.q.QueryRowContext(ctx, `
			INSERT INTO categories (name, slug, parent_id, status)
			VALUES ($1, $2, $3, $4)
			RETURNING `+categoryColumns,
			c.Name, c.Slug, c.ParentID, status,
		)
		var err error
		created, err = scanCategory(row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", mapWriteError(err))
	}
	return created, nil
}

// UpdateParent re-attaches a category and returns the updated row.
func (s *CategoryStore) UpdateParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*models.Category, error) {
	var updated *models.Category
	err := s.savepoint(ctx, func() error {
		row := s.q.QueryRowContext(ctx, `
			UPDATE categories SET parent_id = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING `+categoryColumns,
			parentID, id,
		)
		var err error
		updated, err = scanCategory(row)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update category parent: category %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update category parent: %w", mapWriteError(err))
	}
	return updated, nil
}

// UpdateStatus sets the lifecycle status of a category.
func (s *CategoryStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CategoryStatus) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE categories SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update category status: %w", mapWriteError(err))
	}
	return nil
}

// mapWriteError translates the PostgreSQL errors the category tree reacts
// to into its sentinel errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505": // unique_violation
		switch pgErr.ConstraintName {
		case constraintCategorySlug:
			return category.ErrSlugTaken
		case constraintCategoryParentName:
			return category.ErrNameTaken
		}
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return category.ErrConflict
	}
	return err
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
