// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jobboard/internal/apperr"
	"jobboard/internal/models"
	"jobboard/internal/slug"
)

// DefaultSlugAttempts bounds how many inserts SlugAssigner tries before
// giving up on a slug that keeps colliding.
const DefaultSlugAttempts = 20

// SlugAssigner derives category slugs and inserts categories under them.
// The existence check it performs is advisory; the store's unique
// constraint decides, and a violation moves on to the next suffix.
type SlugAssigner struct {
	store       Store
	maxAttempts int
}

// NewSlugAssigner returns an assigner that retries DefaultSlugAttempts times.
func NewSlugAssigner(store Store) *SlugAssigner {
	return &SlugAssigner{store: store, maxAttempts: DefaultSlugAttempts}
}

// Base returns the unsuffixed slug for a category called name under parent.
// Child slugs carry their parent's slug as a prefix.
func (a *SlugAssigner) Base(name string, parent *models.Category) string {
	base := slug.Generate(name)
	if base == "" {
		base = "category"
	}
	if parent != nil && parent.Slug != "" {
		return parent.Slug + "-" + base
	}
	return base
}

// Insert assigns node a free slug and writes it through the store.
func (a *SlugAssigner) Insert(ctx context.Context, node *models.Category, parent *models.Category) (*models.Category, error) {
	base := a.Base(node.Name, parent)

	suffix, err := a.nextFree(ctx, base, 0)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		node.Slug = slug.WithSuffix(base, suffix)
		created, err := a.store.CreateCategory(ctx, node)
		if err == nil {
			return created, nil
		}
		lastErr = err

		switch {
		case errors.Is(err, ErrNameTaken):
			return nil, apperr.New(apperr.CodeDuplicateName, "name",
				"a category named %q already exists at this level", node.Name)
		case errors.Is(err, ErrSlugTaken):
			slog.Debug("slug collision, trying next suffix", "slug", node.Slug, "attempt", attempt)
			suffix, err = a.nextFree(ctx, base, suffix+1)
			if err != nil {
				return nil, err
			}
		case errors.Is(err, ErrConflict):
			slog.Debug("category insert conflict, retrying", "slug", node.Slug, "attempt", attempt)
		default:
			return nil, fmt.Errorf("create category: %w", err)
		}
	}

	if errors.Is(lastErr, ErrConflict) {
		return nil, apperr.New(apperr.CodeConflictRetryExhausted, "",
			"gave up creating category after %d conflicting attempts", a.maxAttempts)
	}
	return nil, apperr.New(apperr.CodeSlugConflictExhausted, "slug",
		"no free slug for %q after %d attempts", base, a.maxAttempts)
}

// nextFree returns the first suffix n >= from whose slug is not taken.
func (a *SlugAssigner) nextFree(ctx context.Context, base string, from int) (int, error) {
	for n := from; ; n++ {
		taken, err := a.store.SlugExists(ctx, slug.WithSuffix(base, n))
		if err != nil {
			return 0, fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return n, nil
		}
	}
}
