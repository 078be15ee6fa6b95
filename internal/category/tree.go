// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"jobboard/internal/apperr"
	"jobboard/internal/models"
)

const (
	// maxNameLen bounds category names in runes.
	maxNameLen = 100

	// maxWriteAttempts bounds retries of a write that hit a serialization
	// conflict in the store.
	maxWriteAttempts = 3
)

// Tree enforces the structural invariants of the category forest and answers
// traversal queries. It assumes the caller has already authorized mutations.
// Mutations run one at a time so their checks cannot interleave.
type Tree struct {
	mu    sync.Mutex
	store Store
	slugs *SlugAssigner
}

// serialize runs fn as the only structural writer. fn receives a Tree bound
// to the store's locked scope when the store is a Locker.
func (t *Tree) serialize(ctx context.Context, fn func(w *Tree) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	locker, ok := t.store.(Locker)
	if !ok {
		return fn(t)
	}
	return locker.WithWriteLock(ctx, func(s Store) error {
		return fn(&Tree{store: s, slugs: NewSlugAssigner(s)})
	})
}

// NewTree returns a Tree backed by store.
func NewTree(store Store) *Tree {
	return &Tree{store: store, slugs: NewSlugAssigner(store)}
}

// Get returns the category with the given id, or a not_found error.
func (t *Tree) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := t.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return nil, apperr.New(apperr.CodeNotFound, "id", "category %s not found", id)
	}
	return c, nil
}

// FindBySlug returns the category with the given slug, or a not_found error.
func (t *Tree) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := t.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	if c == nil {
		return nil, apperr.New(apperr.CodeNotFound, "slug", "category %q not found", slug)
	}
	return c, nil
}

// Create validates and inserts a new category under parentID (nil for a
// root). Nothing is written unless every check passes.
func (t *Tree) Create(ctx context.Context, name string, parentID *uuid.UUID) (*models.Category, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	var created *models.Category
	err = t.serialize(ctx, func(w *Tree) error {
		var err error
		created, err = w.create(ctx, name, parentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("category created", "id", created.ID, "slug", created.Slug, "parent_id", parentID)
	return created, nil
}

func (t *Tree) create(ctx context.Context, name string, parentID *uuid.UUID) (*models.Category, error) {
	var parent *models.Category
	if parentID != nil {
		var err error
		parent, err = t.store.FindByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("find parent category: %w", err)
		}
		if parent == nil {
			return nil, apperr.New(apperr.CodeNotFound, "parent_id", "parent category %s not found", *parentID)
		}
		if !parent.IsActive() {
			return nil, apperr.New(apperr.CodeInactiveReference, "parent_id", "parent category %q is inactive", parent.Name)
		}
		ancestors, err := t.ancestorsOf(ctx, parent)
		if err != nil {
			return nil, err
		}
		if level := len(ancestors) + 1; level > models.MaxCategoryLevel {
			return nil, apperr.New(apperr.CodeDepthExceeded, "parent_id",
				"category would sit at level %d, the deepest allowed is %d", level, models.MaxCategoryLevel)
		}
	}

	if err := t.checkNameFree(ctx, parentID, name, uuid.Nil); err != nil {
		return nil, err
	}

	node := &models.Category{
		Name:     name,
		ParentID: parentID,
		Status:   models.CategoryActive,
	}
	return t.slugs.Insert(ctx, node, parent)
}

// Move re-attaches the subtree rooted at nodeID under newParentID (nil makes
// it a root). The move is rejected if it would create a cycle or push any
// member of the subtree past the deepest allowed level. The slug is kept.
func (t *Tree) Move(ctx context.Context, nodeID uuid.UUID, newParentID *uuid.UUID) (*models.Category, error) {
	var moved *models.Category
	err := t.serialize(ctx, func(w *Tree) error {
		var err error
		moved, err = w.move(ctx, nodeID, newParentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (t *Tree) move(ctx context.Context, nodeID uuid.UUID, newParentID *uuid.UUID) (*models.Category, error) {
	node, err := t.Get(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if !node.IsActive() {
		return nil, apperr.New(apperr.CodeInactiveReference, "id", "category %q is inactive", node.Name)
	}

	newLevel := 0
	if newParentID != nil {
		if *newParentID == nodeID {
			return nil, apperr.New(apperr.CodeCycleDetected, "parent_id", "category cannot be its own parent")
		}
		parent, err := t.store.FindByID(ctx, *newParentID)
		if err != nil {
			return nil, fmt.Errorf("find parent category: %w", err)
		}
		if parent == nil {
			return nil, apperr.New(apperr.CodeNotFound, "parent_id", "parent category %s not found", *newParentID)
		}
		if !parent.IsActive() {
			return nil, apperr.New(apperr.CodeInactiveReference, "parent_id", "parent category %q is inactive", parent.Name)
		}
		chain, err := t.ancestorsOf(ctx, parent)
		if err != nil {
			return nil, err
		}
		for _, a := range chain {
			if a.ID == nodeID {
				return nil, apperr.New(apperr.CodeCycleDetected, "parent_id",
					"category %q is a descendant of %q", parent.Name, node.Name)
			}
		}
		newLevel = len(chain) + 1
	}

	levels, err := t.descendantLevels(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if deepest := newLevel + len(levels); deepest > models.MaxCategoryLevel {
		return nil, apperr.New(apperr.CodeDepthExceeded, "parent_id",
			"subtree would reach level %d, the deepest allowed is %d", deepest, models.MaxCategoryLevel)
	}

	if samePtr(node.ParentID, newParentID) {
		return node, nil
	}
	if err := t.checkNameFree(ctx, newParentID, node.Name, node.ID); err != nil {
		return nil, err
	}

	var moved *models.Category
	for attempt := 1; ; attempt++ {
		moved, err = t.store.UpdateParent(ctx, nodeID, newParentID)
		if err == nil {
			break
		}
		switch {
		case errors.Is(err, ErrNameTaken):
			return nil, apperr.New(apperr.CodeDuplicateName, "name",
				"a category named %q already exists under the target parent", node.Name)
		case errors.Is(err, ErrConflict) && attempt < maxWriteAttempts:
			slog.Debug("category move conflict, retrying", "id", nodeID, "attempt", attempt)
			continue
		case errors.Is(err, ErrConflict):
			return nil, apperr.New(apperr.CodeConflictRetryExhausted, "",
				"gave up moving category after %d conflicting attempts", attempt)
		default:
			return nil, fmt.Errorf("move category: %w", err)
		}
	}

	slog.Info("category moved", "id", nodeID, "from", node.ParentID, "to", newParentID)
	return moved, nil
}

// Deactivate soft-deletes a category. The row and its job links stay in
// place; the category just stops being listed or accepted as a parent.
// Deactivating an inactive category is a no-op.
func (t *Tree) Deactivate(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var node *models.Category
	err := t.serialize(ctx, func(w *Tree) error {
		var err error
		node, err = w.Get(ctx, id)
		if err != nil || !node.IsActive() {
			return err
		}
		if err := w.store.UpdateStatus(ctx, id, models.CategoryInactive); err != nil {
			return fmt.Errorf("deactivate category: %w", err)
		}
		node.Status = models.CategoryInactive
		slog.Info("category deactivated", "id", id, "slug", node.Slug)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// GetAncestors returns the ancestors of id, root first, excluding id itself.
// A root yields an empty slice.
func (t *Tree) GetAncestors(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	node, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.ancestorsOf(ctx, node)
}

// GetDescendants returns every category below id, of any status, in no
// particular order.
func (t *Tree) GetDescendants(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	if _, err := t.Get(ctx, id); err != nil {
		return nil, err
	}
	levels, err := t.descendantLevels(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []models.Category
	for _, level := range levels {
		out = append(out, level...)
	}
	return out, nil
}

// ExpandActive returns id followed by every active descendant reachable
// through active categories only. An inactive category hides its subtree,
// so an id that is unknown, inactive or below an inactive ancestor expands
// to nothing.
func (t *Tree) ExpandActive(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	node, err := t.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if node == nil {
		return nil, nil
	}
	if visible, err := t.visible(ctx, node); err != nil || !visible {
		return nil, err
	}
	levels, err := t.descendantLevels(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := map[uuid.UUID]struct{}{id: {}}
	ids := []uuid.UUID{id}
	for _, level := range levels {
		for _, c := range level {
			if !c.IsActive() || c.ParentID == nil {
				continue
			}
			if _, ok := allowed[*c.ParentID]; !ok {
				continue
			}
			allowed[c.ID] = struct{}{}
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// GetSiblings returns the active categories sharing id's parent, excluding
// id, ordered by name. Roots are siblings of each other.
func (t *Tree) GetSiblings(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	node, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var peers []models.Category
	if node.ParentID == nil {
		peers, err = t.store.ListRoots(ctx)
	} else {
		peers, err = t.store.ListChildren(ctx, []uuid.UUID{*node.ParentID})
	}
	if err != nil {
		return nil, fmt.Errorf("list siblings: %w", err)
	}
	out := make([]models.Category, 0, len(peers))
	for _, p := range peers {
		if p.ID != id && p.IsActive() {
			out = append(out, p)
		}
	}
	sortByName(out)
	return out, nil
}

// Children returns the active direct children of id ordered by name.
func (t *Tree) Children(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	children, err := t.store.ListChildren(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return activeSorted(children), nil
}

// Roots returns the active root categories ordered by name.
func (t *Tree) Roots(ctx context.Context) ([]models.Category, error) {
	roots, err := t.store.ListRoots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list root categories: %w", err)
	}
	return activeSorted(roots), nil
}

// List returns every category with the given status (any status when
// status is empty), parents before children and by name within a level.
func (t *Tree) List(ctx context.Context, status models.CategoryStatus) ([]models.Category, error) {
	roots, err := t.store.ListRoots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list root categories: %w", err)
	}
	sortByName(roots)

	byLevel := [][]models.Category{roots}
	for _, r := range roots {
		levels, err := t.descendantLevels(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		for i, level := range levels {
			if len(byLevel) <= i+1 {
				byLevel = append(byLevel, nil)
			}
			byLevel[i+1] = append(byLevel[i+1], level...)
		}
	}

	var out []models.Category
	for _, level := range byLevel {
		sortByName(level)
		for _, c := range level {
			if status == "" || c.Status == status {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

// IsRoot reports whether id has no parent.
func (t *Tree) IsRoot(ctx context.Context, id uuid.UUID) (bool, error) {
	node, err := t.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return node.IsRoot(), nil
}

// IsLeaf reports whether id has no active children.
func (t *Tree) IsLeaf(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := t.Get(ctx, id); err != nil {
		return false, err
	}
	children, err := t.Children(ctx, id)
	if err != nil {
		return false, err
	}
	return len(children) == 0, nil
}

// Level returns the 0-indexed depth of id.
func (t *Tree) Level(ctx context.Context, id uuid.UUID) (int, error) {
	ancestors, err := t.GetAncestors(ctx, id)
	if err != nil {
		return 0, err
	}
	return len(ancestors), nil
}

// FullPath returns the names from the root down to node joined by " > ".
func (t *Tree) FullPath(ctx context.Context, node *models.Category) (string, error) {
	ancestors, err := t.ancestorsOf(ctx, node)
	if err != nil {
		return "", err
	}
	return joinPath(ancestors, node.Name), nil
}

const pathSep = " > "

func joinPath(ancestors []models.Category, name string) string {
	names := make([]string, 0, len(ancestors)+1)
	for _, a := range ancestors {
		names = append(names, a.Name)
	}
	names = append(names, name)
	return strings.Join(names, pathSep)
}

// ResolvePath walks a "/"-separated slug path from a root downwards. Each
// segment must name an active category whose parent is the previous
// segment's category (the first segment must be a root).
func (t *Tree) ResolvePath(ctx context.Context, path string) (*models.Category, error) {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return nil, apperr.New(apperr.CodeNotFound, "path", "empty category path")
	}

	var node *models.Category
	var parentID *uuid.UUID
	for _, seg := range strings.Split(trimmed, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return nil, apperr.New(apperr.CodeNotFound, "path", "empty segment in category path %q", path)
		}
		c, err := t.store.FindBySlug(ctx, seg)
		if err != nil {
			return nil, fmt.Errorf("resolve category path: %w", err)
		}
		if c == nil || !c.IsActive() || !samePtr(c.ParentID, parentID) {
			return nil, apperr.New(apperr.CodeNotFound, "path", "segment %q of %q does not resolve", seg, path)
		}
		node = c
		parentID = &c.ID
	}
	return node, nil
}

// ancestorsOf walks parent links upward from node, at most
// MaxCategoryLevel hops, and returns the chain root first.
func (t *Tree) ancestorsOf(ctx context.Context, node *models.Category) ([]models.Category, error) {
	chain := make([]models.Category, 0, models.MaxCategoryLevel)
	cur := node
	for cur.ParentID != nil {
		if len(chain) == models.MaxCategoryLevel {
			return nil, fmt.Errorf("category %s: ancestor chain longer than %d", node.ID, models.MaxCategoryLevel)
		}
		parent, err := t.store.FindByID(ctx, *cur.ParentID)
		if err != nil {
			return nil, fmt.Errorf("find ancestor: %w", err)
		}
		if parent == nil {
			slog.Warn("category has dangling parent", "id", cur.ID, "parent_id", *cur.ParentID)
			break
		}
		if parent.ID == node.ID {
			return nil, fmt.Errorf("category %s is its own ancestor", node.ID)
		}
		chain = append(chain, *parent)
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// visible reports whether node and all of its ancestors are active.
func (t *Tree) visible(ctx context.Context, node *models.Category) (bool, error) {
	if !node.IsActive() {
		return false, nil
	}
	ancestors, err := t.ancestorsOf(ctx, node)
	if err != nil {
		return false, err
	}
	for _, a := range ancestors {
		if !a.IsActive() {
			return false, nil
		}
	}
	return true, nil
}

// descendantLevels expands id breadth-first and returns its descendants
// grouped by distance (levels[0] are the direct children). The walk is
// bounded by the depth invariant; a deeper subtree is reported as an error.
func (t *Tree) descendantLevels(ctx context.Context, id uuid.UUID) ([][]models.Category, error) {
	var levels [][]models.Category
	seen := map[uuid.UUID]struct{}{id: {}}
	frontier := []uuid.UUID{id}

	for len(frontier) > 0 {
		if len(levels) > models.MaxCategoryLevel {
			return nil, fmt.Errorf("category %s: subtree deeper than %d levels", id, models.MaxCategoryLevel)
		}
		children, err := t.store.ListChildren(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("list descendants: %w", err)
		}
		var level []models.Category
		next := make([]uuid.UUID, 0, len(children))
		for _, c := range children {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			level = append(level, c)
			next = append(next, c.ID)
		}
		if len(level) == 0 {
			break
		}
		levels = append(levels, level)
		frontier = next
	}
	return levels, nil
}

// checkNameFree fails with duplicate_name if parentID already has a child
// called name other than self.
func (t *Tree) checkNameFree(ctx context.Context, parentID *uuid.UUID, name string, self uuid.UUID) error {
	existing, err := t.store.FindByName(ctx, parentID, name)
	if err != nil {
		return fmt.Errorf("find category by name: %w", err)
	}
	if existing != nil && existing.ID != self {
		return apperr.New(apperr.CodeDuplicateName, "name", "a category named %q already exists at this level", name)
	}
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.New(apperr.CodeInvalid, "name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", apperr.New(apperr.CodeInvalid, "name", "name is too long (max %d characters)", maxNameLen)
	}
	return name, nil
}

func activeSorted(cats []models.Category) []models.Category {
	out := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		if c.IsActive() {
			out = append(out, c)
		}
	}
	sortByName(out)
	return out
}

func sortByName(cats []models.Category) {
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
}

// samePtr compares two *uuid.UUID for equality (both nil or same value).
func samePtr(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
