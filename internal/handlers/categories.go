// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"jobboard/internal/apperr"
	"jobboard/internal/cache"
	"jobboard/internal/category"
	"jobboard/internal/filter"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
)

// Categories groups the category tree endpoints. The structure of the read
// views is cached in Valkey and every mutation clears it; job counts are
// filled in per request.
type Categories struct {
	tree   *category.Tree
	agg    *category.Aggregator
	filter *filter.Engine
	cache  *cache.CategoryCache
}

// NewCategories creates the category handler group. cache may be nil.
func NewCategories(tree *category.Tree, agg *category.Aggregator, fe *filter.Engine, cc *cache.CategoryCache) *Categories {
	return &Categories{tree: tree, agg: agg, filter: fe, cache: cc}
}

type createCategoryRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

type moveCategoryRequest struct {
	ParentID *string `json:"parent_id"`
}

// List returns the active forest with counts, or with ?status= a flat list
// of categories in that status ("active", "inactive" or "all").
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := r.URL.Query().Get("status")
	if status != "" {
		var want models.CategoryStatus
		switch status {
		case "all":
		case string(models.CategoryActive), string(models.CategoryInactive):
			want = models.CategoryStatus(status)
		default:
			writeError(w, r, apperr.New(apperr.CodeInvalid, "status", "status must be active, inactive or all"))
			return
		}
		cats, err := h.tree.List(ctx, want)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cats)
		return
	}

	var forest []models.Category
	if !h.cache.Get(ctx, cache.ForestKey(), &forest) {
		var err error
		forest, err = h.agg.OutlineForest(ctx)
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.cache.Set(ctx, cache.ForestKey(), forest)
	}
	for i := range forest {
		if err := h.agg.FillCounts(ctx, &forest[i]); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, forest)
}

// Get returns one category with its count, path, level and active children.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()

	var view models.Category
	if !h.cache.Get(ctx, cache.NodeKey(id), &view) {
		node, err := h.tree.Get(ctx, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		view, err = h.agg.Outline(ctx, *node)
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.cache.Set(ctx, cache.NodeKey(id), view)
	}
	if err := h.agg.FillCounts(ctx, &view); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// BySlug returns the category with the given slug.
func (h *Categories) BySlug(w http.ResponseWriter, r *http.Request) {
	node, err := h.tree.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	h.describe(w, r, node, err)
}

// Resolve returns the category at a "/"-separated slug path (?path=).
func (h *Categories) Resolve(w http.ResponseWriter, r *http.Request) {
	node, err := h.tree.ResolvePath(r.Context(), r.URL.Query().Get("path"))
	h.describe(w, r, node, err)
}

func (h *Categories) describe(w http.ResponseWriter, r *http.Request, node *models.Category, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.agg.Describe(r.Context(), *node)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Ancestors returns the chain above a category, root first.
func (h *Categories) Ancestors(w http.ResponseWriter, r *http.Request) {
	h.related(w, r, h.tree.GetAncestors)
}

// Descendants returns every category below a category, of any status.
func (h *Categories) Descendants(w http.ResponseWriter, r *http.Request) {
	h.related(w, r, h.tree.GetDescendants)
}

// Siblings returns the active categories sharing a parent.
func (h *Categories) Siblings(w http.ResponseWriter, r *http.Request) {
	h.related(w, r, h.tree.GetSiblings)
}

func (h *Categories) related(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) ([]models.Category, error)) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cats, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// Jobs lists the jobs in a category's active subtree. Every job filter
// and the search/ordering parameters apply on top.
func (h *Categories) Jobs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	pg, err := parsePagination(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	params, err := filter.ParseParams(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.tree.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	params.CategoryHierarchy = &id

	results, err := h.filter.List(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, results, pg)
}

// Create adds a category under parent_id (omit or null for a root).
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	parentID, err := optionalID("parent_id", req.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.tree.Create(r.Context(), req.Name, parentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.mutated(r, "create", created)
	h.describeStatus(w, r, created, http.StatusCreated)
}

// Move re-parents a category. A null parent_id promotes it to a root.
func (h *Categories) Move(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req moveCategoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	parentID, err := optionalID("parent_id", req.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	moved, err := h.tree.Move(r.Context(), id, parentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.mutated(r, "move", moved)
	h.describeStatus(w, r, moved, http.StatusOK)
}

// Delete soft-deletes a category.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	node, err := h.tree.Deactivate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.mutated(r, "deactivate", node)
	writeJSON(w, http.StatusOK, node)
}

func (h *Categories) describeStatus(w http.ResponseWriter, r *http.Request, node *models.Category, status int) {
	view, err := h.agg.Describe(r.Context(), *node)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, view)
}

// mutated clears cached views and records who changed what.
func (h *Categories) mutated(r *http.Request, action string, node *models.Category) {
	h.cache.InvalidateAll(r.Context())
	actor, _ := middleware.ActorFromCtx(r.Context())
	slog.Info("category mutated", "action", action, "id", node.ID, "slug", node.Slug, "remote", actor.Remote)
}
