// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"jobboard/internal/models"
)

// Aggregator counts active jobs per category. A job linked to a descendant
// counts towards every active ancestor; a job linked to several categories
// of one subtree is counted once.
type Aggregator struct {
	tree *Tree
	jobs JobCounter
}

// NewAggregator returns an Aggregator reading structure from tree and
// counts from jobs.
func NewAggregator(tree *Tree, jobs JobCounter) *Aggregator {
	return &Aggregator{tree: tree, jobs: jobs}
}

// JobCount returns the number of active jobs in id or any of its active
// descendants. The whole subtree is counted with one store query. A
// category that is inactive, or sits below an inactive one, is out of every
// listing and counts zero, so no visible ancestor is ever outnumbered.
func (a *Aggregator) JobCount(ctx context.Context, id uuid.UUID) (int, error) {
	if _, err := a.tree.Get(ctx, id); err != nil {
		return 0, err
	}
	ids, err := a.tree.ExpandActive(ctx, id)
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	n, err := a.jobs.CountActiveJobs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("count category jobs: %w", err)
	}
	return n, nil
}

// DirectJobCount returns the number of active jobs linked to id itself.
func (a *Aggregator) DirectJobCount(ctx context.Context, id uuid.UUID) (int, error) {
	if _, err := a.tree.Get(ctx, id); err != nil {
		return 0, err
	}
	n, err := a.jobs.CountActiveJobs(ctx, []uuid.UUID{id})
	if err != nil {
		return 0, fmt.Errorf("count direct category jobs: %w", err)
	}
	return n, nil
}

// Counts returns JobCount for each of ids. Unknown ids are reported as
// not_found.
func (a *Aggregator) Counts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(ids))
	for _, id := range ids {
		if _, ok := counts[id]; ok {
			continue
		}
		n, err := a.JobCount(ctx, id)
		if err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, nil
}

// Describe fills the virtual fields of node (job count, full path, level)
// and, recursively, of its active children ordered by name.
func (a *Aggregator) Describe(ctx context.Context, node models.Category) (models.Category, error) {
	view, err := a.Outline(ctx, node)
	if err != nil {
		return node, err
	}
	if err := a.FillCounts(ctx, &view); err != nil {
		return node, err
	}
	return view, nil
}

// Forest describes every active root with its active subtree.
func (a *Aggregator) Forest(ctx context.Context) ([]models.Category, error) {
	forest, err := a.OutlineForest(ctx)
	if err != nil {
		return nil, err
	}
	for i := range forest {
		if err := a.FillCounts(ctx, &forest[i]); err != nil {
			return nil, err
		}
	}
	return forest, nil
}

// Outline is Describe without job counts: the structural view (full path,
// level, active children) that only changes when categories do.
func (a *Aggregator) Outline(ctx context.Context, node models.Category) (models.Category, error) {
	ancestors, err := a.tree.ancestorsOf(ctx, &node)
	if err != nil {
		return node, err
	}
	return a.outline(ctx, node, len(ancestors), joinPath(ancestors, node.Name))
}

func (a *Aggregator) outline(ctx context.Context, node models.Category, level int, path string) (models.Category, error) {
	node.Level = level
	node.FullPath = path
	node.JobCount = 0

	children, err := a.tree.Children(ctx, node.ID)
	if err != nil {
		return node, err
	}
	node.Children = make([]models.Category, 0, len(children))
	for _, child := range children {
		sub, err := a.outline(ctx, child, level+1, path+pathSep+child.Name)
		if err != nil {
			return node, err
		}
		node.Children = append(node.Children, sub)
	}
	return node, nil
}

// OutlineForest outlines every active root.
func (a *Aggregator) OutlineForest(ctx context.Context) ([]models.Category, error) {
	roots, err := a.tree.Roots(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(roots))
	for _, r := range roots {
		view, err := a.outline(ctx, r, 0, r.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// FillCounts sets JobCount on view and every child in it from the current
// job state.
func (a *Aggregator) FillCounts(ctx context.Context, view *models.Category) error {
	n, err := a.JobCount(ctx, view.ID)
	if err != nil {
		return err
	}
	view.JobCount = n
	for i := range view.Children {
		if err := a.FillCounts(ctx, &view.Children[i]); err != nil {
			return err
		}
	}
	return nil
}
