// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the domain types shared by the stores, the
// category tree and the HTTP layer.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MaxCategoryLevel is the deepest 0-indexed level a category may sit at.
// Roots are level 0, so the tree holds at most three levels.
const MaxCategoryLevel = 2

// CategoryStatus is the lifecycle state of a category. The only transition
// is active -> inactive (soft delete).
type CategoryStatus string

const (
	CategoryActive   CategoryStatus = "active"
	CategoryInactive CategoryStatus = "inactive"
)

// Category is a node in the job category forest. Children are not owned by
// the parent; they are found through an index on ParentID.
type Category struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	ParentID  *uuid.UUID     `json:"parent_id"`
	Status    CategoryStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Virtual fields populated by the category catalog.
	JobCount int        `json:"job_count"`
	FullPath string     `json:"full_path"`
	Level    int        `json:"level"`
	Children []Category `json:"children"`
}

// IsActive returns true if the category has not been soft-deleted.
func (c *Category) IsActive() bool {
	return c.Status == CategoryActive
}

// IsRoot returns true if the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// MarshalJSON writes a category without loaded children as "children": []
// so every listing has the same shape.
func (c Category) MarshalJSON() ([]byte, error) {
	type plain Category
	v := plain(c)
	if v.Children == nil {
		v.Children = []Category{}
	}
	return json.Marshal(v)
}
