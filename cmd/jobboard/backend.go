package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"jobboard/internal/category"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/job"
	"jobboard/internal/store"
)

// backend bundles the category and job services over one store.
type backend struct {
	tree  *category.Tree
	agg   *category.Aggregator
	index *job.Index
	jobs  database.JobWriter
	db    *sql.DB // nil for the memory backend
}

// openBackend connects the configured store. The Postgres backend is
// migrated before use; the memory backend starts empty.
func openBackend(c *config.Config) (*backend, error) {
	if c.StoreBackend == config.BackendMemory {
		m := store.NewMemory()
		tree := category.NewTree(m)
		slog.Warn("using the in-memory store, data is lost on exit")
		return &backend{
			tree:  tree,
			agg:   category.NewAggregator(tree, m),
			index: job.NewIndex(m),
			jobs:  m,
		}, nil
	}

	db, err := database.Connect(c.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	js := store.NewJobStore(db)
	tree := category.NewTree(store.NewCategoryStore(db))
	return &backend{
		tree:  tree,
		agg:   category.NewAggregator(tree, js),
		index: job.NewIndex(js),
		jobs:  js,
		db:    db,
	}, nil
}

func (b *backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
