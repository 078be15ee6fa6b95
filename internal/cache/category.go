// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// category.go caches the structure of category listings (the forest and
// single nodes with paths, levels and children) in Valkey. Job counts are
// never stored. Any category mutation clears the whole prefix, since one
// move can change paths across a subtree.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// categoryKeyPrefix is the Valkey key prefix for cached category views.
	categoryKeyPrefix = "category:"

	// DefaultCategoryTTL bounds how long a view written by another process
	// can outlive a mutation made elsewhere.
	DefaultCategoryTTL = time.Minute
)

// CategoryCache stores JSON category views in Valkey. A nil *CategoryCache
// is valid and never hits, so callers need no "is caching on" checks.
type CategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCategoryCache creates a category cache backed by the given Valkey client.
func NewCategoryCache(client *redis.Client, ttl time.Duration) *CategoryCache {
	if ttl == 0 {
		ttl = DefaultCategoryTTL
	}
	return &CategoryCache{client: client, ttl: ttl}
}

// Get decodes the cached value for key into dst and reports a hit.
func (cc *CategoryCache) Get(ctx context.Context, key string, dst any) bool {
	if cc == nil || cc.client == nil {
		return false
	}
	val, err := cc.client.Get(ctx, categoryKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		slog.Warn("category cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		slog.Warn("category cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("category cache hit", "key", key)
	return true
}

// Set stores v as JSON under key with the configured TTL.
func (cc *CategoryCache) Set(ctx context.Context, key string, v any) {
	if cc == nil || cc.client == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("category cache encode error", "key", key, "error", err)
		return
	}
	if err := cc.client.Set(ctx, categoryKeyPrefix+key, data, cc.ttl).Err(); err != nil {
		slog.Warn("category cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached category view by scanning for the prefix.
func (cc *CategoryCache) InvalidateAll(ctx context.Context) {
	if cc == nil || cc.client == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := cc.client.Scan(ctx, cursor, categoryKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("category cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := cc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("category cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("category cache cleared", "deleted", deleted)
	}
}

// ForestKey returns the cache key for the full category forest.
func ForestKey() string {
	return "_forest"
}

// NodeKey returns the cache key for a single category view.
func NodeKey(id uuid.UUID) string {
	return "node:" + id.String()
}
