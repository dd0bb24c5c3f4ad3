// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// snapshot.go provides a Valkey-backed cache for published JSON files.
// Public /json reads go through object storage; caching the bytes keeps
// storefront page loads off the storage backend entirely.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// snapshotKeyPrefix is the Valkey key prefix for cached JSON files.
	snapshotKeyPrefix = "json:"

	// DefaultSnapshotTTL is how long a published file stays cached.
	// Export runs invalidate explicitly, so the TTL only bounds staleness
	// after out-of-band storage changes.
	DefaultSnapshotTTL = 10 * time.Minute
)

// SnapshotCache manages published JSON caching in Valkey.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache creates a snapshot cache backed by the given Valkey client.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl == 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get retrieves cached bytes for a file name. Returns false on miss.
func (sc *SnapshotCache) Get(ctx context.Context, name string) ([]byte, bool) {
	val, err := sc.client.Get(ctx, snapshotKeyPrefix+name).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("snapshot cache get error", "name", name, "error", err)
		return nil, false
	}
	slog.Debug("snapshot cache hit", "name", name)
	return val, true
}

// Set stores file bytes with the configured TTL.
func (sc *SnapshotCache) Set(ctx context.Context, name string, data []byte) {
	if err := sc.client.Set(ctx, snapshotKeyPrefix+name, data, sc.ttl).Err(); err != nil {
		slog.Warn("snapshot cache set error", "name", name, "error", err)
	}
}

// Invalidate removes a single file from the cache.
func (sc *SnapshotCache) Invalidate(ctx context.Context, name string) {
	if err := sc.client.Del(ctx, snapshotKeyPrefix+name).Err(); err != nil {
		slog.Warn("snapshot cache invalidate error", "name", name, "error", err)
	}
	slog.Debug("snapshot cache invalidated", "name", name)
}

// InvalidateAll removes every cached file by scanning for the prefix.
// Export runs call this after replacing the published set.
func (sc *SnapshotCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := sc.client.Scan(ctx, cursor, snapshotKeyPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := sc.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("snapshot cache cleared", "deleted", deleted)
	}
	return nil
}
