// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package song

import (
	stdctx "context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/spevnik/internal/platform/constants"
)

// # Facet & Statistics Cache

// FacetCache keeps the landing-page aggregates (default facet counts and
// catalogue statistics) in Redis.
//
// # Consistency
//
// Entries are dropped on every song mutation and additionally expire by TTL,
// so a failed invalidation only delays freshness instead of persisting a
// wrong count forever. The cache is strictly best-effort: every miss or
// Redis failure falls through to PostgreSQL.
type FacetCache struct {
	client *redis.Client
}

// NewFacetCache creates a Redis-backed [FacetCache].
func NewFacetCache(client *redis.Client) *FacetCache {
	return &FacetCache{client: client}
}

/*
GetFacetCounts returns the cached default facet map.

Parameters:
  - context: context.Context

Returns:
  - map[string]int: Cached counts
  - bool: False on miss, expiry, or any Redis/decoding failure
*/
func (cache *FacetCache) GetFacetCounts(context stdctx.Context) (map[string]int, bool) {
	raw, err := cache.client.Get(context, constants.RedisKeyFacetCounts).Bytes()
	if err != nil {
		return nil, false
	}

	var counts map[string]int
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, false
	}

	return counts, true
}

/*
SetFacetCounts stores the default facet map with the standard TTL.
*/
func (cache *FacetCache) SetFacetCounts(context stdctx.Context, counts map[string]int) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("facet_cache_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, constants.RedisKeyFacetCounts, raw, constants.FacetCacheTTL).Err(); err != nil {
		return fmt.Errorf("facet_cache_set_failed: %w", err)
	}

	return nil
}

/*
GetStats returns the cached catalogue statistics.
*/
func (cache *FacetCache) GetStats(context stdctx.Context) (*Stats, bool) {
	raw, err := cache.client.Get(context, constants.RedisKeySongStats).Bytes()
	if err != nil {
		return nil, false
	}

	stats := &Stats{}
	if err := json.Unmarshal(raw, stats); err != nil {
		return nil, false
	}

	return stats, true
}

/*
SetStats stores the catalogue statistics with the standard TTL.
*/
func (cache *FacetCache) SetStats(context stdctx.Context, stats *Stats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats_cache_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, constants.RedisKeySongStats, raw, constants.FacetCacheTTL).Err(); err != nil {
		return fmt.Errorf("stats_cache_set_failed: %w", err)
	}

	return nil
}

/*
Invalidate drops every cached aggregate after a song mutation.
*/
func (cache *FacetCache) Invalidate(context stdctx.Context) error {
	if err := cache.client.Del(context, constants.RedisKeyFacetCounts, constants.RedisKeySongStats).Err(); err != nil {
		return fmt.Errorf("facet_cache_invalidate_failed: %w", err)
	}
	return nil
}
