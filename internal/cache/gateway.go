// Package cache implements the response cache in front of the data store.
//
// Keys follow two fixed layouts: "<type>:<id>" for single resources and
// "<type>:list:<canonical-json>" for list queries. Every entry carries the
// same fixed TTL. The gateway is strictly best-effort: any redis failure is
// logged and treated as a cache miss (reads) or ignored (writes), so the
// store remains the source of truth and a request never fails on the cache.
package cache

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultTTL = 3600 * time.Second

// canonical marshals map keys in sorted order so that two semantically
// identical query objects always derive the same cache key.
var canonical = jsoniter.Config{SortMapKeys: true}.Froze()

type Gateway struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGateway(rdb *redis.Client, ttl time.Duration) *Gateway {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gateway{rdb: rdb, ttl: ttl}
}

// TTL returns the fixed expiry applied to entries; this is also the upper
// bound on staleness when a post-mutation invalidation is lost.
func (g *Gateway) TTL() time.Duration {
	return g.ttl
}

// KeyForID derives the cache key of a single resource.
func (g *Gateway) KeyForID(resType, id string) string {
	return fmt.Sprintf("%s:%s", resType, id)
}

// KeyForQuery derives the cache key of a list query from the canonical
// serialization of the query object.
func (g *Gateway) KeyForQuery(resType string, query interface{}) string {
	data, err := canonical.Marshal(query)
	if err != nil {
		// unmarshalable query objects never hit the cache
		return fmt.Sprintf("%s:list:!%v", resType, query)
	}
	return fmt.Sprintf("%s:list:%s", resType, string(data))
}

// Get returns the raw cached payload for key, or ok=false on miss or on
// any cache error.
func (g *Gateway) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := g.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		zap.L().Warn("cache get failed, treating as miss", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, true
}

// Set stores value under key with the fixed TTL, overwriting any existing
// entry. Failures are logged and swallowed.
func (g *Gateway) Set(ctx context.Context, key string, value interface{}) {
	data, err := canonical.Marshal(value)
	if err != nil {
		zap.L().Warn("cache set: marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := g.rdb.Set(ctx, key, data, g.ttl).Err(); err != nil {
		zap.L().Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate deletes a single key; deleting an absent key is a no-op.
func (g *Gateway) Invalidate(ctx context.Context, key string) {
	if err := g.rdb.Del(ctx, key).Err(); err != nil {
		zap.L().Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateScope deletes every key of a resource type, id-keyed and
// list-keyed alike. Called after any mutation of that type so stale list
// queries are not served. Best-effort: a lost sweep only extends staleness
// up to the TTL.
func (g *Gateway) InvalidateScope(ctx context.Context, resType string) {
	pattern := resType + ":*"
	iter := g.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		zap.L().Warn("cache scope scan failed", zap.String("scope", resType), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := g.rdb.Del(ctx, keys...).Err(); err != nil {
		zap.L().Warn("cache scope invalidate failed",
			zap.String("scope", resType), zap.Int("keys", len(keys)), zap.Error(err))
	}
}
