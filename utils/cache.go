package utils

import (
	"context"
	"time"
)

const (
	defaultCacheTTL = time.Hour
	cacheOpTimeout  = 2 * time.Second
	// scan rounds are capped so invalidation can never stall a mutation
	maxScanRounds = 10
	scanBatch     = 1000
)

// CacheGetBytes fetches a cached response body. A nil client (caching
// disabled) and a miss look the same to callers.
func CacheGetBytes(key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	b, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		if Sugar != nil {
			Sugar.Debugf("cache miss key=%s: %v", key, err)
		}
		return nil, false
	}
	return b, true
}

// CacheSetBytes stores a response body under key. Failures are logged and
// swallowed; the cache is an optimization, never a dependency.
func CacheSetBytes(key string, b []byte, ttl time.Duration) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	if err := rc.Set(ctx, key, b, ttl).Err(); err != nil && Sugar != nil {
		Sugar.Warnf("cache set key=%s: %v", key, err)
	}
}

// InvalidateByPrefix drops every key under prefix via SCAN plus a pipelined
// delete. Mutations call this so stale list pages never outlive a write.
func InvalidateByPrefix(prefix string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var cursor uint64
	for round := 0; round < maxScanRounds; round++ {
		keys, next, err := rc.Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			pipe := rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
