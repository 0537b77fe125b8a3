package utils

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultCacheTTL = 30 * time.Second

var fills singleflight.Group

// CacheGetBytes returns cached bytes for a key from Redis.
func CacheGetBytes(ctx context.Context, key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		Logger.Debug("cache miss", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return b, true
}

// CacheSetBytes stores bytes with ttl, or the default TTL when ttl is zero.
func CacheSetBytes(ctx context.Context, key string, b []byte, ttl time.Duration) {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	rc := GetRedis()
	if rc == nil || ttl < 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Set(ctx, key, b, ttl).Err(); err != nil {
		Logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// CacheJSON returns the cached JSON under key decoded into out. On a miss it
// calls fill once per key across concurrent callers and caches the result.
// fill receives a context that is not cancelled with ctx.
// A negative ttl bypasses the cache.
func CacheJSON(ctx context.Context, key string, ttl time.Duration, out interface{}, fill func(context.Context) (interface{}, error)) error {
	if ttl >= 0 {
		if b, ok := CacheGetBytes(ctx, key); ok {
			if err := json.Unmarshal(b, out); err == nil {
				return nil
			}
		}
	}
	// shared by every waiter on key
	fillCtx := context.WithoutCancel(ctx)
	b, err, _ := fills.Do(key, func() (interface{}, error) {
		v, err := fill(fillCtx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		CacheSetBytes(fillCtx, key, b, ttl)
		return b, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(b.([]byte), out)
}

// InvalidateByPrefix deletes keys that match the given prefix using SCAN.
func InvalidateByPrefix(ctx context.Context, prefix string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // limit rounds to avoid long loops
		keys, cur, err := rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			Logger.Warn("cache invalidate failed", zap.String("prefix", prefix), zap.Error(err))
			return
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			return
		}
	}
}
