package utils

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/qaforum/config"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
	redisMu     sync.RWMutex
)

// GetRedis returns a singleton Redis client based on loaded config, or nil
// when the server did not answer the initial ping. Callers fall back to
// in-process behaviour on nil.
func GetRedis() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.Get()
		rc := redis.NewClient(&redis.Options{
			Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Ping(ctx).Err(); err != nil {
			Sugar.Warnf("redis unavailable at %s, using in-process fallbacks: %v", rc.Options().Addr, err)
			_ = rc.Close()
			return
		}
		redisMu.Lock()
		if redisClient == nil {
			redisClient = rc
		}
		redisMu.Unlock()
	})
	redisMu.RLock()
	defer redisMu.RUnlock()
	return redisClient
}

// SetRedis replaces the shared client. Passing nil disables Redis.
func SetRedis(rc *redis.Client) {
	redisOnce.Do(func() {})
	redisMu.Lock()
	redisClient = rc
	redisMu.Unlock()
}
