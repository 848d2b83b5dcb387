package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

const (
	scanBatch = 256
	genPrefix = "gen:"
)

type redisCache struct {
	rdb    goredis.UniversalClient
	prefix string
	log    *logger.Logger
}

// NewRedis stores views under prefix+key. The client is shared and is not
// closed by the cache.
func NewRedis(rdb goredis.UniversalClient, prefix string, log *logger.Logger) ViewCache {
	return &redisCache{rdb: rdb, prefix: prefix, log: log.With("component", "RedisViewCache")}
}

func (c *redisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// a stale encoding is a miss; drop it so the next read repopulates
		c.log.Warn("view cache decode failed", "key", key, "error", err)
		_ = c.rdb.Del(ctx, c.prefix+key).Err()
		return false, nil
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, raw, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.prefix+k)
	}
	return c.rdb.Del(ctx, full...).Err()
}

// DeletePrefix walks matching keys with SCAN in batches.
func (c *redisCache) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	pattern := c.prefix + prefix + "*"
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (c *redisCache) genKey(scope string) string {
	return c.prefix + genPrefix + scope
}

// Generations reads every scope in one MGET. Generation keys never expire so
// counters only move forward.
func (c *redisCache) Generations(ctx context.Context, scopes ...string) ([]int64, error) {
	out := make([]int64, len(scopes))
	if len(scopes) == 0 {
		return out, nil
	}
	keys := make([]string, len(scopes))
	for i, s := range scopes {
		keys[i] = c.genKey(s)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("generation %s: unexpected %T", scopes[i], v)
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("generation %s: %w", scopes[i], err)
		}
		out[i] = n
	}
	return out, nil
}

func (c *redisCache) Bump(ctx context.Context, scopes ...string) error {
	if len(scopes) == 0 {
		return nil
	}
	pipe := c.rdb.TxPipeline()
	for _, s := range scopes {
		pipe.Incr(ctx, c.genKey(s))
	}
	_, err := pipe.Exec(ctx)
	return err
}
