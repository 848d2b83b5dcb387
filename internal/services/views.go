package services

import (
	"context"
	"time"

	"github.com/yungbote/playbook-backend/internal/data/cache"
	"github.com/yungbote/playbook-backend/internal/observability"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

const (
	viewScenarioItems = "scenario_items"
	viewVisibility    = "visibility"
)

// viewCache wraps cache.ViewCache with metrics and swallows backend errors:
// a failed read falls through to the database, a failed invalidation is
// bounded by the TTL.
type viewCache struct {
	c   cache.ViewCache
	ttl time.Duration
	log *logger.Logger
}

func newViewCache(c cache.ViewCache, ttl time.Duration, log *logger.Logger) *viewCache {
	if c == nil {
		c = cache.Nop{}
	}
	return &viewCache{c: c, ttl: ttl, log: log}
}

// versionedKey folds the generations of every scope covering base into the
// key. Writers bump a scope after commit, so a fill computed from a snapshot
// older than the bump lands under a key later readers never ask for.
func (v *viewCache) versionedKey(ctx context.Context, scenarioID uint64, base string) (string, error) {
	gens, err := v.c.Generations(ctx, cache.ScenarioNamespace, cache.ScenarioPrefix(scenarioID), base)
	if err != nil {
		return "", err
	}
	return cache.Versioned(base, gens...), nil
}

// lookup resolves the versioned key for base and reads it. The returned key
// is captured before the caller touches the database and is what set must
// be given; it is empty when generations could not be read.
func (v *viewCache) lookup(ctx context.Context, view string, scenarioID uint64, base string, dst any) (string, bool) {
	key, err := v.versionedKey(ctx, scenarioID, base)
	if err != nil {
		observability.Current().IncCacheLookup(view, "error")
		v.log.Warn("view cache generation read failed", "key", base, "error", err)
		return "", false
	}
	ok, err := v.c.Get(ctx, key, dst)
	switch {
	case err != nil:
		observability.Current().IncCacheLookup(view, "error")
		v.log.Warn("view cache read failed", "key", key, "error", err)
		return key, false
	case ok:
		observability.Current().IncCacheLookup(view, "hit")
	default:
		observability.Current().IncCacheLookup(view, "miss")
	}
	return key, ok
}

func (v *viewCache) set(ctx context.Context, key string, value any) {
	if key == "" {
		return
	}
	if err := v.c.Set(ctx, key, value, v.ttl); err != nil {
		v.log.Warn("view cache write failed", "key", key, "error", err)
	}
}

func (v *viewCache) drop(ctx context.Context, keys ...string) {
	v.bump(ctx, keys...)
}

func (v *viewCache) dropScenario(ctx context.Context, scenarioID uint64) {
	v.bump(ctx, cache.ScenarioPrefix(scenarioID))
}

// dropAll retires every scenario view; used when the content tree changes
// underneath links.
func (v *viewCache) dropAll(ctx context.Context) {
	v.bump(ctx, cache.ScenarioNamespace)
}

func (v *viewCache) bump(ctx context.Context, scopes ...string) {
	if err := v.c.Bump(context.WithoutCancel(ctx), scopes...); err != nil {
		v.log.Warn("view cache invalidation failed", "scopes", scopes, "error", err)
	}
}
