package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ViewCache stores JSON-encoded read models. A miss is reported as ok=false
// with a nil error; errors mean the backend itself failed.
//
// Generations are monotonic invalidation counters per scope. Readers fold the
// generations they observed before loading a view into its key (Versioned),
// writers Bump after commit, so a fill computed from pre-write data lands
// under a key no later reader asks for.
type ViewCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error

	// Generations returns one counter per scope, zero for scopes never bumped.
	Generations(ctx context.Context, scopes ...string) ([]int64, error)
	Bump(ctx context.Context, scopes ...string) error
}

const ScenarioNamespace = "scenario:"

func ScenarioPrefix(scenarioID uint64) string {
	return fmt.Sprintf("%s%d:", ScenarioNamespace, scenarioID)
}

func ScenarioItemsKey(scenarioID uint64) string {
	return ScenarioPrefix(scenarioID) + "items"
}

func ScenarioVisibilityKey(scenarioID, itemID uint64) string {
	return fmt.Sprintf("%svisibility:%d", ScenarioPrefix(scenarioID), itemID)
}

// Versioned appends observed generations to a base key.
func Versioned(key string, gens ...int64) string {
	parts := make([]string, len(gens))
	for i, g := range gens {
		parts[i] = strconv.FormatInt(g, 10)
	}
	return key + "@" + strings.Join(parts, ".")
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error { return nil }
func (Nop) DeletePrefix(context.Context, string) error { return nil }
func (Nop) Generations(_ context.Context, scopes ...string) ([]int64, error) {
	return make([]int64, len(scopes)), nil
}
func (Nop) Bump(context.Context, ...string) error { return nil }
