package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/data/cache"
	"github.com/yungbote/playbook-backend/internal/data/repos"
	"github.com/yungbote/playbook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/playbook-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) events(channel string) []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []realtime.SSEEvent
	for _, m := range e.msgs {
		if m.Channel == channel {
			out = append(out, m.Event)
		}
	}
	return out
}

type fixture struct {
	db          *gorm.DB
	cache       *cache.Memory
	emitter     *recordingEmitter
	activity    repos.ActivityLogRepo
	visibility  repos.SubitemVisibilityRepo
	content     ContentService
	scenarios   ScenarioService
	composition CompositionService
}

// newFixture wires the services over a fresh database. Services open their
// own transactions, so tests seed through db directly and never hold a Tx.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := cache.NewMemory()
	return newFixtureWithCache(t, mem, mem)
}

// newFixtureWithCache lets a test put a wrapper around mem in front of the
// services while still inspecting mem directly.
func newFixtureWithCache(t *testing.T, mem *cache.Memory, views cache.ViewCache) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	products := repos.NewProductRepo(db, log)
	items := repos.NewItemRepo(db, log)
	subitems := repos.NewSubitemRepo(db, log)
	scenarios := repos.NewScenarioRepo(db, log)
	links := repos.NewScenarioItemRepo(db, log)
	visibility := repos.NewSubitemVisibilityRepo(db, log)
	activityRepo := repos.NewActivityLogRepo(db, log)

	emitter := &recordingEmitter{}
	notify := NewCompositionNotifier(emitter)
	activity := NewActivityLogService(db, log, activityRepo)

	return &fixture{
		db:         db,
		cache:      mem,
		emitter:    emitter,
		activity:   activityRepo,
		visibility: visibility,
		content:    NewContentService(db, log, products, items, subitems, links, visibility, views, activity, notify),
		scenarios:  NewScenarioService(db, log, scenarios, links, visibility, views, activity, notify),
		composition: NewCompositionService(db, log, scenarios, items, subitems, links, visibility, views,
			CompositionConfig{BatchConcurrency: 4}, activity, notify),
	}
}

// cachedView reads the current generation of a scenario view the same way
// the services resolve it.
func (f *fixture) cachedView(t *testing.T, scenarioID uint64, base string, dst any) bool {
	t.Helper()
	ctx := context.Background()
	gens, err := f.cache.Generations(ctx, cache.ScenarioNamespace, cache.ScenarioPrefix(scenarioID), base)
	if err != nil {
		t.Fatalf("Generations: %v", err)
	}
	ok, err := f.cache.Get(ctx, cache.Versioned(base, gens...), dst)
	if err != nil {
		t.Fatalf("cache Get: %v", err)
	}
	return ok
}

// interleavingCache runs onSet once, right before the first Set whose key
// starts with prefix, to slot a write between a reader's database read and
// its cache fill.
type interleavingCache struct {
	*cache.Memory
	prefix string
	once   sync.Once
	onSet  func()
}

func (c *interleavingCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if strings.HasPrefix(key, c.prefix) && c.onSet != nil {
		c.once.Do(c.onSet)
	}
	return c.Memory.Set(ctx, key, value, ttl)
}

func actorCtx(actor string) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{Actor: actor, IP: "10.0.0.1"})
}

func countVisibilityRows(t *testing.T, db *gorm.DB, scenarioID uint64) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&types.SubitemVisibility{}).Where("scenario_id = ?", scenarioID).Count(&n).Error; err != nil {
		t.Fatalf("count visibility rows: %v", err)
	}
	return n
}

func countLinks(t *testing.T, db *gorm.DB, scenarioID uint64) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&types.ScenarioItem{}).Where("scenario_id = ?", scenarioID).Count(&n).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	return n
}
