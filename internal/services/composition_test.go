package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/yungbote/playbook-backend/internal/data/cache"
	"github.com/yungbote/playbook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/apierr"
	"github.com/yungbote/playbook-backend/internal/realtime"
)

type composed struct {
	scenario *types.Scenario
	item     *types.Item
	subs     []*types.Subitem
}

func seedComposed(t *testing.T, f *fixture, subitems int) composed {
	t.Helper()
	ctx := context.Background()
	_, item, subs := testutil.Tree(t, ctx, f.db, subitems)
	s := testutil.SeedScenario(t, ctx, f.db, "onboarding")
	return composed{scenario: s, item: item, subs: subs}
}

func TestLinkItemIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx("ops@example.com")
	c := seedComposed(t, f, 0)

	first, err := f.composition.LinkItem(ctx, c.scenario.ID, c.item.ID)
	if err != nil {
		t.Fatalf("LinkItem: %v", err)
	}
	second, err := f.composition.LinkItem(ctx, c.scenario.ID, c.item.ID)
	if err != nil {
		t.Fatalf("LinkItem again: %v", err)
	}
	if first.ID != second.ID || first.DisplayOrder != second.DisplayOrder {
		t.Fatalf("relink: want=%+v got=%+v", first, second)
	}
	if n := countLinks(t, f.db, c.scenario.ID); n != 1 {
		t.Fatalf("links: want=1 got=%d", n)
	}
	if first.CreatedBy == nil || *first.CreatedBy != "ops@example.com" {
		t.Fatalf("created_by: got=%v", first.CreatedBy)
	}
	events := f.emitter.events(realtime.ScenarioChannel(c.scenario.ID))
	if len(events) != 1 || events[0] != realtime.SSEEventScenarioItemsChanged {
		t.Fatalf("events: want one items change got=%v", events)
	}
}

func TestLinkItemErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 0)

	_, err := f.composition.LinkItem(ctx, c.scenario.ID+1000, c.item.ID)
	if got := apierr.KindOf(err); got != apierr.KindNotFound {
		t.Fatalf("unknown scenario: want=%s got=%s (%v)", apierr.KindNotFound, got, err)
	}
	_, err = f.composition.LinkItem(ctx, c.scenario.ID, c.item.ID+1000)
	if got := apierr.KindOf(err); got != apierr.KindForeignKeyViolation {
		t.Fatalf("unknown item: want=%s got=%s (%v)", apierr.KindForeignKeyViolation, got, err)
	}
	if n := countLinks(t, f.db, c.scenario.ID); n != 0 {
		t.Fatalf("links after failures: want=0 got=%d", n)
	}
}

func TestListScenarioItemsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 0)
	other := testutil.SeedItem(t, ctx, f.db, c.item.ProductID, "second")

	for _, id := range []uint64{c.item.ID, other.ID} {
		if _, err := f.composition.LinkItem(ctx, c.scenario.ID, id); err != nil {
			t.Fatalf("LinkItem(%d): %v", id, err)
		}
	}
	views, err := f.composition.ListScenarioItems(ctx, c.scenario.ID)
	if err != nil {
		t.Fatalf("ListScenarioItems: %v", err)
	}
	if len(views) != 2 || views[0].ItemID != c.item.ID || views[1].ItemID != other.ID {
		t.Fatalf("order: got=%+v", views)
	}
	if views[1].ItemTitle != "second" || views[1].ProductID != c.item.ProductID {
		t.Fatalf("joined fields: got=%+v", views[1])
	}

	empty, err := f.composition.ListScenarioItems(ctx, c.scenario.ID+1000)
	if err != nil || len(empty) != 0 {
		t.Fatalf("unknown scenario: err=%v got=%+v", err, empty)
	}
}

func TestReorderItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 0)
	b := testutil.SeedItem(t, ctx, f.db, c.item.ProductID, "b")
	d := testutil.SeedItem(t, ctx, f.db, c.item.ProductID, "d")
	for _, id := range []uint64{c.item.ID, b.ID, d.ID} {
		if _, err := f.composition.LinkItem(ctx, c.scenario.ID, id); err != nil {
			t.Fatalf("LinkItem(%d): %v", id, err)
		}
	}
	// warm the cache so the reorder must invalidate it
	if _, err := f.composition.ListScenarioItems(ctx, c.scenario.ID); err != nil {
		t.Fatalf("ListScenarioItems: %v", err)
	}

	views, err := f.composition.ReorderItems(ctx, c.scenario.ID, []uint64{d.ID, c.item.ID})
	if err != nil {
		t.Fatalf("ReorderItems: %v", err)
	}
	want := []uint64{d.ID, c.item.ID, b.ID}
	for i, v := range views {
		if v.ItemID != want[i] || v.DisplayOrder != i {
			t.Fatalf("position %d: want=%d/%d got=%d/%d", i, want[i], i, v.ItemID, v.DisplayOrder)
		}
	}
	listed, err := f.composition.ListScenarioItems(ctx, c.scenario.ID)
	if err != nil || len(listed) != 3 || listed[0].ItemID != d.ID {
		t.Fatalf("list after reorder: err=%v got=%+v", err, listed)
	}

	if _, err := f.composition.ReorderItems(ctx, c.scenario.ID, []uint64{b.ID, b.ID}); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("duplicate ids: want validation got=%v", err)
	}
	if _, err := f.composition.ReorderItems(ctx, c.scenario.ID, []uint64{b.ID + 1000}); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("unlinked id: want validation got=%v", err)
	}
	if _, err := f.composition.ReorderItems(ctx, c.scenario.ID+1000, []uint64{b.ID}); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("unknown scenario: want not_found got=%v", err)
	}
}

func TestGetVisibilityDefaultsToVisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 3)

	got, err := f.composition.GetVisibility(ctx, c.scenario.ID, c.item.ID)
	if err != nil {
		t.Fatalf("GetVisibility: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("entries: want=3 got=%d", len(got))
	}
	for _, s := range c.subs {
		if !got[s.ID] {
			t.Fatalf("subitem %d: want visible", s.ID)
		}
	}
	if n := countVisibilityRows(t, f.db, c.scenario.ID); n != 0 {
		t.Fatalf("reads must not write rows: got=%d", n)
	}

	empty, err := f.composition.GetVisibility(ctx, c.scenario.ID, c.item.ID+1000)
	if err != nil || len(empty) != 0 {
		t.Fatalf("unknown item: err=%v got=%v", err, empty)
	}
}

func TestSetVisibilityUpsertKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	c := seedComposed(t, f, 1)
	sub := c.subs[0]

	if _, err := f.composition.SetVisibility(actorCtx("first@example.com"), c.scenario.ID, c.item.ID, sub.ID, false); err != nil {
		t.Fatalf("SetVisibility(false): %v", err)
	}
	row, err := f.composition.SetVisibility(actorCtx("second@example.com"), c.scenario.ID, c.item.ID, sub.ID, true)
	if err != nil {
		t.Fatalf("SetVisibility(true): %v", err)
	}
	if !row.IsVisible {
		t.Fatalf("is_visible: want=true got=false")
	}
	if row.CreatedBy == nil || *row.CreatedBy != "first@example.com" {
		t.Fatalf("created_by: want first writer got=%v", row.CreatedBy)
	}
	if row.UpdatedBy == nil || *row.UpdatedBy != "second@example.com" {
		t.Fatalf("updated_by: want second writer got=%v", row.UpdatedBy)
	}
	if n := countVisibilityRows(t, f.db, c.scenario.ID); n != 1 {
		t.Fatalf("rows: want=1 got=%d", n)
	}
}

func TestSetVisibilityValidatesSubitem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 1)
	otherItem := testutil.SeedItem(t, ctx, f.db, c.item.ProductID, "other")
	foreign := testutil.SeedSubitem(t, ctx, f.db, otherItem.ID, "foreign")

	_, err := f.composition.SetVisibility(ctx, c.scenario.ID, c.item.ID, foreign.ID, false)
	if !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("wrong parent: want validation got=%v", err)
	}
	_, err = f.composition.SetVisibility(ctx, c.scenario.ID, c.item.ID, foreign.ID+1000, false)
	if !apierr.IsKind(err, apierr.KindForeignKeyViolation) {
		t.Fatalf("unknown subitem: want foreign_key_violation got=%v", err)
	}
	_, err = f.composition.SetVisibility(ctx, c.scenario.ID+1000, c.item.ID, c.subs[0].ID, false)
	if !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("unknown scenario: want not_found got=%v", err)
	}
	if n := countVisibilityRows(t, f.db, c.scenario.ID); n != 0 {
		t.Fatalf("rows after failures: want=0 got=%d", n)
	}
}

func TestSetVisibilityInvalidatesCachedView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 1)
	sub := c.subs[0]

	if got, err := f.composition.GetVisibility(ctx, c.scenario.ID, c.item.ID); err != nil || !got[sub.ID] {
		t.Fatalf("initial GetVisibility: err=%v got=%v", err, got)
	}
	var cached map[uint64]bool
	if !f.cachedView(t, c.scenario.ID, cache.ScenarioVisibilityKey(c.scenario.ID, c.item.ID), &cached) {
		t.Fatalf("view should be cached after a read")
	}
	if _, err := f.composition.SetVisibility(ctx, c.scenario.ID, c.item.ID, sub.ID, false); err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}
	got, err := f.composition.GetVisibility(ctx, c.scenario.ID, c.item.ID)
	if err != nil || got[sub.ID] {
		t.Fatalf("after write: want hidden err=%v got=%v", err, got)
	}
}

func TestVisibilityWriteDuringFillIsNotMasked(t *testing.T) {
	mem := cache.NewMemory()
	views := &interleavingCache{Memory: mem}
	f := newFixtureWithCache(t, mem, views)
	ctx := context.Background()
	c := seedComposed(t, f, 1)
	sub := c.subs[0]

	views.prefix = cache.ScenarioVisibilityKey(c.scenario.ID, c.item.ID) + "@"
	views.onSet = func() {
		if _, err := f.composition.SetVisibility(ctx, c.scenario.ID, c.item.ID, sub.ID, false); err != nil {
			t.Fatalf("SetVisibility: %v", err)
		}
	}

	// the first read computed its answer before the write committed
	first, err := f.composition.GetVisibility(ctx, c.scenario.ID, c.item.ID)
	if err != nil || !first[sub.ID] {
		t.Fatalf("first GetVisibility: want visible err=%v got=%v", err, first)
	}
	got, err := f.composition.GetVisibility(ctx, c.scenario.ID, c.item.ID)
	if err != nil || got[sub.ID] {
		t.Fatalf("after concurrent write: want hidden err=%v got=%v", err, got)
	}
}

func TestLinkDuringListFillIsNotMasked(t *testing.T) {
	mem := cache.NewMemory()
	views := &interleavingCache{Memory: mem}
	f := newFixtureWithCache(t, mem, views)
	ctx := context.Background()
	c := seedComposed(t, f, 0)
	other := testutil.SeedItem(t, ctx, f.db, c.item.ProductID, "second")

	if _, err := f.composition.LinkItem(ctx, c.scenario.ID, c.item.ID); err != nil {
		t.Fatalf("LinkItem: %v", err)
	}
	views.prefix = cache.ScenarioItemsKey(c.scenario.ID) + "@"
	views.onSet = func() {
		if _, err := f.composition.LinkItem(ctx, c.scenario.ID, other.ID); err != nil {
			t.Fatalf("LinkItem(other): %v", err)
		}
	}

	first, err := f.composition.ListScenarioItems(ctx, c.scenario.ID)
	if err != nil || len(first) != 1 {
		t.Fatalf("first ListScenarioItems: want=1 err=%v got=%d", err, len(first))
	}
	got, err := f.composition.ListScenarioItems(ctx, c.scenario.ID)
	if err != nil || len(got) != 2 {
		t.Fatalf("after concurrent link: want=2 err=%v got=%d", err, len(got))
	}
}

func TestUnlinkItemCascadesVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 2)

	if _, err := f.composition.LinkItem(ctx, c.scenario.ID, c.item.ID); err != nil {
		t.Fatalf("LinkItem: %v", err)
	}
	for _, s := range c.subs {
		if _, err := f.composition.SetVisibility(ctx, c.scenario.ID, c.item.ID, s.ID, false); err != nil {
			t.Fatalf("SetVisibility(%d): %v", s.ID, err)
		}
	}
	if err := f.composition.UnlinkItem(ctx, c.scenario.ID, c.item.ID); err != nil {
		t.Fatalf("UnlinkItem: %v", err)
	}
	if n := countLinks(t, f.db, c.scenario.ID); n != 0 {
		t.Fatalf("links: want=0 got=%d", n)
	}
	if n := countVisibilityRows(t, f.db, c.scenario.ID); n != 0 {
		t.Fatalf("visibility rows: want=0 got=%d", n)
	}
	if err := f.composition.UnlinkItem(ctx, c.scenario.ID, c.item.ID); err != nil {
		t.Fatalf("UnlinkItem on absent pair: want nil got=%v", err)
	}
	got, err := f.composition.GetVisibility(ctx, c.scenario.ID, c.item.ID)
	if err != nil {
		t.Fatalf("GetVisibility: %v", err)
	}
	for _, s := range c.subs {
		if !got[s.ID] {
			t.Fatalf("subitem %d: want default visible after unlink", s.ID)
		}
	}
}

func TestAddItemsToScenarioPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 0)
	linked := testutil.SeedItem(t, ctx, f.db, c.item.ProductID, "linked")
	fresh := testutil.SeedItem(t, ctx, f.db, c.item.ProductID, "fresh")
	if _, err := f.composition.LinkItem(ctx, c.scenario.ID, linked.ID); err != nil {
		t.Fatalf("LinkItem: %v", err)
	}
	missing := fresh.ID + 1000
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	results, err := f.composition.AddItemsToScenario(ctx, c.scenario.ID,
		[]uint64{c.item.ID, missing, linked.ID, c.item.ID, fresh.ID})
	if err != nil {
		t.Fatalf("AddItemsToScenario: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("results: want=4 got=%d (%+v)", len(results), results)
	}
	byID := map[uint64]BatchResult{}
	for _, r := range results {
		byID[r.ID] = r
	}
	if r := byID[c.item.ID]; !r.Success || r.Skipped {
		t.Fatalf("new item: got=%+v", r)
	}
	if r := byID[fresh.ID]; !r.Success || r.Skipped {
		t.Fatalf("fresh item: got=%+v", r)
	}
	if r := byID[linked.ID]; !r.Success || !r.Skipped {
		t.Fatalf("already linked: want skipped got=%+v", r)
	}
	r := byID[missing]
	if r.Success || r.Error == nil || r.Error.Code != string(apierr.KindForeignKeyViolation) {
		t.Fatalf("missing item: got=%+v", r)
	}
	if results[0].ID != c.item.ID || results[1].ID != missing {
		t.Fatalf("results keep request order: got=%+v", results)
	}
	if n := countLinks(t, f.db, c.scenario.ID); n != 3 {
		t.Fatalf("links: want=3 got=%d", n)
	}

	views, err := f.composition.ListScenarioItems(ctx, c.scenario.ID)
	if err != nil {
		t.Fatalf("ListScenarioItems: %v", err)
	}
	seen := map[int]bool{}
	for _, v := range views {
		if seen[v.DisplayOrder] {
			t.Fatalf("display order %d assigned twice: %+v", v.DisplayOrder, views)
		}
		seen[v.DisplayOrder] = true
	}
}

func TestAddItemsToScenarioRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 0)

	if _, err := f.composition.AddItemsToScenario(ctx, c.scenario.ID, nil); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("empty input: want validation got=%v", err)
	}
	if _, err := f.composition.AddItemsToScenario(ctx, c.scenario.ID+1000, []uint64{c.item.ID}); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("unknown scenario: want not_found got=%v", err)
	}
}

func TestConcurrentLinksGetDistinctOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 0)

	ids := []uint64{c.item.ID}
	for i := 0; i < 7; i++ {
		ids = append(ids, testutil.SeedItem(t, ctx, f.db, c.item.ProductID, fmt.Sprintf("item-%d", i)).ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.composition.LinkItem(ctx, c.scenario.ID, id)
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("LinkItem(%d): %v", ids[i], err)
		}
	}

	views, err := f.composition.ListScenarioItems(ctx, c.scenario.ID)
	if err != nil || len(views) != len(ids) {
		t.Fatalf("ListScenarioItems: want=%d err=%v got=%d", len(ids), err, len(views))
	}
	seen := map[int]bool{}
	for _, v := range views {
		if seen[v.DisplayOrder] {
			t.Fatalf("display order %d assigned twice: %+v", v.DisplayOrder, views)
		}
		seen[v.DisplayOrder] = true
	}
}

func TestSaveSubitemVisibilityReportsEachEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 2)
	missing := c.subs[1].ID + 1000

	results, err := f.composition.SaveSubitemVisibility(ctx, c.scenario.ID, c.item.ID, map[uint64]bool{
		c.subs[0].ID: false,
		c.subs[1].ID: true,
		missing:      false,
	})
	if err != nil {
		t.Fatalf("SaveSubitemVisibility: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results: want=3 got=%d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].ID >= results[i].ID {
			t.Fatalf("results sorted by id: got=%+v", results)
		}
	}
	last := results[2]
	if last.ID != missing || last.Success || last.Error == nil {
		t.Fatalf("missing subitem: got=%+v", last)
	}
	got, err := f.composition.GetVisibility(ctx, c.scenario.ID, c.item.ID)
	if err != nil {
		t.Fatalf("GetVisibility: %v", err)
	}
	if got[c.subs[0].ID] || !got[c.subs[1].ID] {
		t.Fatalf("visibility: got=%v", got)
	}
	if n := countVisibilityRows(t, f.db, c.scenario.ID); n != 2 {
		t.Fatalf("rows: want=2 got=%d", n)
	}
}

// Create, link, hide one subitem.
func TestComposeAndHideSubitem(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx("editor@example.com")

	p, err := f.content.CreateProduct(ctx, ProductInput{Title: "P"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	it, err := f.content.CreateItem(ctx, p.ID, "I")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	su1, err := f.content.CreateSubitem(ctx, it.ID, SubitemInput{Title: "SU1"})
	if err != nil {
		t.Fatalf("CreateSubitem(SU1): %v", err)
	}
	su2, err := f.content.CreateSubitem(ctx, it.ID, SubitemInput{Title: "SU2"})
	if err != nil {
		t.Fatalf("CreateSubitem(SU2): %v", err)
	}
	s, err := f.scenarios.CreateScenario(ctx, ScenarioInput{Title: "S"})
	if err != nil {
		t.Fatalf("CreateScenario: %v", err)
	}
	if _, err := f.composition.AddItemsToScenario(ctx, s.ID, []uint64{it.ID}); err != nil {
		t.Fatalf("AddItemsToScenario: %v", err)
	}
	if _, err := f.composition.SetVisibility(ctx, s.ID, it.ID, su1.ID, false); err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}

	got, err := f.composition.GetVisibility(ctx, s.ID, it.ID)
	if err != nil {
		t.Fatalf("GetVisibility: %v", err)
	}
	want := map[uint64]bool{su1.ID: false, su2.ID: true}
	if len(got) != len(want) || got[su1.ID] != want[su1.ID] || got[su2.ID] != want[su2.ID] {
		t.Fatalf("visibility: want=%v got=%v", want, got)
	}
}

// Re-linking keeps the existing link and its overrides.
func TestRelinkIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := seedComposed(t, f, 1)

	first, err := f.composition.LinkItem(ctx, c.scenario.ID, c.item.ID)
	if err != nil {
		t.Fatalf("LinkItem: %v", err)
	}
	if _, err := f.composition.SetVisibility(ctx, c.scenario.ID, c.item.ID, c.subs[0].ID, false); err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}
	results, err := f.composition.AddItemsToScenario(ctx, c.scenario.ID, []uint64{c.item.ID})
	if err != nil {
		t.Fatalf("AddItemsToScenario: %v", err)
	}
	if len(results) != 1 || !results[0].Skipped {
		t.Fatalf("batch relink: want skipped got=%+v", results)
	}
	again, err := f.composition.LinkItem(ctx, c.scenario.ID, c.item.ID)
	if err != nil || again.ID != first.ID || !again.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("LinkItem relink: err=%v first=%+v again=%+v", err, first, again)
	}
	got, err := f.composition.GetVisibility(ctx, c.scenario.ID, c.item.ID)
	if err != nil || got[c.subs[0].ID] {
		t.Fatalf("override survives relink: err=%v got=%v", err, got)
	}
}
