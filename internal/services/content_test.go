package services

import (
	"context"
	"testing"

	"github.com/yungbote/playbook-backend/internal/data/cache"
	"github.com/yungbote/playbook-backend/internal/data/repos"
	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/apierr"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/realtime"
)

func strPtr(s string) *string { return &s }

func TestCreateProductStampsActor(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx("writer@example.com")

	p, err := f.content.CreateProduct(ctx, ProductInput{Title: "  Handbook  ", Description: "d"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if p.Title != "Handbook" {
		t.Fatalf("title: want=%q got=%q", "Handbook", p.Title)
	}
	if p.CreatedBy == nil || *p.CreatedBy != "writer@example.com" || p.UpdatedBy == nil || *p.UpdatedBy != "writer@example.com" {
		t.Fatalf("actor columns: created_by=%v updated_by=%v", p.CreatedBy, p.UpdatedBy)
	}
	if !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Fatalf("timestamps: created_at=%v updated_at=%v", p.CreatedAt, p.UpdatedAt)
	}

	if _, err := f.content.CreateProduct(ctx, ProductInput{Title: "  "}); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("blank title: want validation got=%v", err)
	}

	logs, err := f.activity.List(dbctx.Context{Ctx: ctx}, repos.ActivityLogFilter{Query: "writer@"})
	if err != nil {
		t.Fatalf("activity List: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != "create_product" || logs[0].EntityID != p.ID || logs[0].IPAddress != "10.0.0.1" {
		t.Fatalf("activity: got=%+v", logs)
	}
	if logs[0].Kind != types.ActivityKindContentEdit {
		t.Fatalf("activity kind: want=%s got=%s", types.ActivityKindContentEdit, logs[0].Kind)
	}

	events := f.emitter.events(realtime.ChannelCatalog)
	if len(events) != 1 || events[0] != realtime.SSEEventCatalogChanged {
		t.Fatalf("catalog events: got=%v", events)
	}
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.content.CreateProduct(actorCtx("first"), ProductInput{Title: "old", Description: "old"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	got, err := f.content.UpdateProduct(actorCtx("second"), p.ID, ProductInput{Title: "new", Description: "new"})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if got.Title != "new" || got.Description != "new" {
		t.Fatalf("fields: got=%+v", got)
	}
	if got.UpdatedBy == nil || *got.UpdatedBy != "second" || got.CreatedBy == nil || *got.CreatedBy != "first" {
		t.Fatalf("actors: created_by=%v updated_by=%v", got.CreatedBy, got.UpdatedBy)
	}
	// unchanged values still succeed
	if _, err := f.content.UpdateProduct(actorCtx("second"), p.ID, ProductInput{Title: "new", Description: "new"}); err != nil {
		t.Fatalf("UpdateProduct same values: %v", err)
	}
	if _, err := f.content.UpdateProduct(ctx, p.ID+1000, ProductInput{Title: "x"}); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("unknown product: want not_found got=%v", err)
	}
	if _, err := f.content.GetProduct(ctx, p.ID+1000); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("GetProduct unknown: want not_found got=%v", err)
	}
}

func TestCreateItemRejectsUnknownProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.CreateItem(ctx, 987654, "orphan")
	if got := apierr.KindOf(err); got != apierr.KindForeignKeyViolation {
		t.Fatalf("CreateItem: want=%s got=%s (%v)", apierr.KindForeignKeyViolation, got, err)
	}
	_, err = f.content.CreateSubitem(ctx, 987654, SubitemInput{Title: "orphan"})
	if got := apierr.KindOf(err); got != apierr.KindForeignKeyViolation {
		t.Fatalf("CreateSubitem: want=%s got=%s (%v)", apierr.KindForeignKeyViolation, got, err)
	}
	items, err := f.content.ListItems(ctx, 987654)
	if err != nil || items == nil || len(items) != 0 {
		t.Fatalf("ListItems unknown product: err=%v got=%v", err, items)
	}
}

func TestUpdateSubitemReplacesFields(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx("author")

	p, _ := f.content.CreateProduct(ctx, ProductInput{Title: "p"})
	it, err := f.content.CreateItem(ctx, p.ID, "i")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	s, err := f.content.CreateSubitem(ctx, it.ID, SubitemInput{
		Title:       "s",
		Subtitle:    strPtr("sub"),
		Description: "<p>one</p>",
		FilePath:    strPtr("docs/one.pdf"),
	})
	if err != nil {
		t.Fatalf("CreateSubitem: %v", err)
	}
	if s.LastUpdatedBy == nil || *s.LastUpdatedBy != "author" || s.LastUpdatedAt == nil {
		t.Fatalf("create stamps: got=%+v", s)
	}

	got, err := f.content.UpdateSubitem(actorCtx("editor"), s.ID, SubitemInput{Title: "s2", Description: "<p>two</p>"})
	if err != nil {
		t.Fatalf("UpdateSubitem: %v", err)
	}
	if got.Title != "s2" || got.Description != "<p>two</p>" {
		t.Fatalf("fields: got=%+v", got)
	}
	if got.Subtitle != nil || got.FilePath != nil {
		t.Fatalf("omitted optionals should clear: subtitle=%v file_path=%v", got.Subtitle, got.FilePath)
	}
	if got.LastUpdatedBy == nil || *got.LastUpdatedBy != "editor" {
		t.Fatalf("last_updated_by: got=%v", got.LastUpdatedBy)
	}
	if _, err := f.content.UpdateSubitem(ctx, s.ID+1000, SubitemInput{Title: "x"}); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("unknown subitem: want not_found got=%v", err)
	}
}

// Deleting a product removes its tree and every composition row that
// referenced it.
func TestDeleteProductCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _ := f.content.CreateProduct(ctx, ProductInput{Title: "P"})
	it, _ := f.content.CreateItem(ctx, p.ID, "I")
	su, err := f.content.CreateSubitem(ctx, it.ID, SubitemInput{Title: "SU"})
	if err != nil {
		t.Fatalf("CreateSubitem: %v", err)
	}
	s, _ := f.scenarios.CreateScenario(ctx, ScenarioInput{Title: "S"})
	if _, err := f.composition.LinkItem(ctx, s.ID, it.ID); err != nil {
		t.Fatalf("LinkItem: %v", err)
	}
	if _, err := f.composition.SetVisibility(ctx, s.ID, it.ID, su.ID, false); err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}
	if views, err := f.composition.ListScenarioItems(ctx, s.ID); err != nil || len(views) != 1 {
		t.Fatalf("ListScenarioItems before delete: err=%v got=%+v", err, views)
	}

	if err := f.content.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}

	views, err := f.composition.ListScenarioItems(ctx, s.ID)
	if err != nil || len(views) != 0 {
		t.Fatalf("ListScenarioItems after delete: err=%v got=%+v", err, views)
	}
	if n := countLinks(t, f.db, s.ID); n != 0 {
		t.Fatalf("links: want=0 got=%d", n)
	}
	if n := countVisibilityRows(t, f.db, s.ID); n != 0 {
		t.Fatalf("visibility rows: want=0 got=%d", n)
	}
	subs, err := f.content.ListSubitems(ctx, it.ID)
	if err != nil || len(subs) != 0 {
		t.Fatalf("subitems: err=%v got=%d", err, len(subs))
	}
	if _, err := f.scenarios.GetScenario(ctx, s.ID); err != nil {
		t.Fatalf("scenario must survive product delete: %v", err)
	}
	if err := f.content.DeleteProduct(ctx, p.ID); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("second delete: want not_found got=%v", err)
	}
}

func TestDeleteSubitemDropsOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _ := f.content.CreateProduct(ctx, ProductInput{Title: "P"})
	it, _ := f.content.CreateItem(ctx, p.ID, "I")
	keep, _ := f.content.CreateSubitem(ctx, it.ID, SubitemInput{Title: "keep"})
	drop, _ := f.content.CreateSubitem(ctx, it.ID, SubitemInput{Title: "drop"})
	s, _ := f.scenarios.CreateScenario(ctx, ScenarioInput{Title: "S"})
	for _, id := range []uint64{keep.ID, drop.ID} {
		if _, err := f.composition.SetVisibility(ctx, s.ID, it.ID, id, false); err != nil {
			t.Fatalf("SetVisibility(%d): %v", id, err)
		}
	}
	if _, err := f.composition.GetVisibility(ctx, s.ID, it.ID); err != nil {
		t.Fatalf("GetVisibility: %v", err)
	}

	if err := f.content.DeleteSubitem(ctx, drop.ID); err != nil {
		t.Fatalf("DeleteSubitem: %v", err)
	}
	var cached map[uint64]bool
	if f.cachedView(t, s.ID, cache.ScenarioVisibilityKey(s.ID, it.ID), &cached) {
		t.Fatalf("subitem delete should invalidate visibility views")
	}
	got, err := f.composition.GetVisibility(ctx, s.ID, it.ID)
	if err != nil {
		t.Fatalf("GetVisibility: %v", err)
	}
	if len(got) != 1 || got[keep.ID] {
		t.Fatalf("visibility: want {%d:false} got=%v", keep.ID, got)
	}
	if n := countVisibilityRows(t, f.db, s.ID); n != 1 {
		t.Fatalf("rows: want=1 got=%d", n)
	}
}

func TestDeleteItemRemovesLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _ := f.content.CreateProduct(ctx, ProductInput{Title: "P"})
	gone, _ := f.content.CreateItem(ctx, p.ID, "gone")
	stays, _ := f.content.CreateItem(ctx, p.ID, "stays")
	s, _ := f.scenarios.CreateScenario(ctx, ScenarioInput{Title: "S"})
	if _, err := f.composition.AddItemsToScenario(ctx, s.ID, []uint64{gone.ID, stays.ID}); err != nil {
		t.Fatalf("AddItemsToScenario: %v", err)
	}
	if err := f.content.DeleteItem(ctx, gone.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	views, err := f.composition.ListScenarioItems(ctx, s.ID)
	if err != nil || len(views) != 1 || views[0].ItemID != stays.ID {
		t.Fatalf("ListScenarioItems: err=%v got=%+v", err, views)
	}
	items, err := f.content.ListItems(ctx, p.ID)
	if err != nil || len(items) != 1 || items[0].ID != stays.ID {
		t.Fatalf("ListItems: err=%v got=%+v", err, items)
	}
	if err := f.content.DeleteItem(ctx, gone.ID); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("second delete: want not_found got=%v", err)
	}
}
