package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/data/cache"
	"github.com/yungbote/playbook-backend/internal/data/db"
	"github.com/yungbote/playbook-backend/internal/data/repos"
	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/observability"
	"github.com/yungbote/playbook-backend/internal/platform/apierr"
	"github.com/yungbote/playbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

const defaultBatchConcurrency = 8

type CompositionConfig struct {
	BatchConcurrency int           `env:"COMPOSITION_BATCH_CONCURRENCY" envDefault:"8"`
	CacheTTL         time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

type CompositionService interface {
	ListScenarioItems(ctx context.Context, scenarioID uint64) ([]*types.ScenarioItemView, error)
	// LinkItem is idempotent: linking an existing pair returns the stored link.
	LinkItem(ctx context.Context, scenarioID, itemID uint64) (*types.ScenarioItem, error)
	// UnlinkItem removes the link and the scenario's visibility rows for the
	// item's subitems. Unlinking an absent pair succeeds.
	UnlinkItem(ctx context.Context, scenarioID, itemID uint64) error
	ReorderItems(ctx context.Context, scenarioID uint64, itemIDs []uint64) ([]*types.ScenarioItemView, error)

	// GetVisibility returns one entry per subitem of the item. Subitems without
	// an override are visible.
	GetVisibility(ctx context.Context, scenarioID, itemID uint64) (map[uint64]bool, error)
	SetVisibility(ctx context.Context, scenarioID, itemID, subitemID uint64, isVisible bool) (*types.SubitemVisibility, error)

	AddItemsToScenario(ctx context.Context, scenarioID uint64, itemIDs []uint64) ([]BatchResult, error)
	SaveSubitemVisibility(ctx context.Context, scenarioID, itemID uint64, visibility map[uint64]bool) ([]BatchResult, error)
}

type compositionService struct {
	db          *gorm.DB
	log         *logger.Logger
	scenarios   repos.ScenarioRepo
	items       repos.ItemRepo
	subitems    repos.SubitemRepo
	links       repos.ScenarioItemRepo
	visibility  repos.SubitemVisibilityRepo
	views       *viewCache
	concurrency int
	activity    ActivityLogService
	notify      CompositionNotifier
}

func NewCompositionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	scenarios repos.ScenarioRepo,
	items repos.ItemRepo,
	subitems repos.SubitemRepo,
	links repos.ScenarioItemRepo,
	visibility repos.SubitemVisibilityRepo,
	views cache.ViewCache,
	cfg CompositionConfig,
	activity ActivityLogService,
	notify CompositionNotifier,
) CompositionService {
	serviceLog := baseLog.With("service", "CompositionService")
	concurrency := cfg.BatchConcurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	return &compositionService{
		db:          db,
		log:         serviceLog,
		scenarios:   scenarios,
		items:       items,
		subitems:    subitems,
		links:       links,
		visibility:  visibility,
		views:       newViewCache(views, cfg.CacheTTL, serviceLog),
		concurrency: concurrency,
		activity:    activity,
		notify:      notify,
	}
}

// =====================================
// Links
// =====================================

func (cs *compositionService) ListScenarioItems(ctx context.Context, scenarioID uint64) (out []*types.ScenarioItemView, err error) {
	ctx, span := startSpan(ctx, "CompositionService.ListScenarioItems")
	span.SetAttributes(attribute.Int64("scenario.id", int64(scenarioID)))
	defer func() { endSpan(span, err) }()

	var cached []*types.ScenarioItemView
	key, hit := cs.views.lookup(ctx, viewScenarioItems, scenarioID, cache.ScenarioItemsKey(scenarioID), &cached)
	if hit {
		return cached, nil
	}
	out, err = cs.links.ListViewsByScenarioID(dbctx.Context{Ctx: ctx}, scenarioID)
	if err != nil {
		cs.log.Error("ListScenarioItems failed", "scenario_id", scenarioID, "error", err)
		return nil, db.TranslateError("ListScenarioItems", fmt.Errorf("list scenario items: %w", err))
	}
	cs.views.set(ctx, key, out)
	return out, nil
}

func (cs *compositionService) LinkItem(ctx context.Context, scenarioID, itemID uint64) (link *types.ScenarioItem, err error) {
	ctx, span := startSpan(ctx, "CompositionService.LinkItem")
	span.SetAttributes(
		attribute.Int64("scenario.id", int64(scenarioID)),
		attribute.Int64("item.id", int64(itemID)),
	)
	defer func() { endSpan(span, err) }()

	link, created, err := cs.link(ctx, scenarioID, itemID, 0)
	if err != nil {
		return nil, err
	}
	if created {
		cs.views.drop(ctx, cache.ScenarioItemsKey(scenarioID))
		cs.activity.Record(ctx, ActivityEntry{
			Action:     "link_item",
			EntityType: "scenario",
			EntityID:   scenarioID,
			Metadata:   map[string]any{"item_id": itemID},
		})
		cs.notify.ScenarioItemsChanged(ctx, scenarioID, []uint64{itemID}, "linked")
	}
	return link, nil
}

// link inserts the pair unless present. The scenario row stays locked until
// commit, so concurrent links to one scenario read the max display order one
// at a time and never share a value. minOrder lets a batch keep request order
// when it is not contended.
func (cs *compositionService) link(ctx context.Context, scenarioID, itemID uint64, minOrder int) (row *types.ScenarioItem, created bool, err error) {
	err = inTx(ctx, cs.db, func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		s, err := cs.scenarios.LockByID(dbc, scenarioID)
		if err != nil {
			return fmt.Errorf("lock scenario: %w", err)
		}
		if s == nil {
			return apierr.NotFound("LinkItem", "scenario %d not found", scenarioID)
		}
		item, err := cs.items.GetByID(dbc, itemID)
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}
		if item == nil {
			return apierr.ForeignKey("LinkItem", "item %d does not exist", itemID)
		}
		order, err := cs.links.NextDisplayOrder(dbc, scenarioID)
		if err != nil {
			return fmt.Errorf("next display order: %w", err)
		}
		row, created, err = cs.links.LinkIfAbsent(dbc, &types.ScenarioItem{
			ScenarioID:   scenarioID,
			ItemID:       itemID,
			DisplayOrder: max(order, minOrder),
			CreatedBy:    actorPtr(ctx),
			CreatedAt:    nowUTC(),
		})
		if err != nil {
			return fmt.Errorf("link item: %w", err)
		}
		return nil
	})
	if err != nil {
		cs.log.Warn("link failed", "scenario_id", scenarioID, "item_id", itemID, "error", err)
		return nil, false, db.TranslateError("LinkItem", err)
	}
	return row, created, nil
}

func (cs *compositionService) UnlinkItem(ctx context.Context, scenarioID, itemID uint64) (err error) {
	ctx, span := startSpan(ctx, "CompositionService.UnlinkItem")
	span.SetAttributes(
		attribute.Int64("scenario.id", int64(scenarioID)),
		attribute.Int64("item.id", int64(itemID)),
	)
	defer func() { endSpan(span, err) }()

	var removed int64
	err = inTx(ctx, cs.db, func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		n, err := cs.links.Delete(dbc, scenarioID, itemID)
		if err != nil {
			return fmt.Errorf("delete link: %w", err)
		}
		removed = n
		if _, err := cs.visibility.DeleteByScenarioItem(dbc, scenarioID, itemID); err != nil {
			return fmt.Errorf("delete visibility rows: %w", err)
		}
		return nil
	})
	if err != nil {
		cs.log.Warn("UnlinkItem failed", "scenario_id", scenarioID, "item_id", itemID, "error", err)
		return db.TranslateError("UnlinkItem", err)
	}
	cs.views.drop(ctx, cache.ScenarioItemsKey(scenarioID), cache.ScenarioVisibilityKey(scenarioID, itemID))
	if removed > 0 {
		cs.activity.Record(ctx, ActivityEntry{
			Action:     "unlink_item",
			EntityType: "scenario",
			EntityID:   scenarioID,
			Metadata:   map[string]any{"item_id": itemID},
		})
		cs.notify.ScenarioItemsChanged(ctx, scenarioID, []uint64{itemID}, "unlinked")
	}
	return nil
}

// ReorderItems assigns display orders 0..n-1 to itemIDs. Links not named keep
// their relative order after them.
func (cs *compositionService) ReorderItems(ctx context.Context, scenarioID uint64, itemIDs []uint64) (out []*types.ScenarioItemView, err error) {
	ctx, span := startSpan(ctx, "CompositionService.ReorderItems")
	span.SetAttributes(
		attribute.Int64("scenario.id", int64(scenarioID)),
		attribute.Int("items.count", len(itemIDs)),
	)
	defer func() { endSpan(span, err) }()

	if len(itemIDs) == 0 {
		return nil, apierr.Validation("ReorderItems", "item_ids is required")
	}
	if len(dedupeIDs(itemIDs)) != len(itemIDs) {
		return nil, apierr.Validation("ReorderItems", "item_ids contains duplicates")
	}

	err = inTx(ctx, cs.db, func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := cs.requireScenario(dbc, "ReorderItems", scenarioID); err != nil {
			return err
		}
		current, err := cs.links.ListViewsByScenarioID(dbc, scenarioID)
		if err != nil {
			return fmt.Errorf("list links: %w", err)
		}
		linked := make(map[uint64]bool, len(current))
		for _, v := range current {
			linked[v.ItemID] = true
		}
		listed := make(map[uint64]bool, len(itemIDs))
		for _, id := range itemIDs {
			if !linked[id] {
				return apierr.Validation("ReorderItems", "item %d is not linked to scenario %d", id, scenarioID)
			}
			listed[id] = true
		}
		order := append([]uint64{}, itemIDs...)
		for _, v := range current {
			if !listed[v.ItemID] {
				order = append(order, v.ItemID)
			}
		}
		for i, id := range order {
			if _, err := cs.links.UpdateDisplayOrder(dbc, scenarioID, id, i); err != nil {
				return fmt.Errorf("update display order: %w", err)
			}
		}
		out, err = cs.links.ListViewsByScenarioID(dbc, scenarioID)
		return err
	})
	if err != nil {
		return nil, db.TranslateError("ReorderItems", err)
	}
	cs.views.drop(ctx, cache.ScenarioItemsKey(scenarioID))
	cs.activity.Record(ctx, ActivityEntry{
		Action:     "reorder_items",
		EntityType: "scenario",
		EntityID:   scenarioID,
		Metadata:   map[string]any{"item_ids": itemIDs},
	})
	cs.notify.ScenarioItemsChanged(ctx, scenarioID, itemIDs, "reordered")
	return out, nil
}

// =====================================
// Visibility
// =====================================

func (cs *compositionService) GetVisibility(ctx context.Context, scenarioID, itemID uint64) (out map[uint64]bool, err error) {
	ctx, span := startSpan(ctx, "CompositionService.GetVisibility")
	span.SetAttributes(
		attribute.Int64("scenario.id", int64(scenarioID)),
		attribute.Int64("item.id", int64(itemID)),
	)
	defer func() { endSpan(span, err) }()

	cached := map[uint64]bool{}
	key, hit := cs.views.lookup(ctx, viewVisibility, scenarioID, cache.ScenarioVisibilityKey(scenarioID, itemID), &cached)
	if hit {
		return cached, nil
	}

	dbc := dbctx.Context{Ctx: ctx}
	subs, err := cs.subitems.ListByItemID(dbc, itemID)
	if err != nil {
		return nil, db.TranslateError("GetVisibility", fmt.Errorf("list subitems: %w", err))
	}
	rows, err := cs.visibility.ListByScenarioItem(dbc, scenarioID, itemID)
	if err != nil {
		return nil, db.TranslateError("GetVisibility", fmt.Errorf("list visibility: %w", err))
	}
	out = make(map[uint64]bool, len(subs))
	for _, s := range subs {
		out[s.ID] = true
	}
	for _, r := range rows {
		if _, ok := out[r.SubitemID]; ok {
			out[r.SubitemID] = r.IsVisible
		}
	}
	cs.views.set(ctx, key, out)
	return out, nil
}

func (cs *compositionService) SetVisibility(ctx context.Context, scenarioID, itemID, subitemID uint64, isVisible bool) (row *types.SubitemVisibility, err error) {
	ctx, span := startSpan(ctx, "CompositionService.SetVisibility")
	span.SetAttributes(
		attribute.Int64("scenario.id", int64(scenarioID)),
		attribute.Int64("subitem.id", int64(subitemID)),
		attribute.Bool("visible", isVisible),
	)
	defer func() { endSpan(span, err) }()

	if err := cs.requireScenario(dbctx.Context{Ctx: ctx}, "SetVisibility", scenarioID); err != nil {
		return nil, err
	}
	row, err = cs.setVisibility(ctx, scenarioID, itemID, subitemID, isVisible)
	if err != nil {
		return nil, err
	}
	cs.views.drop(ctx, cache.ScenarioVisibilityKey(scenarioID, itemID))
	cs.activity.Record(ctx, ActivityEntry{
		Action:     "set_visibility",
		EntityType: "subitem",
		EntityID:   subitemID,
		Metadata:   map[string]any{"scenario_id": scenarioID, "item_id": itemID, "is_visible": isVisible},
	})
	cs.notify.VisibilityChanged(ctx, scenarioID, itemID, []uint64{subitemID})
	return row, nil
}

func (cs *compositionService) setVisibility(ctx context.Context, scenarioID, itemID, subitemID uint64, isVisible bool) (*types.SubitemVisibility, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sub, err := cs.subitems.GetByID(dbc, subitemID)
	if err != nil {
		return nil, db.TranslateError("SetVisibility", fmt.Errorf("load subitem: %w", err))
	}
	if sub == nil {
		return nil, apierr.ForeignKey("SetVisibility", "subitem %d does not exist", subitemID)
	}
	if sub.ItemID != itemID {
		return nil, apierr.Validation("SetVisibility", "subitem %d does not belong to item %d", subitemID, itemID)
	}
	ts := nowUTC()
	if err := cs.visibility.Upsert(dbc, &types.SubitemVisibility{
		ScenarioID: scenarioID,
		ItemID:     itemID,
		SubitemID:  subitemID,
		IsVisible:  isVisible,
		CreatedBy:  actorPtr(ctx),
		CreatedAt:  ts,
		UpdatedBy:  actorPtr(ctx),
		UpdatedAt:  ts,
	}); err != nil {
		cs.log.Warn("visibility upsert failed", "scenario_id", scenarioID, "subitem_id", subitemID, "error", err)
		return nil, db.TranslateError("SetVisibility", fmt.Errorf("upsert visibility: %w", err))
	}
	row, err := cs.visibility.Get(dbc, scenarioID, subitemID)
	if err != nil {
		return nil, db.TranslateError("SetVisibility", fmt.Errorf("reload visibility: %w", err))
	}
	return row, nil
}

// =====================================
// Batches
// =====================================

// AddItemsToScenario links every id it can and reports each one. Already
// linked ids are skipped. Failures never roll back siblings.
func (cs *compositionService) AddItemsToScenario(ctx context.Context, scenarioID uint64, itemIDs []uint64) (results []BatchResult, err error) {
	ctx, span := startSpan(ctx, "CompositionService.AddItemsToScenario")
	span.SetAttributes(
		attribute.Int64("scenario.id", int64(scenarioID)),
		attribute.Int("items.count", len(itemIDs)),
	)
	defer func() { endSpan(span, err) }()

	ids := dedupeIDs(itemIDs)
	if len(ids) == 0 {
		return nil, apierr.Validation("AddItemsToScenario", "item_ids is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := cs.requireScenario(dbc, "AddItemsToScenario", scenarioID); err != nil {
		return nil, err
	}
	already, err := cs.links.ListLinkedItemIDs(dbc, scenarioID, ids)
	if err != nil {
		return nil, db.TranslateError("AddItemsToScenario", fmt.Errorf("list linked items: %w", err))
	}
	linked := make(map[uint64]bool, len(already))
	for _, id := range already {
		linked[id] = true
	}
	base, err := cs.links.NextDisplayOrder(dbc, scenarioID)
	if err != nil {
		return nil, db.TranslateError("AddItemsToScenario", fmt.Errorf("next display order: %w", err))
	}

	results = make([]BatchResult, len(ids))
	g := new(errgroup.Group)
	g.SetLimit(cs.concurrency)
	next := base
	for i, id := range ids {
		if linked[id] {
			results[i] = BatchResult{ID: id, Success: true, Skipped: true}
			continue
		}
		order := next
		next++
		g.Go(func() error {
			_, created, err := cs.link(ctx, scenarioID, id, order)
			switch {
			case err != nil:
				results[i] = batchFailure(id, err)
			case !created:
				results[i] = BatchResult{ID: id, Success: true, Skipped: true}
			default:
				results[i] = BatchResult{ID: id, Success: true}
			}
			return nil
		})
	}
	_ = g.Wait()

	added := make([]uint64, 0, len(ids))
	for _, r := range results {
		observability.Current().IncBatchResult("add_items", outcome(r))
		if r.Success && !r.Skipped {
			added = append(added, r.ID)
		}
	}
	cs.log.Info("AddItemsToScenario", "scenario_id", scenarioID, "requested", len(ids), "added", len(added), "actor", ctxutil.Actor(ctx))
	if len(added) > 0 {
		cs.views.drop(ctx, cache.ScenarioItemsKey(scenarioID))
		cs.activity.Record(ctx, ActivityEntry{
			Action:     "add_items",
			EntityType: "scenario",
			EntityID:   scenarioID,
			Metadata:   map[string]any{"item_ids": added},
		})
		cs.notify.ScenarioItemsChanged(ctx, scenarioID, added, "linked")
	}
	return results, nil
}

// SaveSubitemVisibility applies each entry independently, in subitem id order.
func (cs *compositionService) SaveSubitemVisibility(ctx context.Context, scenarioID, itemID uint64, visibility map[uint64]bool) (results []BatchResult, err error) {
	ctx, span := startSpan(ctx, "CompositionService.SaveSubitemVisibility")
	span.SetAttributes(
		attribute.Int64("scenario.id", int64(scenarioID)),
		attribute.Int64("item.id", int64(itemID)),
		attribute.Int("subitems.count", len(visibility)),
	)
	defer func() { endSpan(span, err) }()

	if len(visibility) == 0 {
		return nil, apierr.Validation("SaveSubitemVisibility", "visibility is required")
	}
	if err := cs.requireScenario(dbctx.Context{Ctx: ctx}, "SaveSubitemVisibility", scenarioID); err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(visibility))
	for id := range visibility {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	results = make([]BatchResult, len(ids))
	g := new(errgroup.Group)
	g.SetLimit(cs.concurrency)
	for i, id := range ids {
		visible := visibility[id]
		g.Go(func() error {
			if _, err := cs.setVisibility(ctx, scenarioID, itemID, id, visible); err != nil {
				results[i] = batchFailure(id, err)
				return nil
			}
			results[i] = BatchResult{ID: id, Success: true}
			return nil
		})
	}
	_ = g.Wait()

	changed := make([]uint64, 0, len(ids))
	for _, r := range results {
		observability.Current().IncBatchResult("save_visibility", outcome(r))
		if r.Success {
			changed = append(changed, r.ID)
		}
	}
	if len(changed) > 0 {
		cs.views.drop(ctx, cache.ScenarioVisibilityKey(scenarioID, itemID))
		cs.activity.Record(ctx, ActivityEntry{
			Action:     "save_visibility",
			EntityType: "item",
			EntityID:   itemID,
			Metadata:   map[string]any{"scenario_id": scenarioID, "subitem_ids": changed},
		})
		cs.notify.VisibilityChanged(ctx, scenarioID, itemID, changed)
	}
	return results, nil
}

func (cs *compositionService) requireScenario(dbc dbctx.Context, op string, scenarioID uint64) error {
	s, err := cs.scenarios.GetByID(dbc, scenarioID)
	if err != nil {
		return db.TranslateError(op, fmt.Errorf("load scenario: %w", err))
	}
	if s == nil {
		return apierr.NotFound(op, "scenario %d not found", scenarioID)
	}
	return nil
}
