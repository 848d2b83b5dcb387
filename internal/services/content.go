package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/data/cache"
	"github.com/yungbote/playbook-backend/internal/data/db"
	"github.com/yungbote/playbook-backend/internal/data/repos"
	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/apierr"
	"github.com/yungbote/playbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type ProductInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type SubitemInput struct {
	Title       string  `json:"title"`
	Subtitle    *string `json:"subtitle"`
	Description string  `json:"description"`
	FilePath    *string `json:"file_path"`
}

type ContentService interface {
	ListProducts(ctx context.Context) ([]*types.Product, error)
	GetProduct(ctx context.Context, id uint64) (*types.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*types.Product, error)
	UpdateProduct(ctx context.Context, id uint64, in ProductInput) (*types.Product, error)
	// DeleteProduct removes the product with its items and subitems and every
	// link and visibility row that referenced them.
	DeleteProduct(ctx context.Context, id uint64) error

	ListItems(ctx context.Context, productID uint64) ([]*types.Item, error)
	CreateItem(ctx context.Context, productID uint64, title string) (*types.Item, error)
	DeleteItem(ctx context.Context, id uint64) error

	ListSubitems(ctx context.Context, itemID uint64) ([]*types.Subitem, error)
	CreateSubitem(ctx context.Context, itemID uint64, in SubitemInput) (*types.Subitem, error)
	// UpdateSubitem replaces every editable field; omitted optional fields
	// are cleared.
	UpdateSubitem(ctx context.Context, id uint64, in SubitemInput) (*types.Subitem, error)
	DeleteSubitem(ctx context.Context, id uint64) error
}

type contentService struct {
	db         *gorm.DB
	log        *logger.Logger
	products   repos.ProductRepo
	items      repos.ItemRepo
	subitems   repos.SubitemRepo
	links      repos.ScenarioItemRepo
	visibility repos.SubitemVisibilityRepo
	views      *viewCache
	activity   ActivityLogService
	notify     CompositionNotifier
}

func NewContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	products repos.ProductRepo,
	items repos.ItemRepo,
	subitems repos.SubitemRepo,
	links repos.ScenarioItemRepo,
	visibility repos.SubitemVisibilityRepo,
	views cache.ViewCache,
	activity ActivityLogService,
	notify CompositionNotifier,
) ContentService {
	serviceLog := baseLog.With("service", "ContentService")
	return &contentService{
		db:         db,
		log:        serviceLog,
		products:   products,
		items:      items,
		subitems:   subitems,
		links:      links,
		visibility: visibility,
		views:      newViewCache(views, 0, serviceLog),
		activity:   activity,
		notify:     notify,
	}
}

// =====================================
// Products
// =====================================

func (cs *contentService) ListProducts(ctx context.Context) ([]*types.Product, error) {
	rows, err := cs.products.ListRecent(dbctx.Context{Ctx: ctx})
	if err != nil {
		cs.log.Error("ListProducts failed", "error", err)
		return nil, db.TranslateError("ListProducts", fmt.Errorf("list products: %w", err))
	}
	return rows, nil
}

func (cs *contentService) GetProduct(ctx context.Context, id uint64) (*types.Product, error) {
	p, err := cs.products.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, db.TranslateError("GetProduct", fmt.Errorf("get product: %w", err))
	}
	if p == nil {
		return nil, apierr.NotFound("GetProduct", "product %d not found", id)
	}
	return p, nil
}

func (cs *contentService) CreateProduct(ctx context.Context, in ProductInput) (*types.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("CreateProduct", "title is required")
	}
	ts := nowUTC()
	p := &types.Product{
		Title:       title,
		Description: in.Description,
		CreatedBy:   actorPtr(ctx),
		CreatedAt:   ts,
		UpdatedBy:   actorPtr(ctx),
		UpdatedAt:   ts,
	}
	if _, err := cs.products.Create(dbctx.Context{Ctx: ctx}, []*types.Product{p}); err != nil {
		cs.log.Error("CreateProduct failed", "error", err)
		return nil, db.TranslateError("CreateProduct", fmt.Errorf("create product: %w", err))
	}
	cs.log.Info("CreateProduct", "product_id", p.ID, "actor", ctxutil.Actor(ctx))
	cs.activity.Record(ctx, ActivityEntry{Action: "create_product", EntityType: "product", EntityID: p.ID})
	cs.notify.CatalogChanged(ctx, "product", p.ID, "created")
	return p, nil
}

func (cs *contentService) UpdateProduct(ctx context.Context, id uint64, in ProductInput) (*types.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("UpdateProduct", "title is required")
	}
	var out *types.Product
	err := inTx(ctx, cs.db, func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := cs.products.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}
		if existing == nil {
			return apierr.NotFound("UpdateProduct", "product %d not found", id)
		}
		if _, err := cs.products.UpdateFields(dbc, id, map[string]interface{}{
			"title":       title,
			"description": in.Description,
			"updated_by":  ctxutil.Actor(ctx),
			"updated_at":  nowUTC(),
		}); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		out, err = cs.products.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, db.TranslateError("UpdateProduct", err)
	}
	cs.activity.Record(ctx, ActivityEntry{Action: "update_product", EntityType: "product", EntityID: id})
	cs.notify.CatalogChanged(ctx, "product", id, "updated")
	return out, nil
}

func (cs *contentService) DeleteProduct(ctx context.Context, id uint64) error {
	var itemIDs []uint64
	err := inTx(ctx, cs.db, func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		p, err := cs.products.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}
		if p == nil {
			return apierr.NotFound("DeleteProduct", "product %d not found", id)
		}
		itemIDs, err = cs.items.ListIDsByProductIDs(dbc, []uint64{id})
		if err != nil {
			return fmt.Errorf("list product items: %w", err)
		}
		if err := cs.deleteItemTree(dbc, itemIDs); err != nil {
			return err
		}
		if err := cs.products.DeleteByIDs(dbc, []uint64{id}); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return nil
	})
	if err != nil {
		cs.log.Warn("DeleteProduct failed", "product_id", id, "error", err)
		return db.TranslateError("DeleteProduct", err)
	}
	cs.log.Info("DeleteProduct", "product_id", id, "items", len(itemIDs))
	if len(itemIDs) > 0 {
		cs.views.dropAll(ctx)
	}
	cs.activity.Record(ctx, ActivityEntry{
		Action:     "delete_product",
		EntityType: "product",
		EntityID:   id,
		Metadata:   map[string]any{"item_ids": itemIDs},
	})
	cs.notify.CatalogChanged(ctx, "product", id, "deleted")
	return nil
}

// deleteItemTree removes items and everything hanging off them, leaf first.
func (cs *contentService) deleteItemTree(dbc dbctx.Context, itemIDs []uint64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	if err := cs.visibility.DeleteByItemIDs(dbc, itemIDs); err != nil {
		return fmt.Errorf("delete visibility rows: %w", err)
	}
	if err := cs.links.DeleteByItemIDs(dbc, itemIDs); err != nil {
		return fmt.Errorf("delete scenario links: %w", err)
	}
	if err := cs.subitems.DeleteByItemIDs(dbc, itemIDs); err != nil {
		return fmt.Errorf("delete subitems: %w", err)
	}
	if err := cs.items.DeleteByIDs(dbc, itemIDs); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	return nil
}

// =====================================
// Items
// =====================================

func (cs *contentService) ListItems(ctx context.Context, productID uint64) ([]*types.Item, error) {
	rows, err := cs.items.ListByProductID(dbctx.Context{Ctx: ctx}, productID)
	if err != nil {
		cs.log.Error("ListItems failed", "product_id", productID, "error", err)
		return nil, db.TranslateError("ListItems", fmt.Errorf("list items: %w", err))
	}
	return rows, nil
}

func (cs *contentService) CreateItem(ctx context.Context, productID uint64, title string) (*types.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierr.Validation("CreateItem", "title is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	p, err := cs.products.GetByID(dbc, productID)
	if err != nil {
		return nil, db.TranslateError("CreateItem", fmt.Errorf("load product: %w", err))
	}
	if p == nil {
		return nil, apierr.ForeignKey("CreateItem", "product %d does not exist", productID)
	}
	ts := nowUTC()
	it := &types.Item{
		ProductID: productID,
		Title:     title,
		CreatedBy: actorPtr(ctx),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if _, err := cs.items.Create(dbc, []*types.Item{it}); err != nil {
		cs.log.Error("CreateItem failed", "product_id", productID, "error", err)
		return nil, db.TranslateError("CreateItem", fmt.Errorf("create item: %w", err))
	}
	cs.activity.Record(ctx, ActivityEntry{
		Action:     "create_item",
		EntityType: "item",
		EntityID:   it.ID,
		Metadata:   map[string]any{"product_id": productID},
	})
	cs.notify.CatalogChanged(ctx, "item", it.ID, "created")
	return it, nil
}

func (cs *contentService) DeleteItem(ctx context.Context, id uint64) error {
	err := inTx(ctx, cs.db, func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		it, err := cs.items.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}
		if it == nil {
			return apierr.NotFound("DeleteItem", "item %d not found", id)
		}
		return cs.deleteItemTree(dbc, []uint64{id})
	})
	if err != nil {
		cs.log.Warn("DeleteItem failed", "item_id", id, "error", err)
		return db.TranslateError("DeleteItem", err)
	}
	cs.views.dropAll(ctx)
	cs.activity.Record(ctx, ActivityEntry{Action: "delete_item", EntityType: "item", EntityID: id})
	cs.notify.CatalogChanged(ctx, "item", id, "deleted")
	return nil
}

// =====================================
// Subitems
// =====================================

func (cs *contentService) ListSubitems(ctx context.Context, itemID uint64) ([]*types.Subitem, error) {
	rows, err := cs.subitems.ListByItemID(dbctx.Context{Ctx: ctx}, itemID)
	if err != nil {
		cs.log.Error("ListSubitems failed", "item_id", itemID, "error", err)
		return nil, db.TranslateError("ListSubitems", fmt.Errorf("list subitems: %w", err))
	}
	return rows, nil
}

func (cs *contentService) CreateSubitem(ctx context.Context, itemID uint64, in SubitemInput) (*types.Subitem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("CreateSubitem", "title is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	it, err := cs.items.GetByID(dbc, itemID)
	if err != nil {
		return nil, db.TranslateError("CreateSubitem", fmt.Errorf("load item: %w", err))
	}
	if it == nil {
		return nil, apierr.ForeignKey("CreateSubitem", "item %d does not exist", itemID)
	}
	ts := nowUTC()
	s := &types.Subitem{
		ItemID:        itemID,
		Title:         title,
		Subtitle:      trimPtr(in.Subtitle),
		Description:   in.Description,
		FilePath:      trimPtr(in.FilePath),
		LastUpdatedBy: actorPtr(ctx),
		LastUpdatedAt: &ts,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if _, err := cs.subitems.Create(dbc, []*types.Subitem{s}); err != nil {
		cs.log.Error("CreateSubitem failed", "item_id", itemID, "error", err)
		return nil, db.TranslateError("CreateSubitem", fmt.Errorf("create subitem: %w", err))
	}
	// visibility maps enumerate an item's subitems
	cs.views.dropAll(ctx)
	cs.activity.Record(ctx, ActivityEntry{
		Action:     "create_subitem",
		EntityType: "subitem",
		EntityID:   s.ID,
		Metadata:   map[string]any{"item_id": itemID},
	})
	cs.notify.CatalogChanged(ctx, "subitem", s.ID, "created")
	return s, nil
}

func (cs *contentService) UpdateSubitem(ctx context.Context, id uint64, in SubitemInput) (*types.Subitem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("UpdateSubitem", "title is required")
	}
	var out *types.Subitem
	err := inTx(ctx, cs.db, func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := cs.subitems.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load subitem: %w", err)
		}
		if existing == nil {
			return apierr.NotFound("UpdateSubitem", "subitem %d not found", id)
		}
		ts := nowUTC()
		if _, err := cs.subitems.UpdateFields(dbc, id, map[string]interface{}{
			"title":           title,
			"subtitle":        nullable(trimPtr(in.Subtitle)),
			"description":     in.Description,
			"file_path":       nullable(trimPtr(in.FilePath)),
			"last_updated_by": ctxutil.Actor(ctx),
			"last_updated_at": ts,
			"updated_at":      ts,
		}); err != nil {
			return fmt.Errorf("update subitem: %w", err)
		}
		out, err = cs.subitems.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, db.TranslateError("UpdateSubitem", err)
	}
	cs.activity.Record(ctx, ActivityEntry{Action: "update_subitem", EntityType: "subitem", EntityID: id})
	cs.notify.CatalogChanged(ctx, "subitem", id, "updated")
	return out, nil
}

func (cs *contentService) DeleteSubitem(ctx context.Context, id uint64) error {
	err := inTx(ctx, cs.db, func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		s, err := cs.subitems.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load subitem: %w", err)
		}
		if s == nil {
			return apierr.NotFound("DeleteSubitem", "subitem %d not found", id)
		}
		if err := cs.visibility.DeleteBySubitemIDs(dbc, []uint64{id}); err != nil {
			return fmt.Errorf("delete visibility rows: %w", err)
		}
		if err := cs.subitems.DeleteByIDs(dbc, []uint64{id}); err != nil {
			return fmt.Errorf("delete subitem: %w", err)
		}
		return nil
	})
	if err != nil {
		return db.TranslateError("DeleteSubitem", err)
	}
	cs.views.dropAll(ctx)
	cs.activity.Record(ctx, ActivityEntry{Action: "delete_subitem", EntityType: "subitem", EntityID: id})
	cs.notify.CatalogChanged(ctx, "subitem", id, "deleted")
	return nil
}
