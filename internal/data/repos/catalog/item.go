package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type ItemRepo interface {
	Create(dbc dbctx.Context, items []*types.Item) ([]*types.Item, error)
	GetByID(dbc dbctx.Context, id uint64) (*types.Item, error)
	GetByIDs(dbc dbctx.Context, ids []uint64) ([]*types.Item, error)
	ListByProductID(dbc dbctx.Context, productID uint64) ([]*types.Item, error)
	ListIDsByProductIDs(dbc dbctx.Context, productIDs []uint64) ([]uint64, error)
	DeleteByIDs(dbc dbctx.Context, ids []uint64) error
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return &itemRepo{db: db, log: baseLog.With("repo", "ItemRepo")}
}

func (r *itemRepo) Create(dbc dbctx.Context, items []*types.Item) ([]*types.Item, error) {
	if len(items) == 0 {
		return []*types.Item{}, nil
	}
	if err := dbc.Resolve(r.db).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) GetByID(dbc dbctx.Context, id uint64) (*types.Item, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Item
	if err := dbc.Resolve(r.db).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *itemRepo) GetByIDs(dbc dbctx.Context, ids []uint64) ([]*types.Item, error) {
	out := []*types.Item{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Resolve(r.db).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByProductID returns an empty slice for unknown products.
func (r *itemRepo) ListByProductID(dbc dbctx.Context, productID uint64) ([]*types.Item, error) {
	out := []*types.Item{}
	if productID == 0 {
		return out, nil
	}
	if err := dbc.Resolve(r.db).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemRepo) ListIDsByProductIDs(dbc dbctx.Context, productIDs []uint64) ([]uint64, error) {
	ids := []uint64{}
	if len(productIDs) == 0 {
		return ids, nil
	}
	if err := dbc.Resolve(r.db).
		Model(&types.Item{}).
		Where("product_id IN ?", productIDs).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *itemRepo) DeleteByIDs(dbc dbctx.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("id IN ?", ids).
		Delete(&types.Item{}).Error
}
