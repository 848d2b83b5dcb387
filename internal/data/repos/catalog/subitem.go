package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type SubitemRepo interface {
	Create(dbc dbctx.Context, subitems []*types.Subitem) ([]*types.Subitem, error)
	GetByID(dbc dbctx.Context, id uint64) (*types.Subitem, error)
	ListByItemID(dbc dbctx.Context, itemID uint64) ([]*types.Subitem, error)
	ListIDsByItemIDs(dbc dbctx.Context, itemIDs []uint64) ([]uint64, error)
	UpdateFields(dbc dbctx.Context, id uint64, updates map[string]interface{}) (int64, error)
	DeleteByIDs(dbc dbctx.Context, ids []uint64) error
	DeleteByItemIDs(dbc dbctx.Context, itemIDs []uint64) error
}

type subitemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubitemRepo(db *gorm.DB, baseLog *logger.Logger) SubitemRepo {
	return &subitemRepo{db: db, log: baseLog.With("repo", "SubitemRepo")}
}

func (r *subitemRepo) Create(dbc dbctx.Context, subitems []*types.Subitem) ([]*types.Subitem, error) {
	if len(subitems) == 0 {
		return []*types.Subitem{}, nil
	}
	if err := dbc.Resolve(r.db).Create(&subitems).Error; err != nil {
		return nil, err
	}
	return subitems, nil
}

func (r *subitemRepo) GetByID(dbc dbctx.Context, id uint64) (*types.Subitem, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Subitem
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

func (r *subitemRepo) ListByItemID(dbc dbctx.Context, itemID uint64) ([]*types.Subitem, error) {
	out := []*types.Subitem{}
	if itemID == 0 {
		return out, nil
	}
	if err := dbc.Resolve(r.db).
		Where("item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subitemRepo) ListIDsByItemIDs(dbc dbctx.Context, itemIDs []uint64) ([]uint64, error) {
	ids := []uint64{}
	if len(itemIDs) == 0 {
		return ids, nil
	}
	if err := dbc.Resolve(r.db).
		Model(&types.Subitem{}).
		Where("item_id IN ?", itemIDs).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *subitemRepo) UpdateFields(dbc dbctx.Context, id uint64, updates map[string]interface{}) (int64, error) {
	if id == 0 || len(updates) == 0 {
		return 0, nil
	}
	res := dbc.Resolve(r.db).
		Model(&types.Subitem{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *subitemRepo) DeleteByIDs(dbc dbctx.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("id IN ?", ids).
		Delete(&types.Subitem{}).Error
}

func (r *subitemRepo) DeleteByItemIDs(dbc dbctx.Context, itemIDs []uint64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("item_id IN ?", itemIDs).
		Delete(&types.Subitem{}).Error
}
