package scenario

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type ScenarioItemRepo interface {
	// LinkIfAbsent inserts the link unless the pair already exists and returns
	// the stored row. created is false when the pair was already linked.
	LinkIfAbsent(dbc dbctx.Context, link *types.ScenarioItem) (*types.ScenarioItem, bool, error)
	Get(dbc dbctx.Context, scenarioID, itemID uint64) (*types.ScenarioItem, error)
	NextDisplayOrder(dbc dbctx.Context, scenarioID uint64) (int, error)
	ListViewsByScenarioID(dbc dbctx.Context, scenarioID uint64) ([]*types.ScenarioItemView, error)
	ListLinkedItemIDs(dbc dbctx.Context, scenarioID uint64, itemIDs []uint64) ([]uint64, error)
	ListScenarioIDsByItemIDs(dbc dbctx.Context, itemIDs []uint64) ([]uint64, error)
	UpdateDisplayOrder(dbc dbctx.Context, scenarioID, itemID uint64, order int) (int64, error)
	Delete(dbc dbctx.Context, scenarioID, itemID uint64) (int64, error)
	DeleteByScenarioIDs(dbc dbctx.Context, scenarioIDs []uint64) error
	DeleteByItemIDs(dbc dbctx.Context, itemIDs []uint64) error
}

type scenarioItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScenarioItemRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioItemRepo {
	return &scenarioItemRepo{db: db, log: baseLog.With("repo", "ScenarioItemRepo")}
}

func (r *scenarioItemRepo) LinkIfAbsent(dbc dbctx.Context, link *types.ScenarioItem) (*types.ScenarioItem, bool, error) {
	if link == nil || link.ScenarioID == 0 || link.ItemID == 0 {
		return nil, false, nil
	}
	transaction := dbc.Resolve(r.db)
	res := transaction.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scenario_id"}, {Name: "item_id"}},
			DoNothing: true,
		}).
		Create(link)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected > 0
	row, err := r.Get(dbc, link.ScenarioID, link.ItemID)
	if err != nil {
		return nil, false, err
	}
	return row, created, nil
}

func (r *scenarioItemRepo) Get(dbc dbctx.Context, scenarioID, itemID uint64) (*types.ScenarioItem, error) {
	var row types.ScenarioItem
	if err := dbc.Resolve(r.db).
		Where("scenario_id = ? AND item_id = ?", scenarioID, itemID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

// NextDisplayOrder returns one past the highest display order in the scenario,
// or 0 for an empty scenario.
func (r *scenarioItemRepo) NextDisplayOrder(dbc dbctx.Context, scenarioID uint64) (int, error) {
	var next int
	if err := dbc.Resolve(r.db).
		Model(&types.ScenarioItem{}).
		Select("COALESCE(MAX(display_order) + 1, 0)").
		Where("scenario_id = ?", scenarioID).
		Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// ListViewsByScenarioID joins links with their items. Links whose item row is
// gone are not returned.
func (r *scenarioItemRepo) ListViewsByScenarioID(dbc dbctx.Context, scenarioID uint64) ([]*types.ScenarioItemView, error) {
	out := []*types.ScenarioItemView{}
	if scenarioID == 0 {
		return out, nil
	}
	if err := dbc.Resolve(r.db).
		Table("scenario_item AS si").
		Select("si.scenario_id, si.item_id, si.display_order, si.created_by, si.created_at, i.title AS item_title, i.product_id").
		Joins("JOIN item AS i ON i.id = si.item_id").
		Where("si.scenario_id = ?", scenarioID).
		Order("si.display_order ASC, si.created_at ASC, si.id ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scenarioItemRepo) ListLinkedItemIDs(dbc dbctx.Context, scenarioID uint64, itemIDs []uint64) ([]uint64, error) {
	ids := []uint64{}
	if scenarioID == 0 || len(itemIDs) == 0 {
		return ids, nil
	}
	if err := dbc.Resolve(r.db).
		Model(&types.ScenarioItem{}).
		Where("scenario_id = ? AND item_id IN ?", scenarioID, itemIDs).
		Pluck("item_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *scenarioItemRepo) ListScenarioIDsByItemIDs(dbc dbctx.Context, itemIDs []uint64) ([]uint64, error) {
	ids := []uint64{}
	if len(itemIDs) == 0 {
		return ids, nil
	}
	if err := dbc.Resolve(r.db).
		Model(&types.ScenarioItem{}).
		Distinct("scenario_id").
		Where("item_id IN ?", itemIDs).
		Pluck("scenario_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *scenarioItemRepo) UpdateDisplayOrder(dbc dbctx.Context, scenarioID, itemID uint64, order int) (int64, error) {
	res := dbc.Resolve(r.db).
		Model(&types.ScenarioItem{}).
		Where("scenario_id = ? AND item_id = ?", scenarioID, itemID).
		Update("display_order", order)
	return res.RowsAffected, res.Error
}

func (r *scenarioItemRepo) Delete(dbc dbctx.Context, scenarioID, itemID uint64) (int64, error) {
	res := dbc.Resolve(r.db).
		Where("scenario_id = ? AND item_id = ?", scenarioID, itemID).
		Delete(&types.ScenarioItem{})
	return res.RowsAffected, res.Error
}

func (r *scenarioItemRepo) DeleteByScenarioIDs(dbc dbctx.Context, scenarioIDs []uint64) error {
	if len(scenarioIDs) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("scenario_id IN ?", scenarioIDs).
		Delete(&types.ScenarioItem{}).Error
}

func (r *scenarioItemRepo) DeleteByItemIDs(dbc dbctx.Context, itemIDs []uint64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("item_id IN ?", itemIDs).
		Delete(&types.ScenarioItem{}).Error
}
