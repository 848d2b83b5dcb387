package scenario

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type SubitemVisibilityRepo interface {
	Upsert(dbc dbctx.Context, row *types.SubitemVisibility) error
	Get(dbc dbctx.Context, scenarioID, subitemID uint64) (*types.SubitemVisibility, error)
	ListByScenarioItem(dbc dbctx.Context, scenarioID, itemID uint64) ([]*types.SubitemVisibility, error)
	DeleteByScenarioItem(dbc dbctx.Context, scenarioID, itemID uint64) (int64, error)
	DeleteByScenarioIDs(dbc dbctx.Context, scenarioIDs []uint64) error
	DeleteByItemIDs(dbc dbctx.Context, itemIDs []uint64) error
	DeleteBySubitemIDs(dbc dbctx.Context, subitemIDs []uint64) error
}

type subitemVisibilityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubitemVisibilityRepo(db *gorm.DB, baseLog *logger.Logger) SubitemVisibilityRepo {
	return &subitemVisibilityRepo{db: db, log: baseLog.With("repo", "SubitemVisibilityRepo")}
}

// Upsert writes the flag for (scenario, subitem). An existing row keeps its
// created_* columns.
func (r *subitemVisibilityRepo) Upsert(dbc dbctx.Context, row *types.SubitemVisibility) error {
	if row == nil || row.ScenarioID == 0 || row.SubitemID == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scenario_id"}, {Name: "subitem_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"item_id", "is_visible", "updated_by", "updated_at"}),
		}).
		Create(row).Error
}

func (r *subitemVisibilityRepo) Get(dbc dbctx.Context, scenarioID, subitemID uint64) (*types.SubitemVisibility, error) {
	var row types.SubitemVisibility
	if err := dbc.Resolve(r.db).
		Where("scenario_id = ? AND subitem_id = ?", scenarioID, subitemID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *subitemVisibilityRepo) ListByScenarioItem(dbc dbctx.Context, scenarioID, itemID uint64) ([]*types.SubitemVisibility, error) {
	out := []*types.SubitemVisibility{}
	if scenarioID == 0 || itemID == 0 {
		return out, nil
	}
	if err := dbc.Resolve(r.db).
		Where("scenario_id = ? AND item_id = ?", scenarioID, itemID).
		Order("subitem_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subitemVisibilityRepo) DeleteByScenarioItem(dbc dbctx.Context, scenarioID, itemID uint64) (int64, error) {
	res := dbc.Resolve(r.db).
		Where("scenario_id = ? AND item_id = ?", scenarioID, itemID).
		Delete(&types.SubitemVisibility{})
	return res.RowsAffected, res.Error
}

func (r *subitemVisibilityRepo) DeleteByScenarioIDs(dbc dbctx.Context, scenarioIDs []uint64) error {
	if len(scenarioIDs) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("scenario_id IN ?", scenarioIDs).
		Delete(&types.SubitemVisibility{}).Error
}

func (r *subitemVisibilityRepo) DeleteByItemIDs(dbc dbctx.Context, itemIDs []uint64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("item_id IN ?", itemIDs).
		Delete(&types.SubitemVisibility{}).Error
}

func (r *subitemVisibilityRepo) DeleteBySubitemIDs(dbc dbctx.Context, subitemIDs []uint64) error {
	if len(subitemIDs) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("subitem_id IN ?", subitemIDs).
		Delete(&types.SubitemVisibility{}).Error
}
