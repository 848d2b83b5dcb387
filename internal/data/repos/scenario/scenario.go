package scenario

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/playbook-backend/internal/domain"
	"github.com/yungbote/playbook-backend/internal/platform/dbctx"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type ScenarioRepo interface {
	Create(dbc dbctx.Context, scenarios []*types.Scenario) ([]*types.Scenario, error)
	GetByID(dbc dbctx.Context, id uint64) (*types.Scenario, error)
	// LockByID is GetByID with a row lock held until dbc.Tx ends.
	LockByID(dbc dbctx.Context, id uint64) (*types.Scenario, error)
	ListRecent(dbc dbctx.Context) ([]*types.Scenario, error)
	UpdateFields(dbc dbctx.Context, id uint64, updates map[string]interface{}) (int64, error)
	DeleteByIDs(dbc dbctx.Context, ids []uint64) error
}

type scenarioRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScenarioRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioRepo {
	return &scenarioRepo{db: db, log: baseLog.With("repo", "ScenarioRepo")}
}

func (r *scenarioRepo) Create(dbc dbctx.Context, scenarios []*types.Scenario) ([]*types.Scenario, error) {
	if len(scenarios) == 0 {
		return []*types.Scenario{}, nil
	}
	if err := dbc.Resolve(r.db).Create(&scenarios).Error; err != nil {
		return nil, err
	}
	return scenarios, nil
}

// GetByID returns nil without error when the scenario does not exist.
func (r *scenarioRepo) GetByID(dbc dbctx.Context, id uint64) (*types.Scenario, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Scenario
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

func (r *scenarioRepo) LockByID(dbc dbctx.Context, id uint64) (*types.Scenario, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Scenario
	if err := dbc.Resolve(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
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

func (r *scenarioRepo) ListRecent(dbc dbctx.Context) ([]*types.Scenario, error) {
	out := []*types.Scenario{}
	if err := dbc.Resolve(r.db).
		Order("updated_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scenarioRepo) UpdateFields(dbc dbctx.Context, id uint64, updates map[string]interface{}) (int64, error) {
	if id == 0 || len(updates) == 0 {
		return 0, nil
	}
	res := dbc.Resolve(r.db).
		Model(&types.Scenario{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *scenarioRepo) DeleteByIDs(dbc dbctx.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("id IN ?", ids).
		Delete(&types.Scenario{}).Error
}
