package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/data/repos/audit"
	"github.com/yungbote/playbook-backend/internal/data/repos/catalog"
	"github.com/yungbote/playbook-backend/internal/data/repos/scenario"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type ProductRepo = catalog.ProductRepo
type ItemRepo = catalog.ItemRepo
type SubitemRepo = catalog.SubitemRepo

type ScenarioRepo = scenario.ScenarioRepo
type ScenarioItemRepo = scenario.ScenarioItemRepo
type SubitemVisibilityRepo = scenario.SubitemVisibilityRepo

type ActivityLogRepo = audit.ActivityLogRepo
type ActivityLogFilter = audit.ActivityLogFilter

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}
func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return catalog.NewItemRepo(db, baseLog)
}
func NewSubitemRepo(db *gorm.DB, baseLog *logger.Logger) SubitemRepo {
	return catalog.NewSubitemRepo(db, baseLog)
}

func NewScenarioRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioRepo {
	return scenario.NewScenarioRepo(db, baseLog)
}
func NewScenarioItemRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioItemRepo {
	return scenario.NewScenarioItemRepo(db, baseLog)
}
func NewSubitemVisibilityRepo(db *gorm.DB, baseLog *logger.Logger) SubitemVisibilityRepo {
	return scenario.NewSubitemVisibilityRepo(db, baseLog)
}

func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return audit.NewActivityLogRepo(db, baseLog)
}
