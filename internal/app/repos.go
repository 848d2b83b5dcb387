package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/data/repos"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

type Repos struct {
	Product           repos.ProductRepo
	Item              repos.ItemRepo
	Subitem           repos.SubitemRepo
	Scenario          repos.ScenarioRepo
	ScenarioItem      repos.ScenarioItemRepo
	SubitemVisibility repos.SubitemVisibilityRepo
	ActivityLog       repos.ActivityLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Product:           repos.NewProductRepo(db, log),
		Item:              repos.NewItemRepo(db, log),
		Subitem:           repos.NewSubitemRepo(db, log),
		Scenario:          repos.NewScenarioRepo(db, log),
		ScenarioItem:      repos.NewScenarioItemRepo(db, log),
		SubitemVisibility: repos.NewSubitemVisibilityRepo(db, log),
		ActivityLog:       repos.NewActivityLogRepo(db, log),
	}
}
