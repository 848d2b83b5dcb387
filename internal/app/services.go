package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/platform/logger"
	"github.com/yungbote/playbook-backend/internal/realtime"
	"github.com/yungbote/playbook-backend/internal/services"
)

type Services struct {
	Activity    services.ActivityLogService
	Content     services.ContentService
	Scenario    services.ScenarioService
	Composition services.CompositionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, clients Clients, hub *realtime.SSEHub) Services {
	log.Info("Wiring services...")

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.Bus != nil {
		emitter = &services.RedisEmitter{Bus: clients.Bus, Hub: hub, Log: log}
	}
	notify := services.NewCompositionNotifier(emitter)
	activity := services.NewActivityLogService(db, log, r.ActivityLog)

	return Services{
		Activity: activity,
		Content: services.NewContentService(
			db, log,
			r.Product, r.Item, r.Subitem, r.ScenarioItem, r.SubitemVisibility,
			clients.Views, activity, notify,
		),
		Scenario: services.NewScenarioService(
			db, log,
			r.Scenario, r.ScenarioItem, r.SubitemVisibility,
			clients.Views, activity, notify,
		),
		Composition: services.NewCompositionService(
			db, log,
			r.Scenario, r.Item, r.Subitem, r.ScenarioItem, r.SubitemVisibility,
			clients.Views, cfg.Composition, activity, notify,
		),
	}
}
