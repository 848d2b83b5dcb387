package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/data/db"
	"github.com/yungbote/playbook-backend/internal/http"
	httpH "github.com/yungbote/playbook-backend/internal/http/handlers"
	"github.com/yungbote/playbook-backend/internal/observability"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
	"github.com/yungbote/playbook-backend/internal/realtime"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Content     *httpH.ContentHandler
	Scenario    *httpH.ScenarioHandler
	Composition *httpH.CompositionHandler
	ActivityLog *httpH.ActivityLogHandler
	Realtime    *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, gdb *gorm.DB, svc Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(func(ctx context.Context) error { return db.Ping(ctx, gdb) }),
		Content:     httpH.NewContentHandler(log, svc.Content),
		Scenario:    httpH.NewScenarioHandler(log, svc.Scenario),
		Composition: httpH.NewCompositionHandler(log, svc.Composition),
		ActivityLog: httpH.NewActivityLogHandler(log, svc.Activity),
		Realtime:    httpH.NewRealtimeHandler(log, hub),
	}
}

func wireServer(log *logger.Logger, cfg Config, h Handlers, metrics *observability.Metrics) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(
		http.ServerConfig{
			Addr:              cfg.Addr(),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			ShutdownTimeout:   cfg.ShutdownTimeout,
		},
		http.RouterConfig{
			Log:                log,
			Metrics:            metrics,
			ServiceName:        serviceName,
			AllowedOrigins:     cfg.AllowedOrigins,
			Security:           cfg.Security,
			RequestTimeout:     cfg.RequestTimeout,
			HealthHandler:      h.Health,
			ContentHandler:     h.Content,
			ScenarioHandler:    h.Scenario,
			CompositionHandler: h.Composition,
			ActivityLogHandler: h.ActivityLog,
			RealtimeHandler:    h.Realtime,
		},
	)
}
