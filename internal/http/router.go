package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/playbook-backend/internal/http/handlers"
	httpMW "github.com/yungbote/playbook-backend/internal/http/middleware"
	"github.com/yungbote/playbook-backend/internal/observability"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
)

const streamPrefix = "/api/events"

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string
	Security       httpMW.SecurityHeadersConfig
	RequestTimeout time.Duration

	ContentHandler     *httpH.ContentHandler
	ScenarioHandler    *httpH.ScenarioHandler
	CompositionHandler *httpH.CompositionHandler
	ActivityLogHandler *httpH.ActivityLogHandler
	RealtimeHandler    *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.SecurityHeaders(cfg.Security))
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics", streamPrefix))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Timeout(cfg.RequestTimeout, streamPrefix))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Content tree
		if cfg.ContentHandler != nil {
			api.GET("/products", cfg.ContentHandler.ListProducts)
			api.POST("/products", cfg.ContentHandler.CreateProduct)
			api.GET("/products/:id", cfg.ContentHandler.GetProduct)
			api.PUT("/products/:id", cfg.ContentHandler.UpdateProduct)
			api.DELETE("/products/:id", cfg.ContentHandler.DeleteProduct)
			api.GET("/products/:id/items", cfg.ContentHandler.ListItems)
			api.POST("/products/:id/items", cfg.ContentHandler.CreateItem)
			api.DELETE("/items/:id", cfg.ContentHandler.DeleteItem)
			api.GET("/items/:id/subitems", cfg.ContentHandler.ListSubitems)
			api.POST("/items/:id/subitems", cfg.ContentHandler.CreateSubitem)
			api.PUT("/subitems/:id", cfg.ContentHandler.UpdateSubitem)
			api.DELETE("/subitems/:id", cfg.ContentHandler.DeleteSubitem)
		}

		// Scenarios
		if cfg.ScenarioHandler != nil {
			api.GET("/scenarios", cfg.ScenarioHandler.ListScenarios)
			api.POST("/scenarios", cfg.ScenarioHandler.CreateScenario)
			api.GET("/scenarios/:id", cfg.ScenarioHandler.GetScenario)
			api.PUT("/scenarios/:id", cfg.ScenarioHandler.UpdateScenario)
			api.DELETE("/scenarios/:id", cfg.ScenarioHandler.DeleteScenario)
		}

		// Composition
		if cfg.CompositionHandler != nil {
			api.GET("/scenarios/:id/items", cfg.CompositionHandler.ListScenarioItems)
			api.POST("/scenarios/:id/items", cfg.CompositionHandler.AddItems)
			api.PUT("/scenarios/:id/items/order", cfg.CompositionHandler.ReorderItems)
			api.POST("/scenarios/:id/items/:itemId", cfg.CompositionHandler.LinkItem)
			api.DELETE("/scenarios/:id/items/:itemId", cfg.CompositionHandler.UnlinkItem)
			api.GET("/scenarios/:id/items/:itemId/subitems/visibility", cfg.CompositionHandler.GetVisibility)
			api.PUT("/scenarios/:id/items/:itemId/subitems/visibility", cfg.CompositionHandler.SaveVisibility)
			api.PUT("/scenarios/:id/items/:itemId/subitems/:subitemId/visibility", cfg.CompositionHandler.SetVisibility)
		}

		// Activity log
		if cfg.ActivityLogHandler != nil {
			api.GET("/activity-logs", cfg.ActivityLogHandler.ListActivityLogs)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/events/stream", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
