package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/playbook-backend/internal/data/repos"
	"github.com/yungbote/playbook-backend/internal/http/response"
	"github.com/yungbote/playbook-backend/internal/platform/apierr"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
	"github.com/yungbote/playbook-backend/internal/services"
)

type ActivityLogHandler struct {
	log      *logger.Logger
	activity services.ActivityLogService
}

func NewActivityLogHandler(log *logger.Logger, activity services.ActivityLogService) *ActivityLogHandler {
	return &ActivityLogHandler{
		log:      log.With("handler", "ActivityLogHandler"),
		activity: activity,
	}
}

// GET /api/activity-logs?q=&kind=&limit=
func (h *ActivityLogHandler) ListActivityLogs(c *gin.Context) {
	filter := repos.ActivityLogFilter{
		Query: strings.TrimSpace(c.Query("q")),
		Kind:  strings.TrimSpace(c.Query("kind")),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, apierr.Validation("ListActivityLogs", "invalid limit %q", raw))
			return
		}
		filter.Limit = n
	}
	rows, err := h.activity.ListActivityLogs(c.Request.Context(), filter)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"logs": rows})
}
