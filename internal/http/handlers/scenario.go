package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/playbook-backend/internal/http/response"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
	"github.com/yungbote/playbook-backend/internal/services"
)

type ScenarioHandler struct {
	log       *logger.Logger
	scenarios services.ScenarioService
}

func NewScenarioHandler(log *logger.Logger, scenarios services.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{
		log:       log.With("handler", "ScenarioHandler"),
		scenarios: scenarios,
	}
}

// GET /api/scenarios
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	rows, err := h.scenarios.ListScenarios(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"scenarios": rows})
}

// GET /api/scenarios/:id
func (h *ScenarioHandler) GetScenario(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	s, err := h.scenarios.GetScenario(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"scenario": s})
}

// POST /api/scenarios
func (h *ScenarioHandler) CreateScenario(c *gin.Context) {
	var req services.ScenarioInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	s, err := h.scenarios.CreateScenario(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"scenario": s})
}

// PUT /api/scenarios/:id
func (h *ScenarioHandler) UpdateScenario(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req services.ScenarioInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	s, err := h.scenarios.UpdateScenario(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"scenario": s})
}

// DELETE /api/scenarios/:id
func (h *ScenarioHandler) DeleteScenario(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.scenarios.DeleteScenario(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondNoContent(c)
}
