package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/playbook-backend/internal/http/response"
	"github.com/yungbote/playbook-backend/internal/platform/apierr"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
	"github.com/yungbote/playbook-backend/internal/services"
)

type CompositionHandler struct {
	log         *logger.Logger
	composition services.CompositionService
}

func NewCompositionHandler(log *logger.Logger, composition services.CompositionService) *CompositionHandler {
	return &CompositionHandler{
		log:         log.With("handler", "CompositionHandler"),
		composition: composition,
	}
}

type itemIDsRequest struct {
	ItemIDs []uint64 `json:"item_ids"`
}

// GET /api/scenarios/:id/items
func (h *CompositionHandler) ListScenarioItems(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	rows, err := h.composition.ListScenarioItems(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": rows})
}

// POST /api/scenarios/:id/items
func (h *CompositionHandler) AddItems(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req itemIDsRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	results, err := h.composition.AddItemsToScenario(c.Request.Context(), id, req.ItemIDs)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"results": results})
}

// PUT /api/scenarios/:id/items/order
func (h *CompositionHandler) ReorderItems(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req itemIDsRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	rows, err := h.composition.ReorderItems(c.Request.Context(), id, req.ItemIDs)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": rows})
}

// POST /api/scenarios/:id/items/:itemId
func (h *CompositionHandler) LinkItem(c *gin.Context) {
	scenarioID, itemID, ok := h.scenarioItem(c)
	if !ok {
		return
	}
	link, err := h.composition.LinkItem(c.Request.Context(), scenarioID, itemID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"link": link})
}

// DELETE /api/scenarios/:id/items/:itemId
func (h *CompositionHandler) UnlinkItem(c *gin.Context) {
	scenarioID, itemID, ok := h.scenarioItem(c)
	if !ok {
		return
	}
	if err := h.composition.UnlinkItem(c.Request.Context(), scenarioID, itemID); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/scenarios/:id/items/:itemId/subitems/visibility
func (h *CompositionHandler) GetVisibility(c *gin.Context) {
	scenarioID, itemID, ok := h.scenarioItem(c)
	if !ok {
		return
	}
	vis, err := h.composition.GetVisibility(c.Request.Context(), scenarioID, itemID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, vis)
}

// PUT /api/scenarios/:id/items/:itemId/subitems/visibility
func (h *CompositionHandler) SaveVisibility(c *gin.Context) {
	scenarioID, itemID, ok := h.scenarioItem(c)
	if !ok {
		return
	}
	var req struct {
		Visibility map[string]bool `json:"visibility"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	vis := make(map[uint64]bool, len(req.Visibility))
	for k, v := range req.Visibility {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil || id == 0 {
			response.RespondError(c, apierr.Validation("SaveVisibility", "invalid subitem id %q", k))
			return
		}
		vis[id] = v
	}
	results, err := h.composition.SaveSubitemVisibility(c.Request.Context(), scenarioID, itemID, vis)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"results": results})
}

// PUT /api/scenarios/:id/items/:itemId/subitems/:subitemId/visibility
func (h *CompositionHandler) SetVisibility(c *gin.Context) {
	scenarioID, itemID, ok := h.scenarioItem(c)
	if !ok {
		return
	}
	subitemID, err := pathID(c, "subitemId")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req struct {
		IsVisible *bool `json:"isVisible"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	if req.IsVisible == nil {
		response.RespondError(c, apierr.Validation("SetVisibility", "isVisible is required"))
		return
	}
	row, err := h.composition.SetVisibility(c.Request.Context(), scenarioID, itemID, subitemID, *req.IsVisible)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"visibility": row})
}

func (h *CompositionHandler) scenarioItem(c *gin.Context) (uint64, uint64, bool) {
	scenarioID, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return 0, 0, false
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		response.RespondError(c, err)
		return 0, 0, false
	}
	return scenarioID, itemID, true
}
