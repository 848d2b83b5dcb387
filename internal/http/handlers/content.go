package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/playbook-backend/internal/http/response"
	"github.com/yungbote/playbook-backend/internal/platform/logger"
	"github.com/yungbote/playbook-backend/internal/services"
)

type ContentHandler struct {
	log     *logger.Logger
	content services.ContentService
}

func NewContentHandler(log *logger.Logger, content services.ContentService) *ContentHandler {
	return &ContentHandler{
		log:     log.With("handler", "ContentHandler"),
		content: content,
	}
}

// GET /api/products
func (h *ContentHandler) ListProducts(c *gin.Context) {
	rows, err := h.content.ListProducts(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"products": rows})
}

// GET /api/products/:id
func (h *ContentHandler) GetProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	p, err := h.content.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// POST /api/products
func (h *ContentHandler) CreateProduct(c *gin.Context) {
	var req services.ProductInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	p, err := h.content.CreateProduct(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"product": p})
}

// PUT /api/products/:id
func (h *ContentHandler) UpdateProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req services.ProductInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	p, err := h.content.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// DELETE /api/products/:id
func (h *ContentHandler) DeleteProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.content.DeleteProduct(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/products/:id/items
func (h *ContentHandler) ListItems(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	rows, err := h.content.ListItems(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": rows})
}

// POST /api/products/:id/items
func (h *ContentHandler) CreateItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	it, err := h.content.CreateItem(c.Request.Context(), id, req.Title)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"item": it})
}

// DELETE /api/items/:id
func (h *ContentHandler) DeleteItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.content.DeleteItem(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/items/:id/subitems
func (h *ContentHandler) ListSubitems(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	rows, err := h.content.ListSubitems(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subitems": rows})
}

// POST /api/items/:id/subitems
func (h *ContentHandler) CreateSubitem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req services.SubitemInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	s, err := h.content.CreateSubitem(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"subitem": s})
}

// PUT /api/subitems/:id
func (h *ContentHandler) UpdateSubitem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req services.SubitemInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	s, err := h.content.UpdateSubitem(c.Request.Context(), id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subitem": s})
}

// DELETE /api/subitems/:id
func (h *ContentHandler) DeleteSubitem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.content.DeleteSubitem(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondNoContent(c)
}
