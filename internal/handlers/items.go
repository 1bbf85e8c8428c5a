package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mapexe/storefront-backend/internal/middleware"
	"github.com/mapexe/storefront-backend/internal/services"
	"github.com/mapexe/storefront-backend/internal/utils"
)

type ItemHandler struct {
	catalogService *services.CatalogService
}

func NewItemHandler(catalogService *services.CatalogService) *ItemHandler {
	return &ItemHandler{
		catalogService: catalogService,
	}
}

// GET /items?type=map|script
func (h *ItemHandler) ListItems(c *gin.Context) {
	items, err := h.catalogService.ListItems(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, items)
}

// GET /items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.catalogService.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, item)
}

// POST /items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req services.CreateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.catalogService.CreateItem(c.Request.Context(), middleware.GetPrincipal(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, item)
}

// PUT /items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req services.UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.catalogService.UpdateItem(c.Request.Context(), middleware.GetPrincipal(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, item)
}

// DELETE /items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteItem(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
