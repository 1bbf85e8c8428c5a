package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mapexe/storefront-backend/internal/middleware"
	"github.com/mapexe/storefront-backend/internal/services"
	"github.com/mapexe/storefront-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, orders)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), middleware.GetPrincipal(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, order)
}

// PUT /orders/:id
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), middleware.GetPrincipal(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}
