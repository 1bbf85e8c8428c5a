package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mapexe/storefront-backend/internal/middleware"
	"github.com/mapexe/storefront-backend/internal/services"
	"github.com/mapexe/storefront-backend/internal/utils"
)

type AdminHandler struct {
	dashboardService *services.DashboardService
}

func NewAdminHandler(dashboardService *services.DashboardService) *AdminHandler {
	return &AdminHandler{
		dashboardService: dashboardService,
	}
}

// GET /admin/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}
