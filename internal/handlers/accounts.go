package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mapexe/storefront-backend/internal/middleware"
	"github.com/mapexe/storefront-backend/internal/services"
	"github.com/mapexe/storefront-backend/internal/utils"
)

type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// GET /accounts
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, accounts)
}

// DELETE /accounts/:id
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// PUT /accounts/:id/promote
func (h *AccountHandler) PromoteAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	account, err := h.accountService.Promote(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, account)
}
