package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mapexe/storefront-backend/internal/apperr"
	"github.com/mapexe/storefront-backend/internal/i18n"
	"github.com/mapexe/storefront-backend/internal/middleware"
	"github.com/mapexe/storefront-backend/internal/services"
	"github.com/mapexe/storefront-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Register(c.Request.Context(), middleware.GetPrincipal(c), &req)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			utils.ErrorResponse(c, apperr.KindConflict.Status(), string(apperr.KindConflict), i18n.T(lang, i18n.KeyAuthUserExists), nil)
			return
		}
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, authResponse)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnauthenticated {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
			return
		}
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, authResponse)
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.authService.Logout(middleware.GetClaims(c))

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthLogoutSuccess),
	})
}

// GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	account := middleware.GetAccount(c)
	if account == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	utils.SuccessResponse(c, account.Public())
}
