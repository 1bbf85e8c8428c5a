package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mapexe/storefront-backend/internal/access"
	"github.com/mapexe/storefront-backend/internal/apperr"
	"github.com/mapexe/storefront-backend/internal/i18n"
	"github.com/mapexe/storefront-backend/internal/models"
	"github.com/mapexe/storefront-backend/internal/services"
	"github.com/mapexe/storefront-backend/internal/utils"
)

// Context keys set by Authenticate.
const (
	ContextPrincipal = "principal"
	ContextAccount   = "account"
	ContextClaims    = "claims"
)

// Authenticate resolves an optional bearer token. Requests without one
// continue anonymously; a token that is invalid, expired, revoked or whose
// account no longer exists is rejected with 401.
func Authenticate(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		account, claims, err := authService.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			if apperr.KindOf(err) == apperr.KindUnauthenticated {
				utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthInvalidToken))
			} else {
				utils.InternalErrorResponse(c)
			}
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, access.PrincipalFor(account))
		c.Set(ContextAccount, account)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// AuthRequired rejects anonymous callers. It must run after Authenticate.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetPrincipal(c).Authenticated() {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the caller, or nil for an anonymous request.
func GetPrincipal(c *gin.Context) *access.Principal {
	if v, ok := c.Get(ContextPrincipal); ok {
		if p, ok := v.(*access.Principal); ok {
			return p
		}
	}
	return nil
}

func GetAccount(c *gin.Context) *models.Account {
	if v, ok := c.Get(ContextAccount); ok {
		if a, ok := v.(*models.Account); ok {
			return a
		}
	}
	return nil
}

func GetClaims(c *gin.Context) *utils.JWTClaims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*utils.JWTClaims); ok {
			return claims
		}
	}
	return nil
}
