// Package handlers adapts HTTP requests to service calls and service errors
// to the JSON envelope.
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mapexe/storefront-backend/internal/apperr"
	"github.com/mapexe/storefront-backend/internal/i18n"
	"github.com/mapexe/storefront-backend/internal/utils"
)

// respondError writes err using the status and code of its kind. Causes of
// internal errors are logged and never sent to the client.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal(err)
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		if details, ok := appErr.Details.([]utils.ValidationError); ok {
			utils.ValidationErrorResponse(c, details)
			return
		}
		utils.ErrorResponse(c, appErr.Kind.Status(), string(appErr.Kind), appErr.Message, appErr.Details)
	case apperr.KindUnauthenticated:
		utils.UnauthorizedResponse(c, "")
	case apperr.KindForbidden:
		utils.ForbiddenResponse(c, "")
	case apperr.KindSelfDelete:
		utils.ErrorResponse(c, appErr.Kind.Status(), string(appErr.Kind), i18n.T(lang, i18n.KeyAccountCannotDelSelf), nil)
	case apperr.KindNotFound:
		utils.NotFoundResponse(c, appErr.Resource)
	case apperr.KindConflict:
		utils.ErrorResponse(c, appErr.Kind.Status(), string(appErr.Kind), i18n.T(lang, i18n.KeyConflict), nil)
	case apperr.KindInvalidTransition:
		message := appErr.Message
		if details, ok := appErr.Details.(map[string]string); ok {
			message = i18n.T(lang, i18n.KeyOrderInvalidTransition, details["from"], details["to"])
		}
		utils.ErrorResponse(c, appErr.Kind.Status(), string(appErr.Kind), message, appErr.Details)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
		}).Error("Request failed")
		utils.InternalErrorResponse(c)
	}
}

// parseID reads the :id path parameter. A malformed id, or one that does
// not fit a signed 64-bit column, is a validation error on field "id".
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 63)
	if err != nil || id == 0 {
		utils.ValidationErrorResponse(c, []utils.ValidationError{
			utils.NewValidationError("id", "numeric", "ID must be a positive integer"),
		})
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the request body into req. Unknown fields are ignored.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.ValidationErrorResponse(c, []utils.ValidationError{
			utils.NewValidationError("body", "json", "Request body must be valid JSON"),
		})
		return false
	}
	return true
}
