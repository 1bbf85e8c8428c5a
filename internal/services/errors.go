package services

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/mapexe/storefront-backend/internal/apperr"
	"github.com/mapexe/storefront-backend/internal/i18n"
	"github.com/mapexe/storefront-backend/internal/storage"
	"github.com/mapexe/storefront-backend/internal/utils"
)

// storeError converts a storage failure into the service error taxonomy.
// Backing store failures are logged here and reported as internal errors.
func storeError(op string, err error) error {
	if errors.Is(err, storage.ErrConflict) {
		return apperr.Conflict(i18n.T(i18n.DefaultLang, i18n.KeyConflict))
	}
	logrus.WithError(err).WithField("op", op).Error("Storage operation failed")
	return apperr.Internal(err)
}

// validate runs struct validation and reports every violated field.
func validate(req interface{}) error {
	if fields := utils.GetValidationErrors(utils.ValidateStruct(req)); len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
