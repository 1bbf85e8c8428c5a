package utils

import (
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mapexe/storefront-backend/internal/models"
)

var (
	validate        *validator.Validate
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	discordIDRegex  = regexp.MustCompile(`^[0-9]{17,19}$`)

	// maxPrice is the largest value a decimal(10,2) column holds.
	maxPrice = decimal.New(9999999999, -2)
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterCustomTypeFunc(decimalAsFloat, decimal.Decimal{})
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("item_type", validateItemType)
	validate.RegisterValidation("order_status", validateOrderStatus)
	validate.RegisterValidation("discord_id", validateDiscordID)
	validate.RegisterValidation("half_step", validateHalfStep)
	validate.RegisterValidation("price", validatePrice)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// jsonFieldName reports fields by their JSON name so clients can map errors
// back to the request body.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func decimalAsFloat(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	// 3-50 characters: letters, digits, underscore, dot and dash
	if len(username) < 3 || len(username) > 50 {
		return false
	}
	return usernamePattern.MatchString(username)
}

func validateItemType(fl validator.FieldLevel) bool {
	return models.CatalogItemType(fl.Field().String()).Valid()
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	return models.OrderStatus(fl.Field().String()).Valid()
}

func validateDiscordID(fl validator.FieldLevel) bool {
	return discordIDRegex.MatchString(fl.Field().String())
}

func validateHalfStep(fl validator.FieldLevel) bool {
	doubled := fl.Field().Float() * 2
	return doubled == math.Trunc(doubled)
}

// validatePrice accepts amounts with at most two fractional digits that fit
// the stored column.
func validatePrice(fl validator.FieldLevel) bool {
	d := fieldDecimal(fl)
	return d.Equal(d.Truncate(2)) && d.LessThanOrEqual(maxPrice)
}

// fieldDecimal recovers the decimal behind a field that decimalAsFloat has
// already turned into a float64.
func fieldDecimal(fl validator.FieldLevel) decimal.Decimal {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() == reflect.Struct {
		if f := reflect.Indirect(parent.FieldByName(fl.StructFieldName())); f.IsValid() {
			if d, ok := f.Interface().(decimal.Decimal); ok {
				return d
			}
		}
	}
	return decimal.NewFromFloat(fl.Field().Float())
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func NewValidationError(field, tag, message string) ValidationError {
	return ValidationError{Field: field, Tag: tag, Message: message}
}

// GetValidationErrors lists every failed constraint in err, not just the
// first one.
func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.Slice {
			return e.Field() + " must contain at least " + e.Param() + " entries"
		}
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "gte":
		return e.Field() + " must be at least " + e.Param()
	case "lte":
		return e.Field() + " must be at most " + e.Param()
	case "url":
		return e.Field() + " must be a valid URL"
	case "username":
		return "Username must be 3-50 characters of letters, numbers, '.', '-' or '_'"
	case "item_type":
		return "Type must be one of: map, script"
	case "order_status":
		return "Status must be one of: pending, completed, cancelled"
	case "discord_id":
		return "Discord ID must be 17-19 digits"
	case "half_step":
		return e.Field() + " must be a multiple of 0.5"
	case "price":
		return e.Field() + " must have at most 2 decimal places and be at most " + maxPrice.StringFixed(2)
	default:
		return e.Field() + " is invalid"
	}
}
