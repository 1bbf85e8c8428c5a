package i18n

// Translation keys constants
const (
	// Common
	KeyValidationInvalid = "validation.invalid"
	KeyInternalError     = "error.internal"
	KeyRateLimited       = "error.rate_limited"
	KeyConflict          = "error.conflict"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLogoutSuccess      = "auth.logout_success"

	// Access control
	KeyAccessDenied         = "access.denied"
	KeyAccountCannotDelSelf = "account.cannot_delete_self"

	// Resources
	KeyAccountNotFound     = "account.not_found"
	KeyItemNotFound        = "item.not_found"
	KeyOrderNotFound       = "order.not_found"
	KeyTestimonialNotFound = "testimonial.not_found"

	// Orders
	KeyOrderInvalidTransition = "order.invalid_transition"

	// Uploads
	KeyUploadRejected = "upload.rejected"
)
