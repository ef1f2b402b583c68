// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	KeyInternalError = "error.internal"
	KeyRateLimited   = "error.rate_limited"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthAccountDisabled    = "auth.account_disabled"
	KeyAuthUserExists         = "auth.user_exists"

	// Users
	KeyUserNotFound      = "user.not_found"
	KeyUserSelfDemote    = "user.self_demote"
	KeyUserSelfDisable   = "user.self_disable"
	KeyUserLastAdmin     = "user.last_admin"
	KeyUserNoUpdateField = "user.no_update_fields"

	// Products
	KeyProductNotFound = "product.not_found"

	// Orders
	KeyOrderNotFound          = "order.not_found"
	KeyOrderProductNotFound   = "order.product_not_found"
	KeyOrderInsufficientStock = "order.insufficient_stock"
	KeyOrderInvalidTransition = "order.invalid_transition"

	// Payments
	KeyPaymentDisabled     = "payment.disabled"
	KeyPaymentNotPayable   = "payment.not_payable"
	KeyPaymentNotCompleted = "payment.not_completed"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"
)
