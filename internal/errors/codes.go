package errors

// Error code constants, CATEGORY_SPECIFIC_DETAIL. The storefront maps these
// codes to localized messages; the message field is a Portuguese default.

const (
	// ==================== auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// ==================== validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidCEP    = "VALIDATION_INVALID_CEP"
	ValidationTooLong       = "VALIDATION_TOO_LONG"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== catalog (PRODUCT_) ====================
	ProductNotFound = "PRODUCT_NOT_FOUND"
	ProductInactive = "PRODUCT_INACTIVE"

	// ==================== cart (CART_) ====================
	CartEmpty           = "CART_EMPTY"
	CartLineNotFound    = "CART_LINE_NOT_FOUND"
	CartSessionRequired = "CART_SESSION_REQUIRED"

	// ==================== shipping (SHIPPING_) ====================
	ShippingInvalidCEP      = "SHIPPING_INVALID_CEP"
	ShippingConfigNotFound  = "SHIPPING_CONFIG_NOT_FOUND"
	ShippingSettingsMissing = "SHIPPING_SETTINGS_MISSING"

	// ==================== orders (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderNumberExhausted   = "ORDER_NUMBER_EXHAUSTED"
	OrderAlreadyPaid       = "ORDER_ALREADY_PAID"

	// ==================== payment (PAYMENT_) ====================
	PaymentSessionFailed    = "PAYMENT_SESSION_FAILED"
	PaymentWebhookInvalid   = "PAYMENT_WEBHOOK_INVALID"
	PaymentSecretMissing    = "PAYMENT_SECRET_MISSING"

	// ==================== uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== address (ADDRESS_) ====================
	AddressNotFound = "ADDRESS_NOT_FOUND"
	CEPNotFound     = "CEP_NOT_FOUND"

	// ==================== internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
