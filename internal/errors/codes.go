package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The merchant dashboard maps these codes to localized messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized  = "AUTH_UNAUTHORIZED"   // login required
	AuthTokenExpired  = "AUTH_TOKEN_EXPIRED"  // token expired
	AuthTokenInvalid  = "AUTH_TOKEN_INVALID"  // malformed or unsigned token
	AuthzForbidden    = "AUTHZ_FORBIDDEN"     // no access to resource
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Onboarding (ONBOARDING_) ====================
	OnboardingProgressNotFound = "ONBOARDING_PROGRESS_NOT_FOUND" // no active progress row
	OnboardingInvalidStep      = "ONBOARDING_INVALID_STEP"       // step outside 1..9
	OnboardingInvalidStatus    = "ONBOARDING_INVALID_STATUS"     // unknown registration status
	OnboardingSaveFailed       = "ONBOARDING_SAVE_FAILED"        // primary progress write failed

	// ==================== Store drafts (STORE_) ====================
	StoreNotFound       = "STORE_NOT_FOUND"
	StorePublicIDExists = "STORE_PUBLIC_ID_EXISTS" // duplicate public id on insert
	StoreDraftExists    = "STORE_DRAFT_EXISTS"     // owner already has an open draft

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API" // S3, redis, or other collaborator failed
)
