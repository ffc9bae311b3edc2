package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The dashboard maps these codes to display messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token revoked (logout)
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // no access
	AuthzAccessDenied = "AUTHZ_ACCESS_DENIED"  // no permission for this action
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // role claim missing
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // admin only

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

	// ==================== MSME registry (SME_) ====================
	SMENotFound               = "SME_NOT_FOUND"
	SMERegistrationExists     = "SME_REGISTRATION_EXISTS"     // duplicate registration number
	SMEInvalidStatus          = "SME_INVALID_STATUS"          // unknown status value
	SMEAlreadyVerified        = "SME_ALREADY_VERIFIED"        // verify on verified record
	SMESuperseded             = "SME_SUPERSEDED"              // record merged away
	SMEOwnershipExceeded      = "SME_OWNERSHIP_EXCEEDED"      // owner percentages > 100
	SMEInvalidProvince        = "SME_INVALID_PROVINCE"        // unknown province id
	SMEInvalidDistrict        = "SME_INVALID_DISTRICT"        // district not in province

	// ==================== Duplicates (DUPLICATE_) ====================
	DuplicateNotFound       = "DUPLICATE_NOT_FOUND"
	DuplicateAlreadyExists  = "DUPLICATE_PAIR_EXISTS"     // candidate pair already tracked
	DuplicateNotPending     = "DUPLICATE_NOT_PENDING"     // resolve on a terminal candidate
	DuplicateInvalidAction  = "DUPLICATE_INVALID_ACTION"  // action not merge/not_duplicate
	DuplicateInvalidMaster  = "DUPLICATE_INVALID_MASTER"  // master not part of the pair
	DuplicateAlreadyMerged  = "DUPLICATE_ALREADY_MERGED"  // participant already superseded
	DuplicateDetectionBusy  = "DUPLICATE_DETECTION_BUSY"  // detection run in progress

	// ==================== Documents / uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Programs (PROGRAM_) ====================
	ProgramAlreadyEnrolled = "PROGRAM_ALREADY_ENROLLED"

	// ==================== Exports (EXPORT_) ====================
	ExportFailed = "EXPORT_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
