package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts database and service errors into a coded ErrorInfo.
// Sensitive driver detail stays out of the response; the code tells the
// dashboard what went wrong.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM base errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. Domain error kinds from the service layer
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ErrorInfo{Code: ValidationInvalidInput, Message: validationErr.Message}
	}
	var stateErr *InvalidStateError
	if errors.As(err, &stateErr) {
		return ErrorInfo{Code: DuplicateNotPending, Message: stateErr.Message}
	}
	var mergedErr *AlreadyMergedError
	if errors.As(err, &mergedErr) {
		return ErrorInfo{Code: DuplicateAlreadyMerged, Message: mergedErr.Error()}
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundErr.Error()}
	}

	// 3. PostgreSQL constraint errors

	// 3-1. Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// 3-2. Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr, context)
	}

	// 3-3. Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return parseNotNullError(errStr)
	}

	// 3-4. Check constraint violation (23514)
	if strings.Contains(errStrLower, "check constraint") {
		return parseCheckConstraintError(errStr)
	}

	// 4. Network/connection errors
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Failed to reach an external service. Please try again later",
		}
	}

	// 5. Default internal error
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// IsDuplicateKey reports whether err is a unique constraint violation,
// covering the postgres and sqlite phrasings and gorm's translated error.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errLower := strings.ToLower(err.Error())
	return strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint")
}

// parseDuplicateKeyError handles unique constraint violations
func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	// registration number collisions
	if strings.Contains(errLower, "registration_number") || strings.Contains(errLower, "idx_smes_registration_number") {
		return ErrorInfo{
			Code:    SMERegistrationExists,
			Message: "This registration number is already in use",
		}
	}

	// canonical candidate pair index
	if strings.Contains(errLower, "idx_duplicate_candidates_pair") || strings.Contains(errLower, "sme_id_1") {
		return ErrorInfo{
			Code:    DuplicateAlreadyExists,
			Message: "This pair of records is already tracked as a duplicate candidate",
		}
	}

	// user email
	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "This email address is already registered",
		}
	}

	// primary key collisions
	if strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "A record with this identifier already exists",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

// parseForeignKeyError handles foreign key constraint violations
func parseForeignKeyError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	// deleting a row other rows still reference
	if strings.Contains(errLower, "still referenced") || strings.Contains(errLower, "is still referenced by") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "This record has linked data and cannot be removed",
		}
	}

	// inserting against a missing parent
	if strings.Contains(errLower, "sme_id") || strings.Contains(errLower, "fk_smes") {
		return ErrorInfo{
			Code:    SMENotFound,
			Message: "The referenced MSME record does not exist",
		}
	}
	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "The referenced user does not exist",
		}
	}
	if strings.Contains(errLower, "province") || strings.Contains(errLower, "district") {
		return ErrorInfo{
			Code:    SMEInvalidProvince,
			Message: "The referenced province or district does not exist",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "A referenced record could not be found",
	}
}

// parseNotNullError handles not-null constraint violations
func parseNotNullError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "business_name") {
		return ErrorInfo{Code: ValidationRequired, Message: "Business name is required"}
	}
	if strings.Contains(errLower, "registration_number") {
		return ErrorInfo{Code: ValidationRequired, Message: "Registration number is required"}
	}
	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: ValidationRequired, Message: "Email is required"}
	}
	if strings.Contains(errLower, "password") {
		return ErrorInfo{Code: ValidationRequired, Message: "Password is required"}
	}

	return ErrorInfo{
		Code:    ValidationRequired,
		Message: "A required field is missing",
	}
}

// parseCheckConstraintError handles check constraint violations
func parseCheckConstraintError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "similarity_score") {
		return ErrorInfo{
			Code:    ValidationInvalidRange,
			Message: "Similarity score must be between 0 and 100",
		}
	}
	if strings.Contains(errLower, "ownership_percentage") {
		return ErrorInfo{
			Code:    SMEOwnershipExceeded,
			Message: "Ownership percentage must be between 0 and 100",
		}
	}

	return ErrorInfo{
		Code:    ValidationInvalidInput,
		Message: "One or more values are out of range",
	}
}

// getNotFoundMessage maps a context hint to a Not Found message
func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "sme") || strings.Contains(contextLower, "msme") {
		return "MSME record not found"
	}
	if strings.Contains(contextLower, "duplicate") || strings.Contains(contextLower, "candidate") {
		return "Duplicate candidate not found"
	}
	if strings.Contains(contextLower, "user") {
		return "User not found"
	}
	if strings.Contains(contextLower, "document") {
		return "Document not found"
	}

	return "The requested record could not be found"
}

// getDefaultErrorMessage maps a context hint to a default failure message
func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "register") {
		return "Registration failed. Please try again later"
	}
	if strings.Contains(contextLower, "update") {
		return "Update failed. Please try again later"
	}
	if strings.Contains(contextLower, "merge") || strings.Contains(contextLower, "resolve") {
		return "Resolution failed. No changes were applied"
	}
	if strings.Contains(contextLower, "detect") {
		return "Duplicate detection failed. Please try again later"
	}
	if strings.Contains(contextLower, "export") {
		return "Export failed. Please try again later"
	}

	return "An internal error occurred. Please try again later"
}
