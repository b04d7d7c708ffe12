package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorInfo is a classified error
type ErrorInfo struct {
	Code    string // error code (see codes.go)
	Message string // human readable message
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// Postgres reports SQLSTATE 23505 through lib/pq; the string checks cover
// gorm's translated error and the sqlite driver used in tests.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "unique constraint") ||
		strings.Contains(errStr, "constraint failed: unique")
}

// ParseError classifies err into a code and a user-facing message.
// Sensitive detail stays out of the message; the context string steers
// the wording ("progress", "store", "document", ...).
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
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

	// 2. PostgreSQL constraint errors

	// 2-1. Unique constraint violation (23505)
	if IsDuplicateKey(err) {
		return parseDuplicateKeyError(errStr)
	}

	// 2-2. Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The referenced record no longer exists",
		}
	}

	// 2-3. Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// 3. Network / connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An upstream service is unavailable. Please try again shortly",
		}
	}

	// 4. Fallback
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "public_id") || strings.Contains(errLower, "idx_stores_public_id") {
		return ErrorInfo{
			Code:    StorePublicIDExists,
			Message: "This store identifier is already in use",
		}
	}

	if strings.Contains(errLower, "store_id") && strings.Contains(errLower, "store_documents") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "A document record already exists for this store",
		}
	}

	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This email is already registered",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "The record already exists",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "progress") {
		return "No onboarding progress found"
	}
	if strings.Contains(contextLower, "store") || strings.Contains(contextLower, "draft") {
		return "Store not found"
	}
	if strings.Contains(contextLower, "document") {
		return "Document record not found"
	}
	if strings.Contains(contextLower, "payout") {
		return "Payout method not found"
	}

	return "The requested record was not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "register") {
		return "Registration failed. Please try again shortly"
	}
	if strings.Contains(contextLower, "update") || strings.Contains(contextLower, "save") {
		return "Saving failed. Please try again shortly"
	}
	if strings.Contains(contextLower, "delete") {
		return "Deletion failed. Please try again shortly"
	}

	return "Something went wrong. Please try again shortly"
}
