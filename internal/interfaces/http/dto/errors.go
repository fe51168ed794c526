package dto

import "net/http"

// Lifecycle error codes. These are the codes raised by the returns domain and
// are passed through to clients unchanged.
const (
	ErrCodeLifecycleValidation = "VALIDATION_ERROR"
	ErrCodeIllegalTransition   = "ILLEGAL_TRANSITION"
	ErrCodeConflictingState    = "CONFLICTING_STATE"
	ErrCodeDispatchFailed      = "DISPATCH_FAILED"
	ErrCodeDispatchTimeout     = "DISPATCH_TIMEOUT"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeLockUnavailable     = "LOCK_UNAVAILABLE"
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

// Transport error codes
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	// ErrCodeValidation is used when the request body or query fails binding
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeTooLarge      = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited   = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Guard failures on a well-formed request
	ErrCodeLifecycleValidation: http.StatusUnprocessableEntity,
	ErrCodeIllegalTransition:   http.StatusConflict,
	ErrCodeConflictingState:    http.StatusConflict,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,

	// Collaborator and infrastructure failures
	ErrCodeDispatchFailed:     http.StatusBadGateway,
	ErrCodeDispatchTimeout:    http.StatusServiceUnavailable,
	ErrCodeLockUnavailable:    http.StatusServiceUnavailable,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	// Malformed requests
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeTooLarge:   http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited: http.StatusTooManyRequests,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping folds the generic shared error codes into the
// lifecycle vocabulary
var LegacyErrorCodeMapping = map[string]string{
	"CONCURRENCY_CONFLICT":    ErrCodeConflictingState,
	"CONCURRENT_MODIFICATION": ErrCodeConflictingState,
	"INVALID_INPUT":           ErrCodeLifecycleValidation,
	"INVALID_STATE":           ErrCodeIllegalTransition,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"FORBIDDEN":               ErrCodeForbidden,
	"INTERNAL_ERROR":          ErrCodeInternal,
}

// NormalizeErrorCode converts a legacy error code to the lifecycle format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
