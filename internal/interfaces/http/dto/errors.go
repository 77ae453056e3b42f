package dto

import (
	"net/http"
	"time"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Consolidation business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeGroupInactive is used when a run targets a deactivated group
	ErrCodeGroupInactive = "ERR_GROUP_INACTIVE"
	// ErrCodeGroupHasCompletedRuns is used when deleting a group with completed runs
	ErrCodeGroupHasCompletedRuns = "ERR_GROUP_HAS_COMPLETED_RUNS"
	// ErrCodeRunExistsForPeriod is used when a run is already active for the period
	ErrCodeRunExistsForPeriod = "ERR_RUN_EXISTS_FOR_PERIOD"
	// ErrCodeRunNotCompleted is used when reports are requested before completion
	ErrCodeRunNotCompleted = "ERR_RUN_NOT_COMPLETED"
	// ErrCodeRunNotDeletable is used when deleting a run outside pending/failed
	ErrCodeRunNotDeletable = "ERR_RUN_NOT_DELETABLE"
	// ErrCodeDuplicateMember is used when a company is added to a group twice
	ErrCodeDuplicateMember = "ERR_DUPLICATE_MEMBER"
	// ErrCodeRuleReferencedByRun is used when deleting a rule applied by a completed run
	ErrCodeRuleReferencedByRun = "ERR_RULE_REFERENCED_BY_RUN"
	// ErrCodeRateUnavailable is used when no exchange rate covers a lookup
	ErrCodeRateUnavailable = "ERR_RATE_UNAVAILABLE"
	// ErrCodeNotBalanced is used when a statement identity check fails
	ErrCodeNotBalanced = "ERR_NOT_BALANCED"
	// ErrCodeUnmatchedTransaction is used when an unmatched intercompany transaction blocks a run
	ErrCodeUnmatchedTransaction = "ERR_UNMATCHED_TRANSACTION"
	// ErrCodeTrialBalanceMissing is used when a member trial balance cannot be collected
	ErrCodeTrialBalanceMissing = "ERR_TRIAL_BALANCE_MISSING"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the request body exceeds the size limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors: state conflicts -> 409, rule violations -> 422
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:          http.StatusUnprocessableEntity,
	ErrCodeGroupInactive:         http.StatusUnprocessableEntity,
	ErrCodeGroupHasCompletedRuns: http.StatusConflict,
	ErrCodeRunExistsForPeriod:    http.StatusConflict,
	ErrCodeRunNotCompleted:       http.StatusUnprocessableEntity,
	ErrCodeRunNotDeletable:       http.StatusConflict,
	ErrCodeDuplicateMember:       http.StatusConflict,
	ErrCodeRuleReferencedByRun:   http.StatusConflict,
	ErrCodeRateUnavailable:       http.StatusUnprocessableEntity,
	ErrCodeNotBalanced:           http.StatusUnprocessableEntity,
	ErrCodeUnmatchedTransaction:  http.StatusUnprocessableEntity,
	ErrCodeTrialBalanceMissing:   http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to standardized API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                ErrCodeNotFound,
	"ALREADY_EXISTS":           ErrCodeAlreadyExists,
	"INVALID_INPUT":            ErrCodeInvalidInput,
	"INVALID_STATE":            ErrCodeInvalidState,
	"UNAUTHORIZED":             ErrCodeUnauthorized,
	"FORBIDDEN":                ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":     ErrCodeConcurrencyConflict,
	"OPTIMISTIC_LOCK_ERROR":    ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":         ErrCodeValidation,
	"BAD_REQUEST":              ErrCodeBadRequest,
	"INTERNAL_ERROR":           ErrCodeInternal,
	"GROUP_INACTIVE":           ErrCodeGroupInactive,
	"GROUP_HAS_COMPLETED_RUNS": ErrCodeGroupHasCompletedRuns,
	"RUN_EXISTS_FOR_PERIOD":    ErrCodeRunExistsForPeriod,
	"RUN_NOT_COMPLETED":        ErrCodeRunNotCompleted,
	"RUN_NOT_DELETABLE":        ErrCodeRunNotDeletable,
	"DUPLICATE_MEMBER":         ErrCodeDuplicateMember,
	"RULE_REFERENCED_BY_RUN":   ErrCodeRuleReferencedByRun,
	"RATE_UNAVAILABLE":         ErrCodeRateUnavailable,
	"NOT_BALANCED":             ErrCodeNotBalanced,
	"UNMATCHED_TRANSACTION":    ErrCodeUnmatchedTransaction,
	"TRIAL_BALANCE_MISSING":    ErrCodeTrialBalanceMissing,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// NewErrorResponse creates an error response, normalizing the code
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      NormalizeErrorCode(code),
			Message:   message,
			Timestamp: time.Now().UTC(),
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      NormalizeErrorCode(code),
			Message:   message,
			RequestID: requestID,
			Timestamp: time.Now().UTC(),
		},
	}
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      ErrCodeValidation,
			Message:   message,
			RequestID: requestID,
			Timestamp: time.Now().UTC(),
			Details:   details,
		},
	}
}

// NewErrorResponseWithHelp creates an error response with a documentation link
func NewErrorResponseWithHelp(code, message, requestID, help string) Response {
	resp := NewErrorResponseWithRequestID(code, message, requestID)
	resp.Error.Help = help
	return resp
}
