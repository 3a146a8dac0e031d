package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown            = "ERR_UNKNOWN"
	ErrCodeInternal           = "ERR_INTERNAL"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// Validation error codes
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodePasswordPolicy     = "ERR_PASSWORD_POLICY"
	ErrCodePasswordMismatch   = "ERR_PASSWORD_MISMATCH"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeUnsupportedType     = "ERR_UNSUPPORTED_TYPE"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeFileTooLarge = "ERR_FILE_TOO_LARGE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodePasswordPolicy:     http.StatusBadRequest,
	ErrCodePasswordMismatch:   http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeUnsupportedType:     http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeFileTooLarge: http.StatusRequestEntityTooLarge,

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

// DomainErrorCodeMapping maps domain error codes to the ERR_* catalog.
// Codes starting with INVALID_ that are not listed map to ErrCodeInvalidInput.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"FORBIDDEN":               ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"OPTIMISTIC_LOCK_ERROR":   ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":        ErrCodeValidation,
	"BAD_REQUEST":             ErrCodeBadRequest,
	"INTERNAL_ERROR":          ErrCodeInternal,
	"DB_ERROR":                ErrCodeInternal,
	"PASSWORD_HASH_ERROR":     ErrCodeInternal,
	"SERVICE_UNAVAILABLE":     ErrCodeServiceUnavailable,
	"UNSUPPORTED_REPORT_TYPE": ErrCodeUnsupportedType,
	"UNSUPPORTED_SCANNER":     ErrCodeUnsupportedType,
	"INVALID_JSON":            ErrCodeInvalidJSON,
	"MISSING_FIELDS":          ErrCodeInvalidJSON,
	"INVALID_CREDENTIALS":     ErrCodeInvalidCredentials,
	"ACCOUNT_INACTIVE":        ErrCodeInvalidCredentials,
	"TOKEN_EXPIRED":           ErrCodeTokenExpired,
	"TOKEN_INVALID":           ErrCodeTokenInvalid,
	"INVALID_TOKEN":           ErrCodeTokenInvalid,
	"TOKEN_MAX_REFRESH":       ErrCodeTokenInvalid,
	"TOKEN_REVOKED":           ErrCodeTokenRevoked,
	"PASSWORD_MISMATCH":       ErrCodePasswordMismatch,
	"UNKNOWN_PERMISSION":      ErrCodeInvalidInput,
	"DUPLICATE_SERVICE":       ErrCodeConflict,

	"TOO_MANY_CUSTOMERS":         ErrCodeBusinessRule,
	"CONTRACT_NOT_ACTIVE":        ErrCodeBusinessRule,
	"CONTRACT_NOT_UPLOADABLE":    ErrCodeBusinessRule,
	"CONTRACT_CUSTOMER_MISMATCH": ErrCodeBusinessRule,
	"SERVICE_NOT_IN_CONTRACT":    ErrCodeBusinessRule,
	"NOT_SUPPORT_SERVICE":        ErrCodeBusinessRule,
	"CANNOT_DELETE_SELF":         ErrCodeBusinessRule,
	"CANNOT_DEACTIVATE_SELF":     ErrCodeBusinessRule,
}

// NormalizeErrorCode converts a domain error code to the ERR_* catalog.
// Codes already in the catalog and unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeInvalidInput
	}
	return code
}
