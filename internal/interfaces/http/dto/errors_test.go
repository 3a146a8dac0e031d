package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodePasswordPolicy, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeUnsupportedType, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeFileTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"FORBIDDEN", ErrCodeForbidden},
		{"OPTIMISTIC_LOCK_ERROR", ErrCodeConcurrencyConflict},
		{"SERVICE_UNAVAILABLE", ErrCodeServiceUnavailable},
		{"UNSUPPORTED_REPORT_TYPE", ErrCodeUnsupportedType},
		{"UNSUPPORTED_SCANNER", ErrCodeUnsupportedType},
		{"MISSING_FIELDS", ErrCodeInvalidJSON},
		{"INVALID_CREDENTIALS", ErrCodeInvalidCredentials},
		{"TOO_MANY_CUSTOMERS", ErrCodeBusinessRule},
		{"CONTRACT_NOT_ACTIVE", ErrCodeBusinessRule},
		{"PASSWORD_MISMATCH", ErrCodePasswordMismatch},
		// INVALID_* falls back to invalid input
		{"INVALID_STATUS", ErrCodeInvalidInput},
		{"INVALID_BULK_TYPE", ErrCodeInvalidInput},
		{"INVALID_HOURS", ErrCodeInvalidInput},
		// catalog codes and unknown codes pass through
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainErrorCodeMapping_TargetsHaveStatus(t *testing.T) {
	for domainCode, code := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[code]
		assert.True(t, ok, "%s maps to %s which has no HTTP status", domainCode, code)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Resource not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Resource not found", "req-123-456")

	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-123-456", resp.Error.RequestID)
	assert.Empty(t, resp.Error.Details)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "email", Message: "Invalid email format"},
		{Field: "quantity", Message: "Must be at least 1"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "email", resp.Error.Details[0].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Report not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["success"])
	assert.NotContains(t, raw, "data")
	errObj := raw["error"].(map[string]any)
	assert.Equal(t, ErrCodeNotFound, errObj["code"])
	assert.Equal(t, "req-test-123", errObj["request_id"])
	assert.NotContains(t, errObj, "details")
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now().Unix()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now().Unix()

	assert.GreaterOrEqual(t, resp.Error.Timestamp, before)
	assert.LessOrEqual(t, resp.Error.Timestamp, after)
}

func TestNewSuccessResponseWithMetaPagination(t *testing.T) {
	tests := []struct {
		total         int64
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{100, 10, 10, 10},
		{101, 10, 11, 10},
		{0, 10, 0, 10},
		{9, 10, 1, 10},
		{11, 10, 2, 10},
		{100, 0, 5, 20},
		{100, -1, 5, 20},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta(nil, tt.total, 1, tt.pageSize)
		assert.True(t, resp.Success)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
	}
}

func TestDefaultPage(t *testing.T) {
	page, size := DefaultPage(0, 0, 50)
	assert.Equal(t, 1, page)
	assert.Equal(t, 50, size)

	page, size = DefaultPage(3, 10, 50)
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, size)
}
