package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/infrastructure/auth"
	"github.com/scg/portal/internal/infrastructure/logger"
	"github.com/scg/portal/internal/interfaces/http/dto"
	"github.com/scg/portal/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// envelope mirrors dto.Response with the data left raw
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// staffClaims and memberClaims stand in for a validated access token
func staffClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.NewString(), Email: "staff@scg.example", IsStaff: true}
}

func memberClaims(customerID uuid.UUID, perms ...string) *auth.Claims {
	return &auth.Claims{
		UserID:      uuid.NewString(),
		Email:       "member@example.com",
		CustomerIDs: []string{customerID.String()},
		Permissions: perms,
	}
}

// authAs replaces the JWT middleware in handler tests
func authAs(claims *auth.Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(logger.GinUserIDKey, claims.UserID)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.RequestIDHeader, "req-test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, code, env.Error.Code)
}

func TestGetRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Empty(t, getRequestID(c))

	c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
	assert.Equal(t, "header-id", getRequestID(c))

	c.Set(logger.GinRequestIDKey, "ctx-id")
	assert.Equal(t, "ctx-id", getRequestID(c))
}

func TestGetUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := getUserID(c)
	assert.Error(t, err)

	id := uuid.New()
	c.Set(logger.GinUserIDKey, id.String())
	got, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped domain error", fmt.Errorf("save: %w", shared.NewDomainError("CONTRACT_NOT_ACTIVE", "Contract is not active")), http.StatusUnprocessableEntity, dto.ErrCodeBusinessRule},
		{"invalid prefix", shared.NewDomainError("INVALID_HOURS", "bad hours"), http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"optimistic lock", shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "stale"), http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"plain error", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(logger.GinRequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assertError(t, w, tt.status, tt.code)
			assert.Equal(t, "req-1", decodeEnvelope(t, w).Error.RequestID)
		})
	}
}

func TestHandleError_PlainErrorHidesMessage(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(c, fmt.Errorf("pq: connection refused"))

	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Len(t, c.Errors, 1)
}

func TestBaseHandler_SuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.SuccessWithMeta(c, []string{"a"}, 45, 2, 20)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(45), env.Meta.Total)
	assert.Equal(t, 3, env.Meta.TotalPages)
}
