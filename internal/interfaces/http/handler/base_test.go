package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"github.com/menusync/backend/internal/interfaces/http/dto"
	"github.com/menusync/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context",
			setup: func(c *gin.Context) {
				c.Set(logger.RequestIDKey, "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(logger.RequestIDKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)

			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "not found",
			err:            shared.NotFoundf("location %s not found", "abc"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
			expectedMsg:    "location abc not found",
		},
		{
			name:           "wrapped validation",
			err:            fmt.Errorf("quote pickup: %w", shared.Validationf("location is closed")),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeValidation,
			expectedMsg:    "location is closed",
		},
		{
			name:           "invalid input",
			err:            shared.NewDomainError(shared.CodeInvalidInput, "pickup too far ahead"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeInvalidInput,
		},
		{
			name:           "sync in progress",
			err:            shared.ErrSyncInProgress,
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeSyncInProgress,
		},
		{
			name:           "already exists",
			err:            shared.ErrAlreadyExists,
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeAlreadyExists,
		},
		{
			name:           "invalid external response",
			err:            shared.InvalidExternalResponsef("item has no id"),
			expectedStatus: http.StatusBadGateway,
			expectedCode:   dto.ErrCodeUpstream,
		},
		{
			name:           "unauthorized",
			err:            shared.Unauthorizedf("merchant is revoked"),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   dto.ErrCodeUnauthorized,
		},
		{
			name:           "upstream rate limited",
			err:            fmt.Errorf("list catalog: %w", integration.ErrUpstreamRateLimited),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   dto.ErrCodeUpstreamUnavailable,
		},
		{
			name:           "retry budget exhausted",
			err:            fmt.Errorf("list catalog: %w", integration.ErrRetryBudgetExhausted),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   dto.ErrCodeUpstreamUnavailable,
		},
		{
			name:           "upstream request failed",
			err:            fmt.Errorf("retrieve location: %w", integration.ErrUpstreamRequestFailed),
			expectedStatus: http.StatusBadGateway,
			expectedCode:   dto.ErrCodeUpstream,
		},
		{
			name:           "upstream unauthorized",
			err:            fmt.Errorf("refresh: %w", integration.ErrUpstreamUnauthorized),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   dto.ErrCodeUnauthorized,
		},
		{
			name:           "unknown error is hidden",
			err:            errors.New("pq: connection reset"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeInternal,
			expectedMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(logger.RequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, resp.Error.Message)
			}
		})
	}
}

func TestBaseHandlerHandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerHandleError_FieldDetails(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	err := shared.Validationf("invalid business hours").
		WithField("start_local_time", "must be HH:MM").
		WithField("day_of_week", "unknown day")
	h.HandleError(c, err)

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, []dto.ValidationDetail{
		{Field: "day_of_week", Message: "unknown day"},
		{Field: "start_local_time", Message: "must be HH:MM"},
	}, resp.Error.Details)
}

func TestBaseHandlerHandleError_Localized(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Accept-Language", "es-MX,es;q=0.9")

	h.HandleError(c, shared.NotFoundf("location %s not found", "abc"))

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Recurso no encontrado", resp.Error.Message)
}

type bindTarget struct {
	Code string `json:"code" binding:"required"`
}

func TestBaseHandlerBindJSON(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectOK       bool
		expectedStatus int
		expectedCode   string
	}{
		{name: "valid", body: `{"code":"abc"}`, expectOK: true},
		{name: "missing field", body: `{}`, expectedStatus: http.StatusBadRequest, expectedCode: dto.ErrCodeValidation},
		{name: "broken json", body: `{"code":`, expectedStatus: http.StatusBadRequest, expectedCode: dto.ErrCodeInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var target bindTarget
			ok := h.BindJSON(c, &target)

			assert.Equal(t, tt.expectOK, ok)
			if tt.expectOK {
				assert.Equal(t, "abc", target.Code)
				return
			}
			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestBaseHandlerBindJSON_TooLarge(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"`+strings.Repeat("x", 64)+`"}`))
	c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 16)

	var target bindTarget
	ok := h.BindJSON(c, &target)

	assert.False(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
