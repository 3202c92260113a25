package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/menusync/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type validationBody struct {
	Code string `json:"code" binding:"required,max=8"`
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/things/:id", func(c *gin.Context) {
		var uri validationURI
		if err := c.ShouldBindUri(&uri); err != nil {
			HandleValidationError(c, err)
			return
		}
		var body validationBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("uri field", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/things/not-a-uuid", nil))

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "id", resp.Error.Details[0].Field)
		assert.Equal(t, "Invalid UUID format", resp.Error.Details[0].Message)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("json field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/things/5f0c7b6e-8a5e-4e1b-9c3d-2f4a6b8c0d1e",
			jsonBody(`{"code":"way-too-long-code"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept-Language", "es")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "La validación de la solicitud falló", resp.Error.Message)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "code", resp.Error.Details[0].Field)
		assert.Equal(t, "Must be at most 8 characters", resp.Error.Details[0].Message)
	})

	t.Run("non validation error has no details", func(t *testing.T) {
		resp := FormatValidationErrors(assert.AnError, "req-1", "")
		assert.Empty(t, resp.Error.Details)
		assert.Equal(t, "req-1", resp.Error.RequestID)
	})
}
