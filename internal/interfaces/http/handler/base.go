package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/interfaces/http/dto"
	"github.com/menusync/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// parseUUID parses a path parameter already checked by the binding tags
func parseUUID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 accepted response
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// Error sends a localized error response with the status derived from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	msg := dto.LocalizeMessage(c.GetHeader("Accept-Language"), code, message)
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, msg, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context) {
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

// BindURI binds path parameters, writing a validation response on failure
func (h *BaseHandler) BindURI(c *gin.Context, obj any) bool {
	if err := c.ShouldBindUri(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindJSON binds the request body. Decoding failures answer ERR_INVALID_JSON,
// rule violations answer a validation response.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		middleware.HandleValidationError(c, err)
		return false
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Error(c, dto.ErrCodeRequestTooLarge, "")
		return false
	}
	h.Error(c, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	return false
}

// HandleError is a generic error handler that handles both domain and upstream errors
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		msg := dto.LocalizeMessage(c.GetHeader("Accept-Language"), code, domainErr.Message)
		resp := dto.NewErrorResponseWithRequestID(code, msg, getRequestID(c))
		resp.Error.Details = dto.DetailsFromFields(domainErr.Fields)
		c.JSON(dto.GetHTTPStatus(code), resp)
		return
	}

	if code, ok := upstreamErrorCode(err); ok {
		h.Error(c, code, "")
		return
	}

	h.InternalError(c)
}

// upstreamErrorCode maps outbound adapter failures onto response codes
func upstreamErrorCode(err error) (string, bool) {
	switch {
	case errors.Is(err, integration.ErrUpstreamRateLimited),
		errors.Is(err, integration.ErrUpstreamUnavailable),
		errors.Is(err, integration.ErrRetryBudgetExhausted):
		return dto.ErrCodeUpstreamUnavailable, true
	case errors.Is(err, integration.ErrUpstreamUnauthorized):
		return dto.ErrCodeUnauthorized, true
	case errors.Is(err, integration.ErrUpstreamRequestFailed),
		errors.Is(err, integration.ErrUpstreamInvalidResponse),
		errors.Is(err, integration.ErrPaginationLoop):
		return dto.ErrCodeUpstream, true
	}
	return "", false
}
