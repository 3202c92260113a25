package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	integrationapp "github.com/menusync/backend/internal/application/integration"
	"github.com/menusync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultWebhookMaxBodyBytes is used when no limit is configured
const DefaultWebhookMaxBodyBytes int64 = 1 << 20

// WebhookAcceptor takes in one raw webhook delivery
type WebhookAcceptor interface {
	Accept(ctx context.Context, body []byte, signature string) (*integrationapp.IntakeOutcome, error)
}

// WebhookHandler receives upstream webhook deliveries.
// The endpoint is called by the upstream and authenticates by signature only.
type WebhookHandler struct {
	BaseHandler
	intake          WebhookAcceptor
	signatureHeader string
	maxBodyBytes    int64
	logger          *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler. signatureHeader names the
// request header carrying the delivery signature.
func NewWebhookHandler(intake WebhookAcceptor, signatureHeader string, maxBodyBytes int64, logger *zap.Logger) *WebhookHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultWebhookMaxBodyBytes
	}
	return &WebhookHandler{
		intake:          intake,
		signatureHeader: signatureHeader,
		maxBodyBytes:    maxBodyBytes,
		logger:          logger,
	}
}

// WebhookResponse represents the response for a webhook delivery
type WebhookResponse struct {
	Received  bool   `json:"received"`
	Duplicate bool   `json:"duplicate,omitempty"`
	EventID   string `json:"event_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Message   string `json:"message,omitempty"`
}

// HandleWebhook verifies and enqueues one delivery. Deliveries that will never
// succeed (bad signature, unknown merchant) are answered with 200 so the
// upstream stops retrying them; a dispatch failure is answered with 503 so it
// redelivers.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBodyBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Failed to read request body"})
		return
	}
	if int64(len(body)) > h.maxBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, WebhookResponse{Message: "Payload too large"})
		return
	}

	outcome, err := h.intake.Accept(c.Request.Context(), body, c.GetHeader(h.signatureHeader))
	if err != nil {
		h.logger.Error("Webhook dispatch failed",
			zap.String("request_id", getRequestID(c)),
			zap.Error(err),
		)
		resp := WebhookResponse{Message: "Webhook could not be processed, retry later"}
		if outcome != nil {
			resp.EventID = outcome.EventID
			resp.EventType = outcome.EventType
		}
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	resp := WebhookResponse{
		Received:  outcome.Received(),
		EventID:   outcome.EventID,
		EventType: outcome.EventType,
	}
	switch outcome.Result {
	case telemetry.WebhookAccepted:
		resp.Message = "Webhook accepted"
	case telemetry.WebhookDuplicate:
		resp.Duplicate = true
		resp.Message = "Webhook already processed"
	case telemetry.WebhookMalformed:
		resp.Message = outcome.Reason
		c.JSON(http.StatusBadRequest, resp)
		return
	default:
		resp.Message = outcome.Reason
	}
	c.JSON(http.StatusOK, resp)
}
