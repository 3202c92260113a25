package integration

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared"
)

// Upstream webhook event types the service reacts to
const (
	WebhookCatalogVersionUpdated = "catalog.version.updated"
	WebhookLocationCreated       = "location.created"
	WebhookLocationUpdated       = "location.updated"
	WebhookOAuthRevoked          = "oauth.authorization.revoked"
)

// AggregateTypeWebhook is the aggregate type of webhook domain events
const AggregateTypeWebhook = "UpstreamWebhook"

// WebhookVerifier checks the signature header of a webhook delivery.
// notificationURL is the URL the upstream was configured to deliver to.
type WebhookVerifier interface {
	Verify(notificationURL string, body []byte, signature string) bool
}

// WebhookEvent is the envelope of an upstream notification
type WebhookEvent struct {
	MerchantID string          `json:"merchant_id"`
	Type       string          `json:"type"`
	EventID    string          `json:"event_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Data       json.RawMessage `json:"data"`
}

type webhookData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ParseWebhookEvent decodes a verified webhook body
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "malformed webhook body")
	}
	event.Type = strings.TrimSpace(event.Type)
	switch {
	case event.EventID == "":
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "webhook event_id is required")
	case event.Type == "":
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "webhook type is required")
	case event.MerchantID == "":
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "webhook merchant_id is required")
	}
	return &event, nil
}

// ObjectID returns the ID of the object the notification is about, if any
func (e *WebhookEvent) ObjectID() string {
	if len(e.Data) == 0 {
		return ""
	}
	var data webhookData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return ""
	}
	return data.ID
}

// IdempotencyKey is the key a delivery is deduplicated on
func (e *WebhookEvent) IdempotencyKey() string {
	return "webhook:" + e.EventID
}

// WebhookReceivedEvent is published on the event bus once a webhook is accepted.
// Its event type is the upstream webhook type.
type WebhookReceivedEvent struct {
	shared.BaseDomainEvent
	ExternalMerchantID string `json:"external_merchant_id"`
	UpstreamEventID    string `json:"upstream_event_id"`
	ObjectID           string `json:"object_id,omitempty"`
}

// NewWebhookReceivedEvent wraps an accepted webhook for the merchant it belongs to
func NewWebhookReceivedEvent(merchantID uuid.UUID, event *WebhookEvent) *WebhookReceivedEvent {
	return &WebhookReceivedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(event.Type, AggregateTypeWebhook, merchantID, merchantID),
		ExternalMerchantID: event.MerchantID,
		UpstreamEventID:    event.EventID,
		ObjectID:           event.ObjectID(),
	}
}
