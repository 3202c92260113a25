package integration

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhookEvent(t *testing.T) {
	body := []byte(`{"merchant_id":"MLR1","type":"catalog.version.updated","event_id":"evt-1",
		"created_at":"2026-03-01T10:00:00Z","data":{"type":"catalog","id":"obj-9"}}`)

	event, err := ParseWebhookEvent(body)
	require.NoError(t, err)
	assert.Equal(t, WebhookCatalogVersionUpdated, event.Type)
	assert.Equal(t, "MLR1", event.MerchantID)
	assert.Equal(t, "obj-9", event.ObjectID())
	assert.Equal(t, "webhook:evt-1", event.IdempotencyKey())
}

func TestParseWebhookEvent_Invalid(t *testing.T) {
	for _, body := range []string{
		`not json`,
		`{"type":"catalog.version.updated","merchant_id":"M"}`,
		`{"event_id":"e","merchant_id":"M"}`,
		`{"event_id":"e","type":"location.created"}`,
	} {
		_, err := ParseWebhookEvent([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestNewWebhookReceivedEvent(t *testing.T) {
	merchantID := uuid.New()
	event := &WebhookEvent{MerchantID: "MLR1", Type: WebhookLocationUpdated, EventID: "evt-2"}

	received := NewWebhookReceivedEvent(merchantID, event)
	assert.Equal(t, WebhookLocationUpdated, received.EventType())
	assert.Equal(t, merchantID, received.MerchantID())
	assert.Equal(t, "evt-2", received.UpstreamEventID)
	assert.Empty(t, received.ObjectID)
}
