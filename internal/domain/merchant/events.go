package merchant

import (
	"github.com/menusync/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeMerchant = "Merchant"

// Event type constants
const (
	EventTypeMerchantConnected   = "MerchantConnected"
	EventTypeCredentialRefreshed = "CredentialRefreshed"
	EventTypeMerchantRevoked     = "MerchantRevoked"
)

// MerchantEvent is published on merchant lifecycle changes
type MerchantEvent struct {
	shared.BaseDomainEvent
	ExternalMerchantID string `json:"external_merchant_id"`
}

func newMerchantEvent(eventType string, m *Merchant) *MerchantEvent {
	return &MerchantEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(eventType, AggregateTypeMerchant, m.ID, m.ID),
		ExternalMerchantID: m.ExternalMerchantID,
	}
}

// NewMerchantConnectedEvent creates a MerchantConnected event
func NewMerchantConnectedEvent(m *Merchant) *MerchantEvent {
	return newMerchantEvent(EventTypeMerchantConnected, m)
}

// NewCredentialRefreshedEvent creates a CredentialRefreshed event
func NewCredentialRefreshedEvent(m *Merchant) *MerchantEvent {
	return newMerchantEvent(EventTypeCredentialRefreshed, m)
}

// NewMerchantRevokedEvent creates a MerchantRevoked event
func NewMerchantRevokedEvent(m *Merchant) *MerchantEvent {
	return newMerchantEvent(EventTypeMerchantRevoked, m)
}

var _ shared.DomainEvent = (*MerchantEvent)(nil)
