package merchant

import (
	"strings"
	"time"

	"github.com/menusync/backend/internal/domain/shared"
)

// Status represents the connection status of a merchant
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Credential is the upstream OAuth grant held for a merchant
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// IsZero returns true if no grant is stored
func (c Credential) IsZero() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// Merchant is the tenant: an upstream seller account connected to this service
type Merchant struct {
	shared.BaseAggregateRoot
	ExternalMerchantID string
	Name               string
	Status             Status
	Credential         Credential
	LastRefreshedAt    *time.Time
}

// NewMerchant creates a merchant for an upstream seller account
func NewMerchant(externalMerchantID, name string) (*Merchant, error) {
	externalMerchantID = strings.TrimSpace(externalMerchantID)
	if externalMerchantID == "" {
		return nil, shared.Validationf("external merchant id is required").WithField("merchant_id", "required")
	}
	m := &Merchant{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		ExternalMerchantID: externalMerchantID,
		Name:               strings.TrimSpace(name),
		Status:             StatusActive,
	}
	return m, nil
}

// ApplyTokens stores a new grant and reactivates a revoked merchant
func (m *Merchant) ApplyTokens(access, refresh string, expiresAt time.Time) error {
	if access == "" {
		return shared.InvalidExternalResponsef("token grant for merchant %s has no access token", m.ExternalMerchantID)
	}
	if refresh == "" {
		refresh = m.Credential.RefreshToken
	}
	now := time.Now()
	connecting := m.Status == StatusRevoked || m.Credential.IsZero()

	m.Credential = Credential{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}
	m.Status = StatusActive
	m.LastRefreshedAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()

	if connecting {
		m.AddDomainEvent(NewMerchantConnectedEvent(m))
	} else {
		m.AddDomainEvent(NewCredentialRefreshedEvent(m))
	}
	return nil
}

// HasValidCredential reports whether an unexpired access token is available
func (m *Merchant) HasValidCredential(now time.Time) bool {
	if m.Status != StatusActive || m.Credential.AccessToken == "" {
		return false
	}
	return m.Credential.ExpiresAt.IsZero() || now.Before(m.Credential.ExpiresAt)
}

// AccessToken returns the access token or an UNAUTHORIZED error when it is missing or expired
func (m *Merchant) AccessToken(now time.Time) (string, error) {
	if !m.HasValidCredential(now) {
		return "", shared.Unauthorizedf("merchant %s has no valid upstream credential", m.ID)
	}
	return m.Credential.AccessToken, nil
}

// NeedsRefresh reports whether the credential expires within the window
func (m *Merchant) NeedsRefresh(now time.Time, window time.Duration) bool {
	if m.Status != StatusActive || m.Credential.RefreshToken == "" || m.Credential.ExpiresAt.IsZero() {
		return false
	}
	return !m.Credential.ExpiresAt.After(now.Add(window))
}

// Revoke drops the credential after the seller disconnected the application
func (m *Merchant) Revoke() {
	if m.Status == StatusRevoked {
		return
	}
	m.Status = StatusRevoked
	m.Credential = Credential{}
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMerchantRevokedEvent(m))
}
