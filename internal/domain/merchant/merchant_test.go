package merchant

import (
	"errors"
	"testing"
	"time"

	"github.com/menusync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMerchant(t *testing.T) {
	t.Run("creates active merchant without credential", func(t *testing.T) {
		m, err := NewMerchant("MLR1", " Blue Bottle ")
		require.NoError(t, err)
		assert.Equal(t, "Blue Bottle", m.Name)
		assert.Equal(t, StatusActive, m.Status)
		assert.False(t, m.HasValidCredential(time.Now()))
	})

	t.Run("requires external id", func(t *testing.T) {
		_, err := NewMerchant("", "x")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestMerchant_Credential(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	m, err := NewMerchant("MLR1", "Shop")
	require.NoError(t, err)
	require.NoError(t, m.ApplyTokens("access-1", "refresh-1", now.Add(30*24*time.Hour)))

	events := m.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeMerchantConnected, events[0].EventType())

	t.Run("valid before expiry", func(t *testing.T) {
		token, err := m.AccessToken(now)
		require.NoError(t, err)
		assert.Equal(t, "access-1", token)
	})

	t.Run("unauthorized after expiry", func(t *testing.T) {
		_, err := m.AccessToken(now.Add(31 * 24 * time.Hour))
		assert.True(t, errors.Is(err, shared.ErrUnauthorized))
	})

	t.Run("needs refresh inside window", func(t *testing.T) {
		assert.False(t, m.NeedsRefresh(now, 7*24*time.Hour))
		assert.True(t, m.NeedsRefresh(now.Add(24*24*time.Hour), 7*24*time.Hour))
	})

	t.Run("refresh keeps refresh token when omitted", func(t *testing.T) {
		m.ClearDomainEvents()
		require.NoError(t, m.ApplyTokens("access-2", "", now.Add(60*24*time.Hour)))
		assert.Equal(t, "refresh-1", m.Credential.RefreshToken)
		assert.Equal(t, EventTypeCredentialRefreshed, m.GetDomainEvents()[0].EventType())
	})

	t.Run("revoke clears credential", func(t *testing.T) {
		m.Revoke()
		assert.Equal(t, StatusRevoked, m.Status)
		assert.True(t, m.Credential.IsZero())
		_, err := m.AccessToken(now)
		assert.True(t, errors.Is(err, shared.ErrUnauthorized))
		assert.False(t, m.NeedsRefresh(now, time.Hour))
	})
}
