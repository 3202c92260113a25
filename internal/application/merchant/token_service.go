package merchant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"github.com/menusync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TokenExchanger is the OAuth half of the upstream client
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*integration.TokenGrant, error)
	RefreshToken(ctx context.Context, refreshToken string) (*integration.TokenGrant, error)
}

// TokenServiceConfig contains configuration for the token service
type TokenServiceConfig struct {
	// RefreshWindow is how far ahead of expiry a credential is renewed
	RefreshWindow time.Duration
}

// DefaultTokenServiceConfig returns default configuration
func DefaultTokenServiceConfig() TokenServiceConfig {
	return TokenServiceConfig{RefreshWindow: 7 * 24 * time.Hour}
}

// RefreshFailure is one merchant whose refresh failed during a pass
type RefreshFailure struct {
	MerchantID uuid.UUID
	Err        error
}

// RefreshReport summarizes a RefreshExpiring pass
type RefreshReport struct {
	Checked   int
	Refreshed int
	Failures  []RefreshFailure
}

// TokenService connects merchants and keeps their upstream credentials fresh
type TokenService struct {
	merchants merchant.MerchantRepository
	exchanger TokenExchanger
	publisher shared.EventPublisher
	metrics   *telemetry.Metrics
	config    TokenServiceConfig
	logger    *zap.Logger
}

// NewTokenService creates a new token service. metrics may be nil.
func NewTokenService(
	merchants merchant.MerchantRepository,
	exchanger TokenExchanger,
	publisher shared.EventPublisher,
	metrics *telemetry.Metrics,
	config TokenServiceConfig,
	logger *zap.Logger,
) *TokenService {
	return &TokenService{
		merchants: merchants,
		exchanger: exchanger,
		publisher: publisher,
		metrics:   metrics,
		config:    config,
		logger:    logger,
	}
}

// Connect exchanges an OAuth authorization code and stores the grant on the merchant
// it belongs to, creating the merchant on first connect.
func (s *TokenService) Connect(ctx context.Context, code string) (*merchant.Merchant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.Validationf("authorization code is required").WithField("code", "required")
	}

	grant, err := s.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if grant.MerchantID == "" {
		return nil, shared.InvalidExternalResponsef("token grant has no merchant id")
	}

	m, err := s.merchants.FindByExternalID(ctx, grant.MerchantID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		if m, err = merchant.NewMerchant(grant.MerchantID, ""); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if err := m.ApplyTokens(grant.AccessToken, grant.RefreshToken, grant.ExpiresAt); err != nil {
		return nil, err
	}
	if err := s.save(ctx, m); err != nil {
		return nil, err
	}

	logger.Enrich(logger.WithMerchantID(ctx, m.ID.String()), s.logger).Info("Merchant connected",
		zap.String("external_merchant_id", m.ExternalMerchantID),
		zap.Time("expires_at", m.Credential.ExpiresAt),
	)
	return m, nil
}

// RefreshMerchant renews one merchant's credential
func (s *TokenService) RefreshMerchant(ctx context.Context, merchantID uuid.UUID) (*merchant.Merchant, error) {
	m, err := s.merchants.FindByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	err = s.refresh(ctx, m)
	s.metrics.RecordTokenRefresh(ctx, err)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RefreshExpiring renews every active credential expiring within the refresh window.
// A merchant's failure, panics included, is recorded in the report and the pass
// continues. The returned error is set only when the candidates cannot be listed.
func (s *TokenService) RefreshExpiring(ctx context.Context, now time.Time) (*RefreshReport, error) {
	candidates, err := s.merchants.ListExpiringBefore(ctx, now.Add(s.config.RefreshWindow))
	if err != nil {
		return nil, fmt.Errorf("list expiring credentials: %w", err)
	}

	report := &RefreshReport{Checked: len(candidates)}
	for _, m := range candidates {
		if ctx.Err() != nil {
			report.Failures = append(report.Failures, RefreshFailure{MerchantID: m.ID, Err: ctx.Err()})
			continue
		}
		err := s.refreshIsolated(ctx, m)
		s.metrics.RecordTokenRefresh(ctx, err)
		if err != nil {
			report.Failures = append(report.Failures, RefreshFailure{MerchantID: m.ID, Err: err})
			continue
		}
		report.Refreshed++
	}
	return report, nil
}

// Revoke clears the credential of a merchant that disconnected the application
func (s *TokenService) Revoke(ctx context.Context, merchantID uuid.UUID) error {
	m, err := s.merchants.FindByID(ctx, merchantID)
	if err != nil {
		return err
	}
	if m.Status == merchant.StatusRevoked {
		return nil
	}
	m.Revoke()
	if err := s.save(ctx, m); err != nil {
		return err
	}
	logger.Enrich(logger.WithMerchantID(ctx, m.ID.String()), s.logger).Info("Merchant revoked",
		zap.String("external_merchant_id", m.ExternalMerchantID))
	return nil
}

func (s *TokenService) refreshIsolated(ctx context.Context, m *merchant.Merchant) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panicked: %v", r)
			s.logger.Error("Token refresh panicked",
				zap.String("merchant_id", m.ID.String()),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	return s.refresh(ctx, m)
}

func (s *TokenService) refresh(ctx context.Context, m *merchant.Merchant) error {
	ctx = logger.WithMerchantID(ctx, m.ID.String())
	if m.Status == merchant.StatusRevoked || m.Credential.RefreshToken == "" {
		return shared.Unauthorizedf("merchant %s has no refreshable credential", m.ID)
	}

	grant, err := s.exchanger.RefreshToken(ctx, m.Credential.RefreshToken)
	if err != nil {
		logger.Enrich(ctx, s.logger).Warn("Token refresh rejected", zap.Error(err))
		return err
	}
	if err := m.ApplyTokens(grant.AccessToken, grant.RefreshToken, grant.ExpiresAt); err != nil {
		return err
	}
	if err := s.save(ctx, m); err != nil {
		return err
	}

	logger.Enrich(ctx, s.logger).Info("Token refreshed", zap.Time("expires_at", m.Credential.ExpiresAt))
	return nil
}

// save persists m and publishes its pending events. A publish failure is logged only;
// the credential is already stored.
func (s *TokenService) save(ctx context.Context, m *merchant.Merchant) error {
	if err := s.merchants.Save(ctx, m); err != nil {
		return err
	}
	events := m.GetDomainEvents()
	m.ClearDomainEvents()
	if len(events) == 0 || s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, s.logger).Warn("Failed to publish merchant events", zap.Error(err))
	}
	return nil
}
