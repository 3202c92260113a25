package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/integration"
	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"github.com/menusync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MerchantFinder resolves the local merchant of a webhook
type MerchantFinder interface {
	FindByExternalID(ctx context.Context, externalMerchantID string) (*merchant.Merchant, error)
}

// WebhookIntakeConfig contains configuration for the webhook intake service
type WebhookIntakeConfig struct {
	// NotificationURL is the URL the upstream signs deliveries for
	NotificationURL string
	// IdempotencyTTL is how long an accepted event ID is remembered
	IdempotencyTTL time.Duration
}

// DefaultWebhookIntakeConfig returns default configuration
func DefaultWebhookIntakeConfig() WebhookIntakeConfig {
	return WebhookIntakeConfig{IdempotencyTTL: 72 * time.Hour}
}

// IntakeOutcome reports what happened to one delivery. Result is one of the
// telemetry.Webhook* values.
type IntakeOutcome struct {
	Result     string
	EventID    string
	EventType  string
	MerchantID uuid.UUID
	Reason     string
}

// Received reports whether the delivery was taken in, now or earlier
func (o *IntakeOutcome) Received() bool {
	return o.Result == telemetry.WebhookAccepted || o.Result == telemetry.WebhookDuplicate
}

// WebhookIntakeService verifies, deduplicates and dispatches upstream webhooks.
// Dispatch only enqueues on the event bus; subscribers do the work.
type WebhookIntakeService struct {
	verifier    integration.WebhookVerifier
	merchants   MerchantFinder
	idempotency shared.IdempotencyStore
	publisher   shared.EventPublisher
	metrics     *telemetry.Metrics
	config      WebhookIntakeConfig
	logger      *zap.Logger
}

// NewWebhookIntakeService creates a new webhook intake service. metrics may be nil.
func NewWebhookIntakeService(
	verifier integration.WebhookVerifier,
	merchants MerchantFinder,
	idempotency shared.IdempotencyStore,
	publisher shared.EventPublisher,
	metrics *telemetry.Metrics,
	config WebhookIntakeConfig,
	logger *zap.Logger,
) *WebhookIntakeService {
	if config.IdempotencyTTL <= 0 {
		config.IdempotencyTTL = DefaultWebhookIntakeConfig().IdempotencyTTL
	}
	return &WebhookIntakeService{
		verifier:    verifier,
		merchants:   merchants,
		idempotency: idempotency,
		publisher:   publisher,
		metrics:     metrics,
		config:      config,
		logger:      logger,
	}
}

// Accept processes one raw delivery. Rejected deliveries (bad signature,
// malformed body, unknown merchant) come back as an outcome with a nil error.
// An error means the delivery could not be recorded or dispatched and the
// upstream should retry it.
func (s *WebhookIntakeService) Accept(ctx context.Context, body []byte, signature string) (outcome *IntakeOutcome, err error) {
	ctx, span := telemetry.StartSpan(ctx, "webhook", "Accept")
	defer func() {
		if outcome != nil {
			telemetry.SetAttributes(span, "webhook.result", outcome.Result)
			s.metrics.RecordWebhook(ctx, outcome.EventType, outcome.Result)
		}
		telemetry.RecordError(span, err)
		span.End()
	}()

	log := logger.Enrich(ctx, s.logger)

	if signature == "" || !s.verifier.Verify(s.config.NotificationURL, body, signature) {
		log.Warn("Webhook dropped: invalid signature", zap.Int("body_size", len(body)))
		return &IntakeOutcome{Result: telemetry.WebhookInvalidSignature, Reason: "invalid signature"}, nil
	}

	event, err := integration.ParseWebhookEvent(body)
	if err != nil {
		log.Warn("Webhook dropped: malformed body", zap.Error(err))
		return &IntakeOutcome{Result: telemetry.WebhookMalformed, Reason: err.Error()}, nil
	}
	outcome = &IntakeOutcome{EventID: event.EventID, EventType: event.Type}
	telemetry.SetAttributes(span, telemetry.AttrWebhookType, event.Type, telemetry.AttrWebhookEvent, event.EventID)
	log = log.With(zap.String("event_id", event.EventID), zap.String("event_type", event.Type))

	m, err := s.merchants.FindByExternalID(ctx, event.MerchantID)
	if errors.Is(err, shared.ErrNotFound) {
		log.Warn("Webhook dropped: unknown merchant", zap.String("external_merchant_id", event.MerchantID))
		outcome.Result = telemetry.WebhookUnknownMerchant
		outcome.Reason = "unknown merchant"
		return outcome, nil
	}
	if err != nil {
		outcome.Result = telemetry.WebhookDispatchFailed
		return outcome, fmt.Errorf("resolve merchant %s: %w", event.MerchantID, err)
	}
	outcome.MerchantID = m.ID
	log = log.With(zap.String("merchant_id", m.ID.String()))

	key := event.IdempotencyKey()
	first, err := s.idempotency.MarkProcessed(ctx, key, s.config.IdempotencyTTL)
	if err != nil {
		outcome.Result = telemetry.WebhookDispatchFailed
		return outcome, fmt.Errorf("mark webhook %s: %w", event.EventID, err)
	}
	if !first {
		log.Info("Webhook duplicate ignored")
		outcome.Result = telemetry.WebhookDuplicate
		return outcome, nil
	}

	if err := s.publisher.Publish(ctx, integration.NewWebhookReceivedEvent(m.ID, event)); err != nil {
		// let the upstream redeliver
		if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
			log.Error("Failed to release webhook idempotency key", zap.Error(releaseErr))
		}
		outcome.Result = telemetry.WebhookDispatchFailed
		return outcome, fmt.Errorf("dispatch webhook %s: %w", event.EventID, err)
	}

	log.Info("Webhook accepted")
	outcome.Result = telemetry.WebhookAccepted
	return outcome, nil
}
