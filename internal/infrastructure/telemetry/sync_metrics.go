package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the application instruments
const MeterName = "github.com/menusync/backend"

// Metric attribute keys
var (
	AttrKeyOutcome    = attribute.Key("outcome")
	AttrKeyEntityType = attribute.Key("entity_type")
	AttrKeyTrigger    = attribute.Key("trigger")
	AttrKeyEventType  = attribute.Key("event_type")
	AttrKeyResult     = attribute.Key("result")
)

// Sync triggers
const (
	TriggerManual    = "manual"
	TriggerWebhook   = "webhook"
	TriggerScheduled = "scheduled"
)

// Webhook intake results
const (
	WebhookAccepted         = "accepted"
	WebhookDuplicate        = "duplicate"
	WebhookInvalidSignature = "invalid_signature"
	WebhookMalformed        = "malformed"
	WebhookUnknownMerchant  = "unknown_merchant"
	WebhookDispatchFailed   = "dispatch_failed"
)

type triggerKey struct{}

// WithTrigger records what started a sync run so metrics can be split by it
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

// TriggerFrom returns the sync trigger recorded in ctx, defaulting to manual
func TriggerFrom(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey{}).(string); ok && t != "" {
		return t
	}
	return TriggerManual
}

// Metrics holds the application instruments. A nil *Metrics records nothing.
type Metrics struct {
	syncRuns       metric.Int64Counter
	syncDuration   metric.Float64Histogram
	entityOutcomes metric.Int64Counter
	webhooks       metric.Int64Counter
	tokenRefreshes metric.Int64Counter
}

// NewMetrics creates the instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err, e error

	m.syncRuns, e = meter.Int64Counter("catalog_sync_runs_total",
		metric.WithDescription("Catalog sync runs by outcome and trigger"),
		metric.WithUnit("{run}"))
	err = errors.Join(err, e)

	m.syncDuration, e = meter.Float64Histogram("catalog_sync_duration_seconds",
		metric.WithDescription("Wall time of a catalog sync run"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 30, 60, 120, 300))
	err = errors.Join(err, e)

	m.entityOutcomes, e = meter.Int64Counter("catalog_sync_entities_total",
		metric.WithDescription("Reconciled catalog entities by type and outcome"),
		metric.WithUnit("{entity}"))
	err = errors.Join(err, e)

	m.webhooks, e = meter.Int64Counter("webhook_deliveries_total",
		metric.WithDescription("Upstream webhook deliveries by type and result"),
		metric.WithUnit("{delivery}"))
	err = errors.Join(err, e)

	m.tokenRefreshes, e = meter.Int64Counter("token_refreshes_total",
		metric.WithDescription("Upstream token refresh attempts by outcome"),
		metric.WithUnit("{refresh}"))
	err = errors.Join(err, e)

	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordSyncRun records one finished sync run
func (m *Metrics) RecordSyncRun(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrKeyOutcome.String(outcome(err)),
		AttrKeyTrigger.String(TriggerFrom(ctx)),
	)
	m.syncRuns.Add(ctx, 1, attrs)
	m.syncDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordEntities adds reconcile outcome counts for one entity type
func (m *Metrics) RecordEntities(ctx context.Context, entityType string, created, updated, unchanged int) {
	if m == nil {
		return
	}
	for _, c := range []struct {
		outcome string
		n       int
	}{{"created", created}, {"updated", updated}, {"unchanged", unchanged}} {
		if c.n == 0 {
			continue
		}
		m.entityOutcomes.Add(ctx, int64(c.n), metric.WithAttributes(
			AttrKeyEntityType.String(entityType),
			AttrKeyOutcome.String(c.outcome),
		))
	}
}

// RecordWebhook records one webhook delivery
func (m *Metrics) RecordWebhook(ctx context.Context, eventType, result string) {
	if m == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	m.webhooks.Add(ctx, 1, metric.WithAttributes(
		AttrKeyEventType.String(eventType),
		AttrKeyResult.String(result),
	))
}

// RecordTokenRefresh records one token refresh attempt
func (m *Metrics) RecordTokenRefresh(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.tokenRefreshes.Add(ctx, 1, metric.WithAttributes(AttrKeyOutcome.String(outcome(err))))
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
