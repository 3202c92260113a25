package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewMetrics(provider.Meter(MeterName))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// counterValue sums the data points of an int64 counter whose attributes contain all of want
func counterValue(t *testing.T, m metricdata.Metrics, want ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		match := true
		for _, kv := range want {
			v, found := dp.Attributes.Value(kv.Key)
			if !found || v != kv.Value {
				match = false
				break
			}
		}
		if match {
			total += dp.Value
		}
	}
	return total
}

func TestMetrics_RecordSyncRun(t *testing.T) {
	m, reader := newTestMetrics(t)

	ctx := WithTrigger(context.Background(), TriggerWebhook)
	m.RecordSyncRun(ctx, 2*time.Second, nil)
	m.RecordSyncRun(context.Background(), time.Second, errors.New("boom"))

	got := collect(t, reader)
	runs := got["catalog_sync_runs_total"]
	assert.Equal(t, int64(1), counterValue(t, runs, AttrKeyOutcome.String("success"), AttrKeyTrigger.String(TriggerWebhook)))
	assert.Equal(t, int64(1), counterValue(t, runs, AttrKeyOutcome.String("failure"), AttrKeyTrigger.String(TriggerManual)))

	hist, ok := got["catalog_sync_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestMetrics_RecordEntities(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordEntities(context.Background(), "item", 2, 0, 5)

	entities := collect(t, reader)["catalog_sync_entities_total"]
	assert.Equal(t, int64(2), counterValue(t, entities, AttrKeyEntityType.String("item"), AttrKeyOutcome.String("created")))
	assert.Equal(t, int64(5), counterValue(t, entities, AttrKeyOutcome.String("unchanged")))
	assert.Equal(t, int64(0), counterValue(t, entities, AttrKeyOutcome.String("updated")))
}

func TestMetrics_RecordWebhookAndTokenRefresh(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordWebhook(context.Background(), "catalog.version.updated", WebhookAccepted)
	m.RecordWebhook(context.Background(), "", WebhookMalformed)
	m.RecordTokenRefresh(context.Background(), nil)
	m.RecordTokenRefresh(context.Background(), errors.New("revoked"))

	got := collect(t, reader)
	assert.Equal(t, int64(1), counterValue(t, got["webhook_deliveries_total"], AttrKeyResult.String(WebhookAccepted)))
	assert.Equal(t, int64(1), counterValue(t, got["webhook_deliveries_total"], AttrKeyEventType.String("unknown")))
	assert.Equal(t, int64(2), counterValue(t, got["token_refreshes_total"]))
	assert.Equal(t, int64(1), counterValue(t, got["token_refreshes_total"], AttrKeyOutcome.String("failure")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSyncRun(context.Background(), time.Second, nil)
		m.RecordEntities(context.Background(), "item", 1, 1, 1)
		m.RecordWebhook(context.Background(), "x", WebhookAccepted)
		m.RecordTokenRefresh(context.Background(), nil)
	})
}

func TestTriggerFrom_Default(t *testing.T) {
	assert.Equal(t, TriggerManual, TriggerFrom(context.Background()))
	assert.Equal(t, TriggerScheduled, TriggerFrom(WithTrigger(context.Background(), TriggerScheduled)))
}

func TestMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter(MeterName))
	assert.NoError(t, mp.Shutdown(context.Background()))
}
