package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func setupInMemoryTracing(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := NewTracerProviderWithExporter(exporter, zap.NewNop())
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestStartSpan(t *testing.T) {
	exporter := setupInMemoryTracing(t)

	ctx, span := StartSpan(context.Background(), "catalog", "Synchronize",
		AttrMerchantID, "m-1",
		"catalog.items", 3,
		"dangling",
	)
	assert.NotEmpty(t, TraceID(ctx))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "catalog.Synchronize", spans[0].Name)

	attrs := attrMap(spans[0].Attributes)
	assert.Equal(t, "m-1", attrs[AttrMerchantID].AsString())
	assert.Equal(t, int64(3), attrs["catalog.items"].AsInt64())
	assert.NotContains(t, attrs, "dangling")
}

func TestRecordError(t *testing.T) {
	exporter := setupInMemoryTracing(t)

	_, span := StartSpan(context.Background(), "catalog", "Synchronize")
	RecordError(span, nil)
	RecordError(span, errors.New("upstream unavailable"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "upstream unavailable", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestToAttribute(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  attribute.Value
	}{
		{"string", "x", attribute.StringValue("x")},
		{"int", 7, attribute.IntValue(7)},
		{"int64", int64(8), attribute.Int64Value(8)},
		{"float", 1.5, attribute.Float64Value(1.5)},
		{"bool", true, attribute.BoolValue(true)},
		{"slice", []string{"a", "b"}, attribute.StringSliceValue([]string{"a", "b"})},
		{"fallback", struct{ N int }{2}, attribute.StringValue("{2}")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toAttribute("k", tt.value).Value)
		})
	}
}

func TestTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.Enabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOn")
	assert.Contains(t, sampler(0).Description(), "AlwaysOff")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}
