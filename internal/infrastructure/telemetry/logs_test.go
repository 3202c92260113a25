package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerProvider_DisabledCoreIsNop(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{})
	require.NoError(t, err)
	assert.False(t, lp.Core().Enabled(zapcore.ErrorLevel))
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, min: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	child := core.With([]zapcore.Field{{Key: "merchant_id", Type: zapcore.StringType, String: "m-1"}})
	for _, lvl := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel} {
		if ce := child.Check(zapcore.Entry{Level: lvl, Message: lvl.String()}, nil); ce != nil {
			ce.Write()
		}
	}

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "warn", entry.Message)
	assert.Equal(t, "m-1", entry.ContextMap()["merchant_id"])
}
