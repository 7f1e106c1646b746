package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	lp, err := NewLoggerProvider(ctx, LogsConfig{Enabled: false, CollectorEndpoint: "localhost:4317"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.Core(zapcore.DebugLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestLoggerProvider_BridgeDisabledKeepsLogger(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, zap.NewNop())
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)
	assert.Same(t, base, lp.Bridge(base))

	var nilProvider *LoggerProvider
	assert.Same(t, base, nilProvider.Bridge(base))

	lp.Bridge(base).Info("PO imported", zap.String("po_number", "ZP-500"))
	require.Equal(t, 1, logs.Len())
}

func TestLoggerProvider_BridgeEnabled(t *testing.T) {
	ctx := context.Background()
	lp, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		ServiceName:       "pohub-test",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	require.True(t, lp.IsEnabled())
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithCancel(ctx)
		cancel()
		_ = lp.Shutdown(shutdownCtx)
	})

	core, logs := observer.New(zapcore.WarnLevel)
	bridged := lp.Bridge(zap.New(core))

	bridged.Info("below the base level")
	bridged.Warn("duplicate po", zap.String("vendor", "zepto"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "duplicate po", logs.All()[0].Message)

	export := lp.Core(zapcore.WarnLevel)
	assert.False(t, export.Enabled(zapcore.InfoLevel))
}

func TestMinLevelCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &minLevelCore{Core: inner, min: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	log := zap.New(core).With(zap.String("request_id", "req-1"))
	log.Info("dropped")
	log.Error("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "req-1", entry.ContextMap()["request_id"])
}
