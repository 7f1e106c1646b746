package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/pohub/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewMeterProvider_Enabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		ExportInterval:    time.Hour,
		ServiceName:       "pohub-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = mp.Shutdown(shutdownCtx)
}

// collect reads every sum data point into name -> attribute set -> value
func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]map[attribute.Distinct]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]map[attribute.Distinct]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			points := map[attribute.Distinct]int64{}
			for _, dp := range sum.DataPoints {
				points[dp.Attributes.Equivalent()] = dp.Value
			}
			out[m.Name] = points
		}
	}
	return out
}

func set(kvs ...attribute.KeyValue) attribute.Distinct {
	s := attribute.NewSet(kvs...)
	return s.Equivalent()
}

func TestImportMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m, err := telemetry.NewImportMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.FileParsed(ctx, "zepto", "filename", 12*time.Millisecond)
	m.FileParsed(ctx, "zepto", "filename", 8*time.Millisecond)
	m.FileParsed(ctx, "blinkit", "structure", time.Millisecond)
	m.RowsSkipped(ctx, "zepto", 3)
	m.RowsSkipped(ctx, "zepto", 0)
	m.Imported(ctx, "zepto", telemetry.OutcomeCreated)
	m.Imported(ctx, "zepto", telemetry.OutcomeDuplicate)
	m.Imported(ctx, "zepto", telemetry.OutcomeDuplicate)

	got := collect(t, reader)

	parsed := got["po.files.parsed"]
	assert.Equal(t, int64(2), parsed[set(telemetry.AttrVendor.String("zepto"), telemetry.AttrMethod.String("filename"))])
	assert.Equal(t, int64(1), parsed[set(telemetry.AttrVendor.String("blinkit"), telemetry.AttrMethod.String("structure"))])

	assert.Equal(t, int64(3), got["po.rows.skipped"][set(telemetry.AttrVendor.String("zepto"))])

	imports := got["po.imports"]
	assert.Equal(t, int64(1), imports[set(telemetry.AttrVendor.String("zepto"), telemetry.AttrOutcome.String("created"))])
	assert.Equal(t, int64(2), imports[set(telemetry.AttrVendor.String("zepto"), telemetry.AttrOutcome.String("duplicate"))])
}
