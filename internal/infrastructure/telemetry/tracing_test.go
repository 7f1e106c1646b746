package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupGlobalRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value
	}
	return out
}

func TestStartServiceSpan(t *testing.T) {
	recorder := setupGlobalRecorder(t)

	_, span := StartServiceSpan(context.Background(), "purchase_order", "preview",
		SpanAttrVendor, "zepto",
		SpanAttrFileSize, 2048,
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "purchase_order.preview", spans[0].Name())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "zepto", attrs[SpanAttrVendor].AsString())
	assert.Equal(t, int64(2048), attrs[SpanAttrFileSize].AsInt64())
}

func TestSetAttributes(t *testing.T) {
	recorder := setupGlobalRecorder(t)
	id := uuid.MustParse("6f1c2d3e-4a5b-4c6d-8e7f-8091a2b3c4d5")

	_, span := StartServiceSpan(context.Background(), "purchase_order", "import")
	SetAttributes(span,
		SpanAttrPONumber, "PO-1001",
		SpanAttrPOCount, int64(3),
		"ratio", 0.5,
		"ok", true,
		"tags", []string{"a", "b"},
		"id", id,
		"other", struct{ N int }{7},
		42, "non-string key",
		"dangling",
	)
	span.End()

	attrs := attrMap(recorder.Ended()[0].Attributes())
	assert.Equal(t, "PO-1001", attrs[SpanAttrPONumber].AsString())
	assert.Equal(t, int64(3), attrs[SpanAttrPOCount].AsInt64())
	assert.Equal(t, 0.5, attrs["ratio"].AsFloat64())
	assert.True(t, attrs["ok"].AsBool())
	assert.Equal(t, []string{"a", "b"}, attrs["tags"].AsStringSlice())
	assert.Equal(t, id.String(), attrs["id"].AsString())
	assert.Equal(t, "{7}", attrs["other"].AsString())
	assert.NotContains(t, attrs, "dangling")
}

func TestRecordError(t *testing.T) {
	recorder := setupGlobalRecorder(t)

	_, span := StartServiceSpan(context.Background(), "purchase_order", "import")
	RecordError(span, errors.New("po PO-1001 already exists"))
	RecordError(span, nil)
	span.End()

	s := recorder.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "po PO-1001 already exists", s.Status().Description)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)
}

func TestAddEvent(t *testing.T) {
	recorder := setupGlobalRecorder(t)

	_, span := StartServiceSpan(context.Background(), "purchase_order", "preview")
	AddEvent(span, "archive_failed", "key", "uploads/zepto/x.csv")
	span.End()

	events := recorder.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "archive_failed", events[0].Name)
	assert.Equal(t, "uploads/zepto/x.csv", attrMap(events[0].Attributes)["key"].AsString())
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "a", 1)
		RecordError(nil, errors.New("x"))
		AddEvent(nil, "e")
	})
}
