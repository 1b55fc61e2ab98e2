package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans swaps the global tracer provider for one backed by an
// in-memory recorder and restores it when the test ends.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	return recorder
}

func attributeMap(span sdktrace.ReadOnlySpan) map[string]any {
	out := make(map[string]any)
	for _, attr := range span.Attributes() {
		out[string(attr.Key)] = attr.Value.AsInterface()
	}
	return out
}

func TestStartSpanDefaultsAndOptions(t *testing.T) {
	recorder := recordSpans(t)

	_, plain := telemetry.StartSpan(context.Background(), "orders.open")
	plain.End()

	_, decorated := telemetry.StartSpan(context.Background(), "payments.gateway",
		telemetry.WithAttribute(telemetry.SpanAttrPaymentMethod, "CARD"),
	)
	decorated.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "orders.open", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())

	assert.Equal(t, "CARD", attributeMap(spans[1])[telemetry.SpanAttrPaymentMethod])
}

func TestStartServiceSpanNaming(t *testing.T) {
	recorder := recordSpans(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "order", "send_to_kitchen")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "order.send_to_kitchen", spans[0].Name())
}

func TestSetAttributesTypeCoverage(t *testing.T) {
	recorder := recordSpans(t)

	orderID := uuid.New()
	_, span := telemetry.StartSpan(context.Background(), "stock.allocate")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrTableNumber, 7,
		"allocated_total", int64(3),
		"unit_price", 12.50,
		"fully_paid", false,
		"stations", []string{"kitchen", "bar"},
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	attrs := attributeMap(spans[0])
	assert.Equal(t, orderID.String(), attrs[telemetry.SpanAttrOrderID])
	assert.Equal(t, int64(7), attrs[telemetry.SpanAttrTableNumber])
	assert.Equal(t, int64(3), attrs["allocated_total"])
	assert.Equal(t, 12.50, attrs["unit_price"])
	assert.Equal(t, false, attrs["fully_paid"])
	assert.Equal(t, []string{"kitchen", "bar"}, attrs["stations"])
}

func TestSetAttributesMalformedPairs(t *testing.T) {
	recorder := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "stock.allocate")
	// A non-string key drops its pair and a trailing key without a
	// value is ignored; well-formed pairs still land.
	telemetry.SetAttributes(span,
		"station", "grill",
		42, "not-a-key",
		"dangling",
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	attrs := attributeMap(spans[0])
	assert.Len(t, attrs, 1)
	assert.Equal(t, "grill", attrs["station"])
}

func TestRecordErrorSetsStatusAndEvent(t *testing.T) {
	recorder := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "stock.allocate")
	telemetry.RecordError(span, errors.New("insufficient stock"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "insufficient stock", spans[0].Status().Description)

	events := spans[0].Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "exception", events[0].Name)
}

func TestRecordErrorNilIsNoOp(t *testing.T) {
	recorder := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "payments.register")
	telemetry.RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestSetOK(t *testing.T) {
	recorder := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "payments.register")
	telemetry.SetOK(span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestAddEventWithAttributes(t *testing.T) {
	recorder := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "stock.allocate")
	telemetry.AddEvent(span, "stock.below_minimum",
		telemetry.SpanAttrStationID, "bar",
		telemetry.SpanAttrQuantity, 2,
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "stock.below_minimum", events[0].Name)

	eventAttrs := make(map[string]any)
	for _, attr := range events[0].Attributes {
		eventAttrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, "bar", eventAttrs[telemetry.SpanAttrStationID])
	assert.Equal(t, int64(2), eventAttrs[telemetry.SpanAttrQuantity])
}

func TestChildSpanInheritsTrace(t *testing.T) {
	recorder := recordSpans(t)

	ctx, parent := telemetry.StartSpan(context.Background(), "order.complete")
	_, child := telemetry.StartSpan(ctx, "ledger.reconcile")
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	byName := make(map[string]sdktrace.ReadOnlySpan, len(spans))
	for _, s := range spans {
		byName[s.Name()] = s
	}
	parentSpan, ok := byName["order.complete"]
	require.True(t, ok)
	childSpan, ok := byName["ledger.reconcile"]
	require.True(t, ok)

	assert.Equal(t, parentSpan.SpanContext().TraceID(), childSpan.SpanContext().TraceID())
	assert.Equal(t, parentSpan.SpanContext().SpanID(), childSpan.Parent().SpanID())
}

func TestHelpersTolerateNilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "key", "value")
		telemetry.RecordError(nil, errors.New("boom"))
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "noop")
	})
}
