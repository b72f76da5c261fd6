package emit

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func otelFixture(t *testing.T) (*OTelEmitter, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewOTelEmitter(tp.Tracer("test")), recorder
}

func TestOTelEmitter(t *testing.T) {
	emitter, recorder := otelFixture(t)

	emitter.Emit(Event{
		SessionID: "s1", Step: 2, NodeID: "brief", Msg: EventNodeFinished,
		Meta: map[string]any{"duration_ms": int64(12), "cached": true},
	})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != EventNodeFinished {
		t.Errorf("span name = %q, want %q", span.Name(), EventNodeFinished)
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs["graphflow.session_id"].AsString(); got != "s1" {
		t.Errorf("session attribute = %q", got)
	}
	if got := attrs["graphflow.step"].AsInt64(); got != 2 {
		t.Errorf("step attribute = %d", got)
	}
	if got := attrs["graphflow.node_id"].AsString(); got != "brief" {
		t.Errorf("node attribute = %q", got)
	}
	if got := attrs["graphflow.meta.duration_ms"].AsInt64(); got != 12 {
		t.Errorf("meta duration attribute = %d", got)
	}
	if got := attrs["graphflow.meta.cached"].AsBool(); !got {
		t.Error("meta bool attribute lost")
	}
	if span.Status().Code == codes.Error {
		t.Error("successful event marked as error")
	}
}

func TestOTelEmitterErrorStatus(t *testing.T) {
	emitter, recorder := otelFixture(t)

	emitter.Emit(Event{
		SessionID: "s1", Step: 3, NodeID: "fetch", Msg: EventRunFailed,
		Meta: map[string]any{"error": "upstream unavailable"},
	})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	status := spans[0].Status()
	if status.Code != codes.Error {
		t.Errorf("status code = %v, want Error", status.Code)
	}
	if status.Description != "upstream unavailable" {
		t.Errorf("status description = %q", status.Description)
	}
}
