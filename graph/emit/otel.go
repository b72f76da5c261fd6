package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter exports events as OpenTelemetry spans.
//
// Each event becomes a zero-duration span named after the event, attributed
// with session id, step, node id and every Meta entry. Events carrying an
// "error" Meta key mark the span's status as Error.
//
// Wire it to whatever provider the host application already configures:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	emitter := emit.NewOTelEmitter(otel.Tracer("graphflow"))
//	runner, _ := graph.NewRunner(g, graph.WithEmitter(emitter))
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates an emitter exporting through the given tracer.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

// Emit implements Emitter.
func (o *OTelEmitter) Emit(event Event) {
	attrs := []attribute.KeyValue{
		attribute.String("graphflow.session_id", event.SessionID),
		attribute.Int("graphflow.step", event.Step),
	}
	if event.NodeID != "" {
		attrs = append(attrs, attribute.String("graphflow.node_id", event.NodeID))
	}
	for k, v := range event.Meta {
		attrs = append(attrs, metaAttribute(k, v))
	}

	_, span := o.tracer.Start(context.Background(), event.Msg, trace.WithAttributes(attrs...))
	if errVal, ok := event.Meta["error"]; ok {
		span.SetStatus(codes.Error, fmt.Sprint(errVal))
	}
	span.End()
}

// metaAttribute converts an arbitrary Meta value to a span attribute,
// preserving native types where OpenTelemetry has one.
func metaAttribute(key string, v any) attribute.KeyValue {
	k := "graphflow.meta." + key
	switch val := v.(type) {
	case string:
		return attribute.String(k, val)
	case bool:
		return attribute.Bool(k, val)
	case int:
		return attribute.Int(k, val)
	case int64:
		return attribute.Int64(k, val)
	case float64:
		return attribute.Float64(k, val)
	default:
		return attribute.String(k, fmt.Sprint(val))
	}
}
