// Package otel holds the small tracing helpers shared by the sync packages.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys recorded on sync spans
const (
	AttrFetchedCount = attribute.Key("sync.fetched_count")
	AttrNewCount     = attribute.Key("sync.new_count")
	AttrCardCount    = attribute.Key("sync.card_count")
	AttrCreatedCount = attribute.Key("sync.created_count")
	AttrOutcome      = attribute.Key("sync.outcome")
	AttrAttempt      = attribute.Key("sync.attempt")
	AttrUserID       = attribute.Key("user.id")
)

// StartSpan starts a span on tracer, or returns the span already in ctx when
// tracer is nil.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError marks span as failed. The status text stays generic; the error
// itself is attached as a span event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
