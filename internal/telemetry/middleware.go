package telemetry

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// HTTPMetricsMeterName is the meter used for the ops HTTP server
	HTTPMetricsMeterName = "github.com/stacklok/usersync/http"

	// HTTPTracerName is the tracer used for the ops HTTP server
	HTTPTracerName = "github.com/stacklok/usersync/http"

	unknownRoute = "unknown_route"
)

// HTTPMiddleware returns a chi-compatible middleware that records a request
// duration histogram and a server span per request. Nil providers are skipped.
func HTTPMiddleware(tp trace.TracerProvider, mp metric.MeterProvider) (func(http.Handler) http.Handler, error) {
	var (
		tracer   trace.Tracer
		duration metric.Float64Histogram
	)

	if tp != nil {
		tracer = tp.Tracer(HTTPTracerName)
	}
	if mp != nil {
		var err error
		duration, err = mp.Meter(HTTPMetricsMeterName).Float64Histogram(
			"usersync_http_request_duration_seconds",
			metric.WithDescription("Duration of ops HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			return nil, err
		}
	}

	return func(next http.Handler) http.Handler {
		if tracer == nil && duration == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			var span trace.Span
			if tracer != nil {
				ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(r.Header))
				ctx, span = tracer.Start(ctx, fmt.Sprintf("%s %s", r.Method, r.URL.Path),
					trace.WithSpanKind(trace.SpanKindServer),
					trace.WithAttributes(semconv.HTTPRequestMethodKey.String(r.Method)),
				)
				defer span.End()
			}

			next.ServeHTTP(ww, r.WithContext(ctx))

			// chi fills in the route pattern only after routing
			route := routePattern(r)
			status := ww.Status()

			if span != nil {
				span.SetName(fmt.Sprintf("%s %s", r.Method, route))
				span.SetAttributes(
					semconv.HTTPRouteKey.String(route),
					semconv.HTTPResponseStatusCode(status),
				)
				if status >= http.StatusInternalServerError {
					span.SetStatus(codes.Error, http.StatusText(status))
				}
			}
			if duration != nil {
				duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
					attribute.String("method", r.Method),
					attribute.String("route", route),
					attribute.String("status_code", strconv.Itoa(status)),
				))
			}
		})
	}, nil
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return unknownRoute
}
