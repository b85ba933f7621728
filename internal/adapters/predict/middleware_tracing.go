package predict

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "fitscore/predict"

type tracingPoster struct {
	next   Poster
	tracer trace.Tracer
}

// TracingMiddleware opens a client span per attempt using the global tracer
// provider.
func TracingMiddleware() Middleware {
	return func(next Poster) Poster {
		return &tracingPoster{next: next, tracer: otel.Tracer(tracerName)}
	}
}

func (t *tracingPoster) Post(ctx context.Context, service, url string, payload map[string]any) (map[string]any, error) {
	ctx, span := t.tracer.Start(ctx, "predict.post",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("predict.service", service),
			attribute.String("http.url", url),
		),
	)
	defer span.End()

	res, err := t.next.Post(ctx, service, url, payload)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			span.SetAttributes(attribute.String("predict.error_kind", string(te.Kind)))
			if te.StatusCode != 0 {
				span.SetAttributes(attribute.Int("http.status_code", te.StatusCode))
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("predict.response_keys", len(res)))
	span.SetStatus(codes.Ok, "")
	return res, nil
}
