package predict

import (
	"context"
	"errors"
	"time"

	"github.com/talenti/fitscore/pkg/metrics"
)

type metricsPoster struct {
	next Poster
}

// MetricsMiddleware records per-attempt call counts and latency.
func MetricsMiddleware() Middleware {
	return func(next Poster) Poster {
		return &metricsPoster{next: next}
	}
}

func (m *metricsPoster) Post(ctx context.Context, service, url string, payload map[string]any) (map[string]any, error) {
	start := time.Now()
	res, err := m.next.Post(ctx, service, url, payload)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000

	outcome := "ok"
	if err != nil {
		outcome = "error"
		var te *TransportError
		if errors.As(err, &te) {
			outcome = string(te.Kind)
		}
	}
	metrics.RecordPredictionCall(service, outcome, latencyMs)
	return res, err
}
