package predict

import (
	"context"

	"golang.org/x/time/rate"
)

type rateLimitedPoster struct {
	next    Poster
	limiter *rate.Limiter
}

// RateLimitMiddleware paces outbound attempts with a token bucket shared by
// both services. limit is in requests per second.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)
	return func(next Poster) Poster {
		return &rateLimitedPoster{next: next, limiter: limiter}
	}
}

func (r *rateLimitedPoster) Post(ctx context.Context, service, url string, payload map[string]any) (map[string]any, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Kind: KindConnection, Service: service, Err: err}
	}
	return r.next.Post(ctx, service, url, payload)
}
