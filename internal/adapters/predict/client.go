// Package predict talks to the two external prediction services: it sends
// JSON with bounded retries, fans requests out to both services, and probes
// their health.
package predict

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/talenti/fitscore/pkg/logger"
	"github.com/talenti/fitscore/pkg/metrics"
)

// Service names used in logs, metrics, and spans.
const (
	ServiceCulture    = "culture_fit"
	ServiceTranscript = "transcript"
)

// Endpoints on each service.
const (
	EndpointCulture    = "/predict"
	EndpointTranscript = "/predict/transcript"
	EndpointHealth     = "/health"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultHealthTimeout = 5 * time.Second
	defaultMaxRetries    = 3
	defaultBackoffBase   = time.Second
)

// Client is safe for concurrent use; its configuration is fixed at New.
type Client struct {
	cultureURL    string
	transcriptURL string

	httpClient    *http.Client
	timeout       time.Duration
	healthTimeout time.Duration
	maxRetries    int
	backoffBase   time.Duration
	middlewares   []Middleware
	logger        logger.Logger

	poster Poster
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHealthTimeout bounds each health probe.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.healthTimeout = d
		}
	}
}

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoffBase sets the delay unit; attempt n waits base * 2^n.
func WithBackoffBase(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoffBase = d
		}
	}
}

// WithMiddleware appends attempt middlewares. The first one is outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Client) {
		for _, m := range mw {
			if m != nil {
				c.middlewares = append(c.middlewares, m)
			}
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a Client for the culture-fit and transcript services.
func New(cultureURL, transcriptURL string, opts ...Option) *Client {
	c := &Client{
		cultureURL:    strings.TrimRight(cultureURL, "/"),
		transcriptURL: strings.TrimRight(transcriptURL, "/"),
		httpClient:    &http.Client{},
		timeout:       defaultTimeout,
		healthTimeout: defaultHealthTimeout,
		maxRetries:    defaultMaxRetries,
		backoffBase:   defaultBackoffBase,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var p Poster = &httpPoster{client: c.httpClient, timeout: c.timeout}
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		p = c.middlewares[i](p)
	}
	c.poster = p
	return c
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Send posts payload to serviceURL+endpoint and returns the decoded object.
// Status and connection failures are retried with exponential backoff;
// precondition and malformed-body failures are not. Errors are *TransportError.
func (c *Client) Send(ctx context.Context, service, serviceURL, endpoint string, payload map[string]any) (map[string]any, error) {
	switch {
	case strings.TrimSpace(serviceURL) == "":
		return nil, &TransportError{Kind: KindPrecondition, Service: service, Err: errors.New("model service URL is not configured")}
	case strings.TrimSpace(endpoint) == "":
		return nil, &TransportError{Kind: KindPrecondition, Service: service, Err: errors.New("model service endpoint is required")}
	case payload == nil:
		return nil, &TransportError{Kind: KindPrecondition, Service: service, Err: errors.New("model payload must be a JSON object")}
	}
	url := strings.TrimRight(serviceURL, "/") + endpoint

	for attempt := 0; ; attempt++ {
		res, err := c.poster.Post(ctx, service, url, payload)
		if err == nil {
			return res, nil
		}
		te := asTransportError(service, err)
		c.logger.Warn(ctx, "prediction attempt failed",
			logger.String("service", service),
			logger.String("url", url),
			logger.Int("attempt", attempt+1),
			logger.String("kind", string(te.Kind)),
			logger.Error(err),
		)
		if !te.Retryable() || attempt >= c.maxRetries || ctx.Err() != nil {
			return nil, te
		}

		delay := c.backoffBase * time.Duration(1<<attempt)
		metrics.RecordPredictionRetry(service)
		select {
		case <-ctx.Done():
			return nil, &TransportError{Kind: KindConnection, Service: service, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}
}
