package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxErrorBody = 512

// Poster performs a single JSON POST attempt and decodes the object reply.
type Poster interface {
	Post(ctx context.Context, service, url string, payload map[string]any) (map[string]any, error)
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(ctx context.Context, service, url string, payload map[string]any) (map[string]any, error)

// Post calls f.
func (f PosterFunc) Post(ctx context.Context, service, url string, payload map[string]any) (map[string]any, error) {
	return f(ctx, service, url, payload)
}

// Middleware decorates a Poster. Middlewares wrap each attempt, not the
// retry loop.
type Middleware func(Poster) Poster

// httpPoster is the innermost Poster.
type httpPoster struct {
	client  *http.Client
	timeout time.Duration
}

func (p *httpPoster) Post(ctx context.Context, service, url string, payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Kind: KindPrecondition, Service: service, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Kind: KindPrecondition, Service: service, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &TransportError{Kind: KindConnection, Service: service, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &TransportError{
			Kind:       KindStatus,
			Service:    service,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(snippet)),
		}
	}

	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, &TransportError{Kind: KindConnection, Service: service, Err: err}
		}
		return nil, &TransportError{Kind: KindMalformed, Service: service, Err: errInvalidJSON}
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, &TransportError{Kind: KindMalformed, Service: service, Err: errInvalidShape}
	}
	return obj, nil
}
