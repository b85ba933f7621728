package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talenti/fitscore/internal/domain/model"
)

const (
	analyzePath      = "/api/v1/scoring/analyze"
	healthzPath      = "/healthz"
	maxResponseBytes = 4 << 20
)

// outcome of one submission.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRejected
	outcomeFailed
)

type reply struct {
	outcome  outcome
	status   int
	response model.ScoringResponse
	err      error
}

type client struct {
	hc      *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		hc:      &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// healthy checks that the server answers its liveness route.
func (c *client) healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthzPath, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// submit posts one scoring request and classifies the reply.
func (c *client) submit(ctx context.Context, sr *model.ScoringRequest) reply {
	body, err := json.Marshal(sr)
	if err != nil {
		return reply{outcome: outcomeFailed, err: fmt.Errorf("failed to marshal request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, bytes.NewReader(body))
	if err != nil {
		return reply{outcome: outcomeFailed, err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.hc.Do(req)
	if err != nil {
		return reply{outcome: outcomeFailed, err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return reply{outcome: outcomeFailed, status: resp.StatusCode, err: err}
	}
	switch {
	case resp.StatusCode >= 500:
		return reply{outcome: outcomeFailed, status: resp.StatusCode, err: fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))}
	case resp.StatusCode >= 400:
		return reply{outcome: outcomeRejected, status: resp.StatusCode, err: fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))}
	}

	r := reply{outcome: outcomeSuccess, status: resp.StatusCode}
	if err := json.Unmarshal(raw, &r.response); err != nil {
		r.err = fmt.Errorf("invalid response body: %w", err)
	}
	return r
}
