package predict

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/talenti/fitscore/pkg/metrics"
)

// Health reports liveness of both services.
type Health struct {
	Culture    bool `json:"model_service_1"`
	Transcript bool `json:"model_service_2"`
}

// Health probes GET {base}/health on both services concurrently. Only a 200
// counts as healthy; errors count as unhealthy and are never returned.
func (c *Client) Health(ctx context.Context) Health {
	var h Health
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h.Culture = c.probe(gctx, ServiceCulture, c.cultureURL)
		return nil
	})
	g.Go(func() error {
		h.Transcript = c.probe(gctx, ServiceTranscript, c.transcriptURL)
		return nil
	})
	_ = g.Wait()
	return h
}

func (c *Client) probe(ctx context.Context, service, baseURL string) bool {
	healthy := c.check(ctx, baseURL)
	metrics.UpdatePredictorHealth(service, healthy)
	return healthy
}

func (c *Client) check(ctx context.Context, baseURL string) bool {
	if baseURL == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+EndpointHealth, http.NoBody)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
