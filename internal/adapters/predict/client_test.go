package predict_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talenti/fitscore/internal/adapters/predict"
)

// stub is a prediction service double that replies with a scripted sequence.
type stub struct {
	*httptest.Server
	calls    atomic.Int32
	lastBody atomic.Value
}

type reply struct {
	status int
	body   string
	delay  time.Duration
}

func newStub(t *testing.T, replies ...reply) *stub {
	t.Helper()
	s := &stub{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(s.calls.Add(1)) - 1
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.lastBody.Store(body)

		rp := replies[len(replies)-1]
		if n < len(replies) {
			rp = replies[n]
		}
		if rp.delay > 0 {
			select {
			case <-time.After(rp.delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rp.status)
		_, _ = w.Write([]byte(rp.body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *stub) body() map[string]any {
	b, _ := s.lastBody.Load().(map[string]any)
	return b
}

func newClient(t *testing.T, opts ...predict.Option) *predict.Client {
	t.Helper()
	base := []predict.Option{predict.WithBackoffBase(time.Millisecond)}
	c := predict.New("", "", append(base, opts...)...)
	t.Cleanup(c.Close)
	return c
}

func TestSendSuccess(t *testing.T) {
	srv := newStub(t, reply{status: http.StatusOK, body: `{"scores":{"clarity":{"score":50}}}`})
	c := newClient(t)

	res, err := c.Send(context.Background(), "svc", srv.URL+"/", "/predict", map[string]any{"transcript": []any{}})

	require.NoError(t, err)
	assert.Contains(t, res, "scores")
	assert.Equal(t, int32(1), srv.calls.Load())
	assert.Contains(t, srv.body(), "transcript")
}

func TestSendPreconditions(t *testing.T) {
	srv := newStub(t, reply{status: http.StatusOK, body: `{}`})
	c := newClient(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		url      string
		endpoint string
		payload  map[string]any
	}{
		{"empty url", "", "/predict", map[string]any{}},
		{"empty endpoint", srv.URL, "", map[string]any{}},
		{"nil payload", srv.URL, "/predict", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Send(ctx, "svc", tc.url, tc.endpoint, tc.payload)
			var te *predict.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, predict.KindPrecondition, te.Kind)
			assert.False(t, te.Retryable())
		})
	}
	assert.Equal(t, int32(0), srv.calls.Load())
}

func TestSendRetriesThenSucceeds(t *testing.T) {
	srv := newStub(t,
		reply{status: http.StatusServiceUnavailable, body: `busy`},
		reply{status: http.StatusBadGateway, body: `busy`},
		reply{status: http.StatusOK, body: `{"ok":true}`},
	)
	c := newClient(t, predict.WithMaxRetries(3))

	res, err := c.Send(context.Background(), "svc", srv.URL, "/predict", map[string]any{})

	require.NoError(t, err)
	assert.Equal(t, true, res["ok"])
	assert.Equal(t, int32(3), srv.calls.Load())
}

func TestSendExhaustsRetries(t *testing.T) {
	srv := newStub(t, reply{status: http.StatusInternalServerError, body: `{"detail":"boom"}`})
	c := newClient(t, predict.WithMaxRetries(2))

	_, err := c.Send(context.Background(), "svc", srv.URL, "/predict", map[string]any{})

	var te *predict.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, predict.KindStatus, te.Kind)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Equal(t, "model service returned error: 500", te.Error())
	assert.Equal(t, int32(3), srv.calls.Load())
}

func TestSendZeroRetries(t *testing.T) {
	srv := newStub(t, reply{status: http.StatusTooManyRequests, body: ``})
	c := newClient(t, predict.WithMaxRetries(0))

	_, err := c.Send(context.Background(), "svc", srv.URL, "/predict", map[string]any{})

	require.Error(t, err)
	assert.Equal(t, int32(1), srv.calls.Load())
}

func TestSendMalformedBodies(t *testing.T) {
	for name, body := range map[string]string{
		"invalid json": `{"scores":`,
		"array":        `[1,2,3]`,
		"string":       `"ok"`,
		"null":         `null`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := newStub(t, reply{status: http.StatusOK, body: body})
			c := newClient(t, predict.WithMaxRetries(3))

			_, err := c.Send(context.Background(), "svc", srv.URL, "/predict", map[string]any{})

			var te *predict.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, predict.KindMalformed, te.Kind)
			assert.Equal(t, int32(1), srv.calls.Load(), "malformed bodies are not retried")
		})
	}
}

func TestSendConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, predict.WithMaxRetries(1))
	_, err := c.Send(context.Background(), "svc", url, "/predict", map[string]any{})

	var te *predict.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, predict.KindConnection, te.Kind)
	assert.Contains(t, te.Error(), "failed to connect to model service")
}

func TestSendAttemptTimeout(t *testing.T) {
	srv := newStub(t, reply{status: http.StatusOK, body: `{}`, delay: time.Second})
	c := newClient(t, predict.WithTimeout(20*time.Millisecond), predict.WithMaxRetries(0))

	start := time.Now()
	_, err := c.Send(context.Background(), "svc", srv.URL, "/predict", map[string]any{})

	var te *predict.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, predict.KindConnection, te.Kind)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestSendCancelledDuringBackoff(t *testing.T) {
	srv := newStub(t, reply{status: http.StatusServiceUnavailable, body: ``})
	c := newClient(t, predict.WithBackoffBase(time.Hour), predict.WithMaxRetries(3))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := c.Send(ctx, "svc", srv.URL, "/predict", map[string]any{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, int32(1), srv.calls.Load())
}
