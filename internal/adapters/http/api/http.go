// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/talenti/fitscore/internal/adapters/predict"
	"github.com/talenti/fitscore/internal/domain/model"
	"github.com/talenti/fitscore/pkg/logger"
)

// Routes served by this package.
const (
	RouteHealthz        = "/healthz"
	RouteScoringAnalyze = "/api/v1/scoring/analyze"
	RouteScoringHealth  = "/api/v1/scoring/health"
)

const defaultMaxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Score runs one scoring request.
	Score(ctx context.Context, req *model.ScoringRequest) (*model.ScoringResponse, error)
	// Health reports prediction service liveness.
	Health(ctx context.Context) predict.Health
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	predictorHandler *PredictorHealthHandler
	scoringHandler   *ScoringHandler
}

// Option applies a configuration option to the Server.
type Option func(*options)

type options struct {
	logger       logger.Logger
	maxBodyBytes int64
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxBodyBytes caps the size of a scoring request body.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := &options{logger: logger.Nop(), maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(o)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		predictorHandler: NewPredictorHealthHandler(deps),
		scoringHandler:   NewScoringHandler(deps, o.logger, o.maxBodyBytes),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc(RouteHealthz, MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc(RouteScoringAnalyze, RequestIDMiddleware(MetricsMiddleware(s.scoringHandler.HandleAnalyze, "scoring_analyze")))
	mux.HandleFunc(RouteScoringHealth, RequestIDMiddleware(MetricsMiddleware(s.predictorHandler.HandlePredictorHealth, "scoring_health")))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
