// Package service runs one scoring request end to end: it validates input,
// resolves the culture context, calls both prediction services, and merges
// their results.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/talenti/fitscore/internal/adapters/predict"
	"github.com/talenti/fitscore/internal/domain/culture"
	"github.com/talenti/fitscore/internal/domain/model"
	"github.com/talenti/fitscore/internal/domain/scoring"
	"github.com/talenti/fitscore/pkg/kind"
	"github.com/talenti/fitscore/pkg/logger"
	"github.com/talenti/fitscore/pkg/metrics"
)

// Labels prefixed to notes and rationales from each source.
const (
	LabelCulture    = "Culture fit model"
	LabelTranscript = "Transcript model"
)

const tracerName = "fitscore/app"

// State names a step of a scoring run.
type State string

// Scoring states in the order a successful run visits them.
const (
	StateValidatingInput     State = "validating_input"
	StateResolvingContext    State = "resolving_context"
	StateDispatching         State = "dispatching"
	StateValidatingResponses State = "validating_responses"
	StateCollecting          State = "collecting"
	StateAggregating         State = "aggregating"
	StateDone                State = "done"
	StateError               State = "error"
)

// ContextResolver supplies the operating environment and taxonomy.
type ContextResolver interface {
	Resolve(ctx context.Context, req *model.ScoringRequest) (*culture.Context, error)
}

// Predictor calls both prediction services.
type Predictor interface {
	PredictBoth(ctx context.Context, in predict.Inputs) (model.Prediction, model.Prediction, error)
	Health(ctx context.Context) predict.Health
}

// Service is safe for concurrent use; each Score call is independent.
type Service struct {
	resolver       ContextResolver
	predictor      Predictor
	validate       *validator.Validate
	requestTimeout time.Duration
	logger         logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithResolver sets the context resolver.
func WithResolver(r ContextResolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithPredictor sets the prediction client.
func WithPredictor(p Predictor) Option {
	return func(s *Service) {
		if p != nil {
			s.predictor = p
		}
	}
}

// WithRequestTimeout bounds a whole scoring run. Zero means no bound beyond
// the caller's context.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.requestTimeout = d
		}
	}
}

// New constructs a Service. Without a resolver only requests carrying
// explicit context can be scored.
func New(opts ...Option) *Service {
	s := &Service{
		resolver: culture.NewResolver(nil),
		validate: newValidator(),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// run tracks the state of one Score call for logging.
type run struct {
	s           *Service
	interviewID string
	state       State
}

func (r *run) enter(ctx context.Context, st State) {
	r.state = st
	r.s.logger.Debug(ctx, "scoring state",
		logger.String("state", string(st)),
		logger.String("interview_id", r.interviewID),
	)
}

// Score runs the scoring pipeline for req. Errors carry one of the package
// kinds: ErrInvalidInput, ErrContext, ErrUpstream, ErrNoScores, ErrInternal.
func (s *Service) Score(ctx context.Context, req *model.ScoringRequest) (resp *model.ScoringResponse, err error) {
	const op = "service.score"

	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "scoring.score")
	defer span.End()

	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	r := &run{s: s}
	if req != nil {
		r.interviewID = req.InterviewID
		span.SetAttributes(attribute.String("scoring.interview_id", req.InterviewID))
	}

	defer func() {
		latencyMs := float64(time.Since(start).Microseconds()) / 1000
		if err != nil {
			code, _ := Describe(err)
			s.logger.Error(ctx, "scoring failed",
				logger.String("state", string(r.state)),
				logger.String("kind", code),
				logger.String("interview_id", r.interviewID),
				logger.Error(err),
			)
			r.enter(ctx, StateError)
			metrics.RecordScoringRequest(code, latencyMs)
			span.RecordError(err)
			span.SetStatus(codes.Error, code)
			return
		}
		metrics.RecordScoringRequest("ok", latencyMs)
		metrics.RecordScoringResult(resp.OverallScore, len(resp.Dimensions))
		span.SetAttributes(attribute.Int("scoring.overall", resp.OverallScore))
		span.SetStatus(codes.Ok, "")
	}()

	r.enter(ctx, StateValidatingInput)
	if err := s.validateRequest(req); err != nil {
		return nil, kind.Wrap(op, ErrInvalidInput, err)
	}

	r.enter(ctx, StateResolvingContext)
	rc, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		if errors.Is(err, culture.ErrLookup) {
			return nil, kind.Wrap(op, ErrInternal, err)
		}
		return nil, kind.Wrap(op, ErrContext, err)
	}
	span.SetAttributes(attribute.String("scoring.context_origin", rc.Origin))

	r.enter(ctx, StateDispatching)
	if s.predictor == nil {
		return nil, kind.Wrap(op, ErrInternal, errors.New("prediction client is not configured"))
	}
	a, b, err := s.predictor.PredictBoth(ctx, inputs(req, rc))
	if err != nil {
		return nil, kind.Wrap(op, ErrUpstream, err)
	}

	r.enter(ctx, StateValidatingResponses)
	if a == nil || b == nil {
		return nil, kind.Wrap(op, ErrUpstream, errors.New("prediction fan-out returned no result"))
	}

	r.enter(ctx, StateCollecting)
	dimsA, notesA := scoring.Collect(a, LabelCulture)
	dimsB, notesB := scoring.Collect(b, LabelTranscript)
	metrics.RecordCollectorNotes(predict.ServiceCulture, len(notesA))
	metrics.RecordCollectorNotes(predict.ServiceTranscript, len(notesB))
	notes := append(notesA, notesB...)
	if len(notes) > 0 {
		s.logger.Info(ctx, "collector notes",
			logger.String("interview_id", r.interviewID),
			logger.Any("notes", notes),
		)
	}

	r.enter(ctx, StateAggregating)
	overall, dims, err := scoring.Aggregate(dimsA, dimsB, req.Rubric)
	if err != nil {
		return nil, kind.Wrap(op, ErrNoScores, err)
	}

	summary := strings.Join(notes, " ")
	if summary == "" {
		summary = model.DefaultSummary
	}
	r.enter(ctx, StateDone)
	return &model.ScoringResponse{
		InterviewID:  req.InterviewID,
		OverallScore: overall,
		Dimensions:   dims,
		Summary:      summary,
	}, nil
}

// Health reports prediction service liveness.
func (s *Service) Health(ctx context.Context) predict.Health {
	if s.predictor == nil {
		return predict.Health{}
	}
	return s.predictor.Health(ctx)
}

func (s *Service) validateRequest(req *model.ScoringRequest) error {
	if req == nil {
		return errors.New("request body is required")
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Field() == "transcript" {
				return errors.New("transcript must contain at least one segment")
			}
			return fmt.Errorf("%s failed %s validation", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}

func inputs(req *model.ScoringRequest, rc *culture.Context) predict.Inputs {
	return predict.Inputs{
		Transcript:     req.Transcript,
		CandidateID:    req.CandidateID,
		RoleID:         req.RoleID,
		DepartmentID:   req.DepartmentID,
		InterviewID:    req.InterviewID,
		Environment:    rc.Environment,
		Taxonomy:       rc.Taxonomy,
		Trace:          req.Trace,
		JobDescription: req.JobDescription,
		ResumeText:     req.ResumeText,
		RoleTitle:      req.RoleTitle,
		Seniority:      req.Seniority,
	}
}
