package predict

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/talenti/fitscore/internal/domain/model"
	"github.com/talenti/fitscore/pkg/kind"
	"github.com/talenti/fitscore/pkg/logger"
	"github.com/talenti/fitscore/pkg/metrics"
)

const invalidResponseType = "invalid response type"

// Inputs carries everything either service needs for one prediction.
type Inputs struct {
	Transcript []model.TranscriptSegment

	// Culture-fit service only.
	CandidateID  string
	RoleID       string
	DepartmentID string
	InterviewID  string
	Environment  model.OperatingEnvironment
	Taxonomy     model.Taxonomy
	Trace        *bool

	// Transcript service only.
	JobDescription string
	ResumeText     string
	RoleTitle      string
	Seniority      string
}

// CulturePayload builds the culture-fit request body. Optional fields are
// omitted when empty.
func CulturePayload(in Inputs) map[string]any {
	p := map[string]any{"transcript": in.Transcript}
	putString(p, "candidate_id", in.CandidateID)
	putString(p, "role_id", in.RoleID)
	putString(p, "department_id", in.DepartmentID)
	putString(p, "interview_id", in.InterviewID)
	if len(in.Environment) > 0 {
		p["operating_environment"] = in.Environment
	}
	if len(in.Taxonomy) > 0 {
		p["taxonomy"] = in.Taxonomy
	}
	if in.Trace != nil {
		p["trace"] = *in.Trace
	}
	return p
}

// TranscriptPayload builds the transcript service request body.
func TranscriptPayload(in Inputs) map[string]any {
	p := map[string]any{
		"transcript":      in.Transcript,
		"job_description": in.JobDescription,
		"resume_text":     in.ResumeText,
	}
	putString(p, "role_title", in.RoleTitle)
	putString(p, "seniority", in.Seniority)
	return p
}

func putString(p map[string]any, key, v string) {
	if v != "" {
		p[key] = v
	}
}

// PredictCulture calls the culture-fit service.
func (c *Client) PredictCulture(ctx context.Context, in Inputs) (map[string]any, error) {
	return c.Send(ctx, ServiceCulture, c.cultureURL, EndpointCulture, CulturePayload(in))
}

// PredictTranscript calls the transcript service.
func (c *Client) PredictTranscript(ctx context.Context, in Inputs) (map[string]any, error) {
	return c.Send(ctx, ServiceTranscript, c.transcriptURL, EndpointTranscript, TranscriptPayload(in))
}

// PredictBoth calls both services concurrently and returns their results in
// service order. A failed call is replaced by {error, fallback: true} so the
// sibling result still counts. Only when both calls fail, or dispatch itself
// breaks, is an ErrAggregation error returned.
func (c *Client) PredictBoth(ctx context.Context, in Inputs) (model.Prediction, model.Prediction, error) {
	const op = "predict.predict_both"

	var (
		culture, transcript       map[string]any
		cultureErr, transcriptErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer recoverInto(&err, ServiceCulture)
		culture, cultureErr = c.PredictCulture(gctx, in)
		return nil
	})
	g.Go(func() (err error) {
		defer recoverInto(&err, ServiceTranscript)
		transcript, transcriptErr = c.PredictTranscript(gctx, in)
		return nil
	})
	if err := g.Wait(); err != nil {
		c.logger.Error(ctx, "prediction dispatch failed", logger.Error(err))
		return nil, nil, kind.Wrap(op, ErrAggregation, err)
	}

	if cultureErr != nil && transcriptErr != nil {
		err := errors.Join(cultureErr, transcriptErr)
		c.logger.Error(ctx, "both prediction services failed", logger.Error(err))
		return nil, nil, kind.Wrap(op, ErrAggregation, err)
	}

	return c.settle(ctx, ServiceCulture, culture, cultureErr),
		c.settle(ctx, ServiceTranscript, transcript, transcriptErr),
		nil
}

// settle replaces a failed or non-object result with a fallback marker.
func (c *Client) settle(ctx context.Context, service string, res map[string]any, err error) model.Prediction {
	switch {
	case err != nil:
		c.logger.Error(ctx, "prediction service failed", logger.String("service", service), logger.Error(err))
		metrics.RecordPredictionFallback(service)
		return model.Prediction{"error": err.Error(), "fallback": true}
	case res == nil:
		c.logger.Error(ctx, "prediction service returned a non-object", logger.String("service", service))
		metrics.RecordPredictionFallback(service)
		return model.Prediction{"error": invalidResponseType, "fallback": true}
	default:
		return res
	}
}

func recoverInto(err *error, service string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s dispatch panicked: %v", service, r)
	}
}
