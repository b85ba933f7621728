// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSegment reports a transcript segment missing speaker or content.
var ErrSegment = errors.New("transcript segment requires speaker and content")

// TranscriptSegment is one utterance; transcript order is chronological.
type TranscriptSegment struct {
	Speaker string `json:"speaker"`
	Content string `json:"content"`
}

// UnmarshalJSON rejects segments whose speaker or content is absent or null.
func (s *TranscriptSegment) UnmarshalJSON(b []byte) error {
	var aux struct {
		Speaker *string `json:"speaker"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return fmt.Errorf("%w: %w", ErrSegment, err)
	}
	if aux.Speaker == nil || aux.Content == nil {
		return ErrSegment
	}
	s.Speaker, s.Content = *aux.Speaker, *aux.Content
	return nil
}

// ScoringRequest is the input to one scoring run.
//
// OperatingEnvironment and Taxonomy are either both supplied or both omitted;
// when omitted they are resolved from the organisation identified by OrgID,
// RoleID, or ApplicationID.
type ScoringRequest struct {
	InterviewID string              `json:"interview_id,omitempty"`
	Transcript  []TranscriptSegment `json:"transcript" validate:"required,min=1"`

	// Rubric maps dimension name to weight. Values are kept as decoded so
	// non-numeric weights can fall back to the default.
	Rubric map[string]any `json:"rubric,omitempty"`

	JobDescription string `json:"job_description,omitempty"`
	ResumeText     string `json:"resume_text,omitempty"`
	RoleTitle      string `json:"role_title,omitempty"`
	Seniority      string `json:"seniority,omitempty"`

	OperatingEnvironment OperatingEnvironment `json:"operating_environment,omitempty"`
	Taxonomy             Taxonomy             `json:"taxonomy,omitempty"`

	OrgID         string `json:"org_id,omitempty"`
	RoleID        string `json:"role_id,omitempty"`
	DepartmentID  string `json:"department_id,omitempty"`
	ApplicationID string `json:"application_id,omitempty"`
	CandidateID   string `json:"candidate_id,omitempty"`

	// Trace is forwarded to the culture-fit service only when set.
	Trace *bool `json:"trace,omitempty"`
}

// HasExplicitContext reports whether both context parts were supplied.
func (r *ScoringRequest) HasExplicitContext() bool {
	return r.OperatingEnvironment != nil && r.Taxonomy != nil
}

// HasPartialContext reports whether exactly one context part was supplied.
func (r *ScoringRequest) HasPartialContext() bool {
	return (r.OperatingEnvironment != nil) != (r.Taxonomy != nil)
}
