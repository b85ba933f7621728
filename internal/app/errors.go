package service

import (
	"errors"

	"github.com/talenti/fitscore/pkg/kind"
)

// Sentinel kinds returned by Score.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrContext      = errors.New("scoring context error")
	ErrUpstream     = errors.New("prediction services unavailable")
	ErrNoScores     = errors.New("no usable scores from prediction services")
	ErrInternal     = errors.New("internal error")
)

// Error codes exposed to callers.
const (
	CodeInvalidInput = "invalid_input"
	CodeContext      = "context_error"
	CodeUpstream     = "upstream_error"
	CodeNoScores     = "no_scores"
	CodeInternal     = "internal_error"
)

// Describe returns the caller-facing code and message for an error from
// Score. Input and context errors carry their cause; the rest use the kind
// text so upstream details stay in the logs.
func Describe(err error) (code, message string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput, kind.Message(err)
	case errors.Is(err, ErrContext):
		return CodeContext, kind.Message(err)
	case errors.Is(err, ErrUpstream):
		return CodeUpstream, ErrUpstream.Error()
	case errors.Is(err, ErrNoScores):
		return CodeNoScores, ErrNoScores.Error()
	default:
		return CodeInternal, ErrInternal.Error()
	}
}
