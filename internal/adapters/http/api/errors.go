package api

import (
	"errors"
	"net/http"

	service "github.com/talenti/fitscore/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrEmptyBody  = errors.New("request body is required")
	ErrBodySize   = errors.New("request body too large")
)

// statusFor maps a scoring error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case service.CodeInvalidInput, service.CodeContext:
		return http.StatusBadRequest
	case service.CodeUpstream, service.CodeNoScores:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
