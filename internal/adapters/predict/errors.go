package predict

import (
	"errors"
	"fmt"
)

// ErrAggregation is returned by PredictBoth when the fan-out as a whole
// failed: both services failed or the dispatch itself broke.
var ErrAggregation = errors.New("prediction fan-out failed")

// ErrorKind classifies a TransportError.
type ErrorKind string

// Transport error kinds.
const (
	KindPrecondition ErrorKind = "precondition"
	KindStatus       ErrorKind = "status"
	KindConnection   ErrorKind = "connection"
	KindMalformed    ErrorKind = "malformed"
)

// TransportError is the failure side of a prediction call.
type TransportError struct {
	Kind       ErrorKind
	Service    string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("model service returned error: %d", e.StatusCode)
	case KindConnection:
		return fmt.Sprintf("failed to connect to model service: %v", e.Err)
	case KindMalformed:
		return fmt.Sprintf("model service returned %v", e.Err)
	default:
		return fmt.Sprintf("model service request rejected: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may succeed.
func (e *TransportError) Retryable() bool {
	return e.Kind == KindStatus || e.Kind == KindConnection
}

var (
	errInvalidJSON  = errors.New("invalid JSON")
	errInvalidShape = errors.New("invalid response shape")
)

// asTransportError normalises any error returned through the poster chain.
func asTransportError(service string, err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		if te.Service == "" {
			te.Service = service
		}
		return te
	}
	return &TransportError{Kind: KindConnection, Service: service, Err: err}
}
