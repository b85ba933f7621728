// Package kind attaches an operation name and a sentinel error kind to errors
// so callers can branch with errors.Is without parsing messages.
package kind

import (
	"errors"
	"strings"
)

// Error carries the failing operation, its sentinel kind, and the cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

// New returns an error of the given kind with no underlying cause.
func New(op string, k error) error {
	return &Error{Op: op, Kind: k}
}

// Wrap returns err tagged with op and kind. A nil err yields a kind-only error.
func Wrap(op string, k, err error) error {
	return &Error{Op: op, Kind: k, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		if e.Kind != nil {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Of returns the outermost kind attached to err, or nil.
func Of(err error) error {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return nil
}

// Message returns the innermost cause message, falling back to the kind.
// Useful for caller-facing text that should not leak op prefixes.
func Message(err error) string {
	var ke *Error
	if !errors.As(err, &ke) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	if ke.Err != nil {
		return Message(ke.Err)
	}
	if ke.Kind != nil {
		return ke.Kind.Error()
	}
	return ke.Error()
}
