// Package error defines domain-specific errors for the bookkeeping engine.
package error

import "errors"

// Error kinds shared by every area. Area sentinels match one of these
// through errors.Is so callers can branch on the kind alone.
var (
	// ErrValidation is the kind for malformed input rejected before any work.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is the kind for references that do not resolve.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguousMatch is the kind for rule sets whose order is undefined.
	ErrAmbiguousMatch = errors.New("ambiguous match")
)

// kindError is a sentinel that also matches its kind.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

func newKindError(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

// Kind returns the kind sentinel err belongs to, or nil for infrastructure errors.
func Kind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation):
		return ErrValidation
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrAmbiguousMatch):
		return ErrAmbiguousMatch
	default:
		return nil
	}
}
