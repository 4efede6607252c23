package apperror

import "errors"

// Kind classifies an error for callers that need to branch on it (HTTP status, retry, counting).
type Kind string

const (
	KindNotFound   Kind = "NOT_FOUND"
	KindValidation Kind = "VALIDATION"
	KindConflict   Kind = "CONFLICT"
	KindInternal   Kind = "INTERNAL"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
)

// Error is a domain error tagged with a Kind. Domain packages declare their
// sentinels with New and compare them with errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the kind sentinel, so errors.Is(err, ErrNotFound) matches any NotFound error.
func (e *Error) Unwrap() error {
	return kindSentinel(e.Kind)
}

func kindSentinel(k Kind) error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	default:
		return ErrInternal
	}
}

// KindOf reports the kind of err, KindInternal when err carries none.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}
