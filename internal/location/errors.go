package location

import (
	"errors"

	"github.com/rotisserie/eris"
)

// ErrLocationUnavailable matches every *Error via errors.Is.
var ErrLocationUnavailable = eris.New("location unavailable")

// Kind classifies why a location could not be obtained.
type Kind int

// Location failure kinds.
const (
	KindUnknown Kind = iota
	KindPermissionDenied
	KindTimeout
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission_denied"
	case KindTimeout:
		return "timeout"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Message is the user-facing text for the kind.
func (k Kind) Message() string {
	switch k {
	case KindPermissionDenied:
		return "Location access denied. Please enable location access and try again."
	case KindTimeout:
		return "Location request timed out. Please try again."
	case KindUnsupported:
		return "Geolocation is not supported by this location provider"
	default:
		return "Unable to get your location"
	}
}

// Error is a failed location request.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Message()
	}
	return e.Kind.Message() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports true for ErrLocationUnavailable.
func (e *Error) Is(target error) bool {
	return target == ErrLocationUnavailable
}

// KindOf returns the kind of a location error, or KindUnknown when err does
// not wrap an *Error.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
