package derive

import (
	"fmt"

	"github.com/vphpersson/shape_digest/pkg/types/typeexpr"
)

// Error is a derivation failure: the taxonomy sentinel it belongs to, the
// source-location token of the offending definition, and a human-readable
// detail. Matches with errors.Is against the pkg/errors sentinels.
type Error struct {
	Kind     error
	Location typeexpr.Location
	Detail   string
}

func (e *Error) Error() string {
	message := e.Kind.Error()
	if e.Detail != "" {
		message += ": " + e.Detail
	}
	if e.Location != "" {
		message += fmt.Sprintf(" (at %s)", e.Location)
	}

	return message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, location typeexpr.Location, format string, args ...any) *Error {
	return &Error{Kind: kind, Location: location, Detail: fmt.Sprintf(format, args...)}
}
