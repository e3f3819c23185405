package errors

import (
	"errors"
)

var (
	ErrUnsupportedTypeForm      = errors.New("unsupported type form")
	ErrUnboundFreeVariable      = errors.New("unbound free type variable")
	ErrUnboundExternalReference = errors.New("unbound external type reference")
	ErrArityMismatch            = errors.New("arity mismatch")
	ErrDuplicateName            = errors.New("duplicate name")
	ErrConflictingDirectives    = errors.New("conflicting directives")
	ErrUnsupportedOpenType      = errors.New("unsupported open type")
)
