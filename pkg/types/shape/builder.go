package shape

import (
	"fmt"

	shapeDigestErrors "github.com/vphpersson/shape_digest/pkg/errors"
)

// Builder is a per-type shape builder: a pure function from one argument shape
// per declared type parameter, in declaration order, to the type's resolved
// shape. Builders are safe for concurrent use.
type Builder struct {
	name  string
	arity int
	apply func(args []Shape) Shape
}

// NewBuilder wraps an apply function with its name and declared parameter
// count.
func NewBuilder(name string, arity int, apply func(args []Shape) Shape) *Builder {
	return &Builder{name: name, arity: arity, apply: apply}
}

// NewOpaqueBuilder builds the basetype escape for an externally defined type:
// applying it yields an Opaque shape pinned to the given identity token with
// the arguments passed through unchanged.
func NewOpaqueBuilder(name string, token Uuid, arity int) *Builder {
	return NewBuilder(name, arity, func(args []Shape) Shape {
		return Opaque{Uuid: token, Args: args}
	})
}

// Name returns the type name the builder was derived for.
func (b *Builder) Name() string {
	return b.name
}

// Arity returns the declared type-parameter count.
func (b *Builder) Arity() int {
	return b.arity
}

// Apply resolves the type's shape for the given argument shapes. The argument
// count must equal the declared parameter count.
func (b *Builder) Apply(args ...Shape) (Shape, error) {
	if len(args) != b.arity {
		return nil, fmt.Errorf(
			"%w: %q expects %d arguments, got %d",
			shapeDigestErrors.ErrArityMismatch, b.name, b.arity, len(args),
		)
	}

	return b.apply(args), nil
}
