// Package shape holds the canonical structural descriptor of a type: an
// immutable tree of nodes, plus the Group and Builder values that tie
// recursive definitions together without infinite unfolding.
package shape

import (
	"fmt"

	shapeDigestErrors "github.com/vphpersson/shape_digest/pkg/errors"
)

// Shape is one node of a structural type descriptor. Shapes are immutable
// after construction and safe for concurrent reads.
type Shape interface {
	isShape()
}

// Var is a reference to a bound type parameter, identified by its name within
// the declaring scope.
type Var struct {
	ID string
}

// RecApp is a reference to a type defined in the same recursive group. It is
// resolved lazily against the enclosing Group, which is how cyclic definitions
// terminate structurally instead of unfolding forever.
type RecApp struct {
	TypeID string
	Args   []Shape
}

// TopApp is a reference to a type resolved through a specific Group: the
// type's own top-level definition, or a cross-group reference once the
// referenced group is fully built.
type TopApp struct {
	Group  *Group
	TypeID string
	Args   []Shape
}

// ExternalApp applies an independently derived Builder (a type not in the
// current group) to the shapes of the supplied arguments.
type ExternalApp struct {
	Builder *Builder
	Args    []Shape
}

// Tuple is an ordered anonymous product.
type Tuple struct {
	Items []Shape
}

// Field is a named record member.
type Field struct {
	Name  string
	Shape Shape
}

// Record is an ordered sequence of named fields. Field order is significant
// and preserved.
type Record struct {
	Fields []Field
}

// Constructor is a named variant constructor with ordered arguments. A
// constructor declared with record-style arguments holds a single Record
// argument.
type Constructor struct {
	Name string
	Args []Shape
}

// Variant is an ordered sequence of named constructors.
type Variant struct {
	Constructors []Constructor
}

// Row is a single row of a PolyVariant: either a Tag or an Inherit.
type Row interface {
	isRow()
}

// Tag is a polymorphic-variant row tag with an optional payload.
type Tag struct {
	Name    string
	Payload Shape // nil when the tag carries no payload
}

// Inherit is row inheritance from another polymorphic-variant shape.
type Inherit struct {
	Shape Shape
}

func (Tag) isRow()     {}
func (Inherit) isRow() {}

// PolyVariant is an ordered sequence of rows.
type PolyVariant struct {
	Rows []Row
}

// Opaque is a basetype escape: the type's wire compatibility is pinned to an
// external identity token rather than to any derivable structure.
type Opaque struct {
	Uuid Uuid
	Args []Shape
}

// Annotated wraps a shape with a provisional identity token. Digesting uses
// only the token, so two structurally different definitions pinned to the same
// token compare as compatible.
type Annotated struct {
	Uuid  Uuid
	Shape Shape
}

func (Var) isShape()         {}
func (RecApp) isShape()      {}
func (TopApp) isShape()      {}
func (ExternalApp) isShape() {}
func (Tuple) isShape()       {}
func (Record) isShape()      {}
func (Variant) isShape()     {}
func (PolyVariant) isShape() {}
func (Opaque) isShape()      {}
func (Annotated) isShape()   {}

// NewRecord builds a Record, rejecting duplicate field names.
func NewRecord(fields []Field) (Record, error) {
	seen := map[string]struct{}{}
	for _, field := range fields {
		if _, ok := seen[field.Name]; ok {
			return Record{}, fmt.Errorf("%w: record field %q", shapeDigestErrors.ErrDuplicateName, field.Name)
		}
		seen[field.Name] = struct{}{}
	}

	return Record{Fields: fields}, nil
}

// NewVariant builds a Variant, rejecting duplicate constructor names.
func NewVariant(constructors []Constructor) (Variant, error) {
	seen := map[string]struct{}{}
	for _, constructor := range constructors {
		if _, ok := seen[constructor.Name]; ok {
			return Variant{}, fmt.Errorf("%w: variant constructor %q", shapeDigestErrors.ErrDuplicateName, constructor.Name)
		}
		seen[constructor.Name] = struct{}{}
	}

	return Variant{Constructors: constructors}, nil
}
