// Package typeexpr is the normalized type-definition IR consumed by the
// derivation engine. A front-end (out of scope here) is expected to translate
// source type declarations into these values; the engine never sees source
// text.
package typeexpr

// Location is an opaque source-location token supplied by the front-end. It is
// carried through into derivation errors unchanged.
type Location string

// TypeExpr is a type expression occurring in a definition body.
type TypeExpr interface {
	Loc() Location
	isTypeExpr()
}

// Apply is the application of a named type to zero or more arguments,
// e.g. "int" or "map(string, v)".
type Apply struct {
	Name     string
	Args     []TypeExpr
	Location Location
}

// Var is a reference to a type variable.
type Var struct {
	Name     string
	Location Location
}

// Tuple is an anonymous product of two or more types.
type Tuple struct {
	Items    []TypeExpr
	Location Location
}

// PolyVariant is a polymorphic-variant row type.
type PolyVariant struct {
	Rows     []Row
	Location Location
}

// Form identifies a host-language construct that the shape system does not
// define an encoding for. The front-end normalizes all such constructs into a
// single Unsupported node tagged with the offending form.
type Form int

const (
	FormFunction Form = iota
	FormObject
	FormClass
	FormExtension
	FormPolyMethod
)

func (f Form) String() string {
	switch f {
	case FormFunction:
		return "function"
	case FormObject:
		return "object"
	case FormClass:
		return "class"
	case FormExtension:
		return "extension"
	case FormPolyMethod:
		return "polymorphic method"
	default:
		return "unknown"
	}
}

// Unsupported is a type expression the shape system rejects by construction.
type Unsupported struct {
	Form     Form
	Location Location
}

func (a Apply) Loc() Location       { return a.Location }
func (v Var) Loc() Location         { return v.Location }
func (t Tuple) Loc() Location       { return t.Location }
func (p PolyVariant) Loc() Location { return p.Location }
func (u Unsupported) Loc() Location { return u.Location }

func (Apply) isTypeExpr()       {}
func (Var) isTypeExpr()         {}
func (Tuple) isTypeExpr()       {}
func (PolyVariant) isTypeExpr() {}
func (Unsupported) isTypeExpr() {}

// Row is a single row of a polymorphic variant.
type Row interface {
	isRow()
}

// TagRow is a row tag with an optional payload. Conjunctive marks a tag that
// both carries a payload and inherits structure ("&"); such rows are rejected
// during derivation.
type TagRow struct {
	Name        string
	Payload     TypeExpr // nil when the tag carries no payload
	Conjunctive bool
	Location    Location
}

// InheritRow inherits the rows of another polymorphic-variant type.
type InheritRow struct {
	Type     TypeExpr
	Location Location
}

func (TagRow) isRow()     {}
func (InheritRow) isRow() {}

// Kind is the body of a type definition.
type Kind interface {
	isKind()
}

// RecordKind defines a record type with ordered fields.
type RecordKind struct {
	Fields []Field
}

// VariantKind defines a variant type with ordered constructors.
type VariantKind struct {
	Constructors []Constructor
}

// AliasKind defines a transparent alias for another type expression.
type AliasKind struct {
	Type TypeExpr
}

// AbstractKind defines a type with no body and no alias target.
type AbstractKind struct{}

// OpenKind defines an extensible type. Always rejected.
type OpenKind struct{}

func (RecordKind) isKind()   {}
func (VariantKind) isKind()  {}
func (AliasKind) isKind()    {}
func (AbstractKind) isKind() {}
func (OpenKind) isKind()     {}

// Field is a named record field.
type Field struct {
	Name     string
	Type     TypeExpr
	Location Location
}

// Constructor is a variant constructor. Args holds positional arguments;
// Record, when non-nil, holds inline record-style arguments instead. The two
// are mutually exclusive.
type Constructor struct {
	Name     string
	Args     []TypeExpr
	Record   []Field
	Location Location
}

// TypeDef is one type declaration, possibly a member of a mutually recursive
// declaration group.
type TypeDef struct {
	Name     string
	Params   []string
	Kind     Kind
	Location Location
}
