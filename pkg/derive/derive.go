// Package derive walks the type-definition IR of a declaration group and
// produces one shape builder per definition, wiring self-references through
// the group and external references through their already-derived builders.
package derive

import (
	"fmt"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
	shapeDigestErrors "github.com/vphpersson/shape_digest/pkg/errors"
	"github.com/vphpersson/shape_digest/pkg/types/context"
	"github.com/vphpersson/shape_digest/pkg/types/shape"
	"github.com/vphpersson/shape_digest/pkg/types/typeexpr"
)

// Mode selects whether the definitions passed to Derive may reference each
// other. Nonrecursive derivation sees no local names, so references to sibling
// definitions become external lookups.
type Mode int

const (
	Recursive Mode = iota
	Nonrecursive
)

type config struct {
	opaque      *shape.Uuid
	provisional *shape.Uuid
}

type Option func(*config)

// WithOpaque discards the derived body and pins the type's compatibility
// identity to the given token instead of its structure. Only valid on a
// single, non-grouped definition.
func WithOpaque(token shape.Uuid) Option {
	return func(c *config) {
		c.opaque = &token
	}
}

// WithProvisionalIdentity wraps the derived body in an identity annotation,
// decoupling compatibility comparison from structural comparison for that
// definition. Only valid on a single, non-grouped definition.
func WithProvisionalIdentity(token shape.Uuid) Option {
	return func(c *config) {
		c.provisional = &token
	}
}

// Derive produces one shape builder per definition, in input order. The whole
// group is abandoned on the first error.
func Derive(env *context.Env, mode Mode, defs []typeexpr.TypeDef, opts ...Option) ([]*shape.Builder, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var location typeexpr.Location
	if len(defs) > 0 {
		location = defs[0].Location
	}

	if cfg.opaque != nil && cfg.provisional != nil {
		return nil, newError(
			shapeDigestErrors.ErrConflictingDirectives, location,
			"opaque and provisional identity requested together",
		)
	}
	if (cfg.opaque != nil || cfg.provisional != nil) && len(defs) != 1 {
		return nil, newError(
			shapeDigestErrors.ErrConflictingDirectives, location,
			"identity directive on a group of %d definitions", len(defs),
		)
	}

	if cfg.opaque != nil {
		return deriveOpaque(env, defs[0], *cfg.opaque)
	}

	ctx := context.New(env)
	if mode == Recursive {
		for _, def := range defs {
			ctx.AddLocal(def.Name, len(def.Params))
		}
	}

	seen := map[string]struct{}{}
	d := &deriver{ctx: ctx}
	members := make([]shape.Member, 0, len(defs))
	for _, def := range defs {
		if _, ok := seen[def.Name]; ok {
			return nil, newError(shapeDigestErrors.ErrDuplicateName, def.Location, "type %q declared twice", def.Name)
		}
		seen[def.Name] = struct{}{}

		body, err := d.deriveDef(def)
		if err != nil {
			return nil, err
		}
		if cfg.provisional != nil {
			body = shape.Annotated{Uuid: *cfg.provisional, Shape: body}
		}

		members = append(members, shape.Member{TypeID: def.Name, Params: def.Params, Body: body})
	}

	group, err := shape.NewGroup(members)
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("new group: %w", err), members)
	}

	builders := make([]*shape.Builder, len(defs))
	for i, def := range defs {
		typeID := def.Name
		builders[i] = shape.NewBuilder(typeID, len(def.Params), func(args []shape.Shape) shape.Shape {
			return shape.TopApp{Group: group, TypeID: typeID, Args: args}
		})
	}

	return builders, nil
}

// DeriveSingle derives one non-grouped definition. Self-references still tie
// through a single-member group.
func DeriveSingle(env *context.Env, def typeexpr.TypeDef, opts ...Option) (*shape.Builder, error) {
	builders, err := Derive(env, Recursive, []typeexpr.TypeDef{def}, opts...)
	if err != nil {
		return nil, err
	}

	return builders[0], nil
}

// DeriveExpr derives the shape of an arbitrary type expression outside any
// declaration context. Free type variables are permitted and keep their names.
func DeriveExpr(env *context.Env, expr typeexpr.TypeExpr) (shape.Shape, error) {
	d := &deriver{ctx: context.New(env), allowFree: true}
	return d.deriveExpr(expr, map[string]struct{}{})
}

// deriveOpaque validates the definition body, then discards it: the builder
// passes the type's own arguments through into an Opaque shape pinned to the
// token.
func deriveOpaque(env *context.Env, def typeexpr.TypeDef, token shape.Uuid) ([]*shape.Builder, error) {
	d := &deriver{ctx: context.New(env)}
	if _, err := d.deriveDef(def); err != nil {
		return nil, err
	}

	return []*shape.Builder{shape.NewOpaqueBuilder(def.Name, token, len(def.Params))}, nil
}

type deriver struct {
	ctx       *context.Context
	allowFree bool
}

func (d *deriver) deriveDef(def typeexpr.TypeDef) (shape.Shape, error) {
	bound := make(map[string]struct{}, len(def.Params))
	for _, param := range def.Params {
		bound[param] = struct{}{}
	}

	switch kind := def.Kind.(type) {
	case typeexpr.RecordKind:
		return d.deriveRecord(kind.Fields, bound)
	case typeexpr.VariantKind:
		return d.deriveVariant(kind.Constructors, bound)
	case typeexpr.AliasKind:
		return d.deriveExpr(kind.Type, bound)
	case typeexpr.AbstractKind:
		// A type with no body and no alias target has no declared
		// representation; its canonical encoding is the uninhabited variant.
		return shape.Variant{}, nil
	case typeexpr.OpenKind:
		return nil, newError(shapeDigestErrors.ErrUnsupportedOpenType, def.Location, "type %q is extensible", def.Name)
	default:
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("unhandled definition kind %T", def.Kind), def)
	}
}

func (d *deriver) deriveRecord(fields []typeexpr.Field, bound map[string]struct{}) (shape.Shape, error) {
	seen := map[string]struct{}{}
	shapeFields := make([]shape.Field, 0, len(fields))
	for _, field := range fields {
		if _, ok := seen[field.Name]; ok {
			return nil, newError(shapeDigestErrors.ErrDuplicateName, field.Location, "record field %q", field.Name)
		}
		seen[field.Name] = struct{}{}

		fieldShape, err := d.deriveExpr(field.Type, bound)
		if err != nil {
			return nil, err
		}
		shapeFields = append(shapeFields, shape.Field{Name: field.Name, Shape: fieldShape})
	}

	record, err := shape.NewRecord(shapeFields)
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("new record: %w", err), shapeFields)
	}

	return record, nil
}

func (d *deriver) deriveVariant(constructors []typeexpr.Constructor, bound map[string]struct{}) (shape.Shape, error) {
	seen := map[string]struct{}{}
	shapeConstructors := make([]shape.Constructor, 0, len(constructors))
	for _, constructor := range constructors {
		if _, ok := seen[constructor.Name]; ok {
			return nil, newError(
				shapeDigestErrors.ErrDuplicateName, constructor.Location,
				"variant constructor %q", constructor.Name,
			)
		}
		seen[constructor.Name] = struct{}{}

		var args []shape.Shape
		if constructor.Record != nil {
			// Inline record-style constructor arguments become a single
			// Record argument.
			record, err := d.deriveRecord(constructor.Record, bound)
			if err != nil {
				return nil, err
			}
			args = []shape.Shape{record}
		} else {
			args = make([]shape.Shape, 0, len(constructor.Args))
			for _, arg := range constructor.Args {
				argShape, err := d.deriveExpr(arg, bound)
				if err != nil {
					return nil, err
				}
				args = append(args, argShape)
			}
		}

		shapeConstructors = append(shapeConstructors, shape.Constructor{Name: constructor.Name, Args: args})
	}

	variant, err := shape.NewVariant(shapeConstructors)
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("new variant: %w", err), shapeConstructors)
	}

	return variant, nil
}

func (d *deriver) deriveExpr(expr typeexpr.TypeExpr, bound map[string]struct{}) (shape.Shape, error) {
	switch node := expr.(type) {
	case typeexpr.Apply:
		args := make([]shape.Shape, 0, len(node.Args))
		for _, arg := range node.Args {
			argShape, err := d.deriveExpr(arg, bound)
			if err != nil {
				return nil, err
			}
			args = append(args, argShape)
		}

		if d.ctx.Local(node.Name) {
			arity, _ := d.ctx.LocalArity(node.Name)
			if arity != len(args) {
				return nil, newError(
					shapeDigestErrors.ErrArityMismatch, node.Location,
					"%q expects %d arguments, got %d", node.Name, arity, len(args),
				)
			}
			return shape.RecApp{TypeID: node.Name, Args: args}, nil
		}

		builder, ok := d.ctx.Lookup(node.Name)
		if !ok {
			return nil, newError(
				shapeDigestErrors.ErrUnboundExternalReference, node.Location,
				"no shape builder for %q", node.Name,
			)
		}
		if builder.Arity() != len(args) {
			return nil, newError(
				shapeDigestErrors.ErrArityMismatch, node.Location,
				"%q expects %d arguments, got %d", node.Name, builder.Arity(), len(args),
			)
		}
		return shape.ExternalApp{Builder: builder, Args: args}, nil

	case typeexpr.Var:
		if _, ok := bound[node.Name]; !ok && !d.allowFree {
			return nil, newError(
				shapeDigestErrors.ErrUnboundFreeVariable, node.Location,
				"unexpected free type variable %q", node.Name,
			)
		}
		return shape.Var{ID: node.Name}, nil

	case typeexpr.Tuple:
		items := make([]shape.Shape, 0, len(node.Items))
		for _, item := range node.Items {
			itemShape, err := d.deriveExpr(item, bound)
			if err != nil {
				return nil, err
			}
			items = append(items, itemShape)
		}
		return shape.Tuple{Items: items}, nil

	case typeexpr.PolyVariant:
		rows := make([]shape.Row, 0, len(node.Rows))
		for _, row := range node.Rows {
			switch row := row.(type) {
			case typeexpr.TagRow:
				if row.Conjunctive {
					return nil, newError(
						shapeDigestErrors.ErrUnsupportedTypeForm, row.Location,
						"conjunctive row tag %q", row.Name,
					)
				}
				var payload shape.Shape
				if row.Payload != nil {
					payloadShape, err := d.deriveExpr(row.Payload, bound)
					if err != nil {
						return nil, err
					}
					payload = payloadShape
				}
				rows = append(rows, shape.Tag{Name: row.Name, Payload: payload})
			case typeexpr.InheritRow:
				inherited, err := d.deriveExpr(row.Type, bound)
				if err != nil {
					return nil, err
				}
				rows = append(rows, shape.Inherit{Shape: inherited})
			default:
				return nil, motmedelErrors.NewWithTrace(fmt.Errorf("unhandled row kind %T", row), row)
			}
		}
		return shape.PolyVariant{Rows: rows}, nil

	case typeexpr.Unsupported:
		return nil, newError(
			shapeDigestErrors.ErrUnsupportedTypeForm, node.Location,
			"%s type", node.Form,
		)

	default:
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("unhandled type expression %T", expr), expr)
	}
}
