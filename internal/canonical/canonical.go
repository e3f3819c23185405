// Package canonical turns a shape tree into deterministic bytes. Bound type
// variables are renamed to their ordinal position among the enclosing type's
// declared parameters, so the bytes are invariant under alpha-renaming, and
// group-relative references are serialized as member positions instead of
// being re-expanded, so cyclic groups serialize in O(members).
package canonical

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/vphpersson/shape_digest/pkg/types/shape"
)

var (
	encodeModeOnce  sync.Once
	encodeMode      cbor.EncMode
	encodeModeError error
)

func getEncodeMode() (cbor.EncMode, error) {
	encodeModeOnce.Do(func() {
		encodeMode, encodeModeError = cbor.EncOptions{
			// Make sure that maps have ordered keys
			Sort: cbor.SortCoreDeterministic,
		}.EncMode()
	})

	return encodeMode, encodeModeError
}

// Encode returns the canonical serialization of a shape. It never fails on a
// well-formed shape; errors surface only from encoder plumbing or from shapes
// assembled by hand in violation of the group invariants.
func Encode(s shape.Shape) ([]byte, error) {
	mode, err := getEncodeMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encode mode: %w", err)
	}

	e := &encoder{inProgress: map[*shape.Group]struct{}{}}
	value, err := e.canonicalize(s, nil, nil)
	if err != nil {
		return nil, err
	}

	data, err := mode.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cbor marshal: %w", err)
	}

	return data, nil
}

type encoder struct {
	// Groups whose member list is currently being serialized. A TopApp back
	// into one of these is a recursive reference, not a fresh expansion.
	inProgress map[*shape.Group]struct{}
}

// canonicalize builds the CBOR-encodable canonical value of a shape. group is
// the enclosing group when serializing a member body (nil at the top level);
// bound maps the enclosing member's parameter names to their ordinals.
func (e *encoder) canonicalize(s shape.Shape, group *shape.Group, bound map[string]int) (any, error) {
	switch node := s.(type) {
	case shape.Var:
		if ordinal, ok := bound[node.ID]; ok {
			return []any{"var", uint64(ordinal)}, nil
		}
		// Free variables only occur in ad hoc expression shapes; they keep
		// their name since there is no binder to make them positional.
		return []any{"fvar", canonicalName(node.ID)}, nil

	case shape.RecApp:
		if group == nil {
			return nil, fmt.Errorf("recursive reference %q outside any group", node.TypeID)
		}
		index, ok := group.MemberIndex(node.TypeID)
		if !ok {
			return nil, fmt.Errorf("recursive reference %q is not a member of its group", node.TypeID)
		}
		args, err := e.canonicalizeAll(node.Args, group, bound)
		if err != nil {
			return nil, err
		}
		return []any{"rec", uint64(index), args}, nil

	case shape.TopApp:
		index, ok := node.Group.MemberIndex(node.TypeID)
		if !ok {
			return nil, fmt.Errorf("application of %q is not a member of its group", node.TypeID)
		}
		args, err := e.canonicalizeAll(node.Args, group, bound)
		if err != nil {
			return nil, err
		}
		if _, ok := e.inProgress[node.Group]; ok {
			// A reference back into a group currently being serialized ties
			// the knot the same way RecApp does.
			return []any{"rec", uint64(index), args}, nil
		}
		members, err := e.groupMembers(node.Group)
		if err != nil {
			return nil, err
		}
		return []any{"grp", members, uint64(index), args}, nil

	case shape.ExternalApp:
		resolved, err := node.Builder.Apply(node.Args...)
		if err != nil {
			return nil, fmt.Errorf("apply %q: %w", node.Builder.Name(), err)
		}
		return e.canonicalize(resolved, group, bound)

	case shape.Tuple:
		items, err := e.canonicalizeAll(node.Items, group, bound)
		if err != nil {
			return nil, err
		}
		return []any{"tuple", items}, nil

	case shape.Record:
		fields := make([]any, 0, len(node.Fields))
		for _, field := range node.Fields {
			fieldValue, err := e.canonicalize(field.Shape, group, bound)
			if err != nil {
				return nil, err
			}
			fields = append(fields, []any{canonicalName(field.Name), fieldValue})
		}
		return []any{"record", fields}, nil

	case shape.Variant:
		constructors := make([]any, 0, len(node.Constructors))
		for _, constructor := range node.Constructors {
			args, err := e.canonicalizeAll(constructor.Args, group, bound)
			if err != nil {
				return nil, err
			}
			constructors = append(constructors, []any{canonicalName(constructor.Name), args})
		}
		return []any{"variant", constructors}, nil

	case shape.PolyVariant:
		rows := make([]any, 0, len(node.Rows))
		for _, row := range node.Rows {
			switch row := row.(type) {
			case shape.Tag:
				if row.Payload == nil {
					rows = append(rows, []any{"tag", canonicalName(row.Name)})
					continue
				}
				payload, err := e.canonicalize(row.Payload, group, bound)
				if err != nil {
					return nil, err
				}
				rows = append(rows, []any{"tag", canonicalName(row.Name), payload})
			case shape.Inherit:
				inherited, err := e.canonicalize(row.Shape, group, bound)
				if err != nil {
					return nil, err
				}
				rows = append(rows, []any{"inherit", inherited})
			default:
				return nil, fmt.Errorf("unhandled row kind %T", row)
			}
		}
		return []any{"poly_variant", rows}, nil

	case shape.Opaque:
		args, err := e.canonicalizeAll(node.Args, group, bound)
		if err != nil {
			return nil, err
		}
		return []any{"opaque", string(node.Uuid), args}, nil

	case shape.Annotated:
		// Identity pinning: the token alone represents the node, so the
		// digest stays stable while the structural definition evolves.
		return []any{"annot", string(node.Uuid)}, nil

	default:
		return nil, fmt.Errorf("unhandled shape kind %T", s)
	}
}

func (e *encoder) canonicalizeAll(shapes []shape.Shape, group *shape.Group, bound map[string]int) ([]any, error) {
	values := make([]any, 0, len(shapes))
	for _, s := range shapes {
		value, err := e.canonicalize(s, group, bound)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, nil
}

// groupMembers serializes every member body of a group exactly once, each in
// the scope of its own parameters. The result depends only on the group, so it
// is memoized on the group itself and reclaimed with it.
func (e *encoder) groupMembers(group *shape.Group) ([]any, error) {
	value, err := group.MemoizeCanonical(func() (any, error) {
		e.inProgress[group] = struct{}{}
		defer delete(e.inProgress, group)

		members := make([]any, 0, group.Len())
		for _, member := range group.Members() {
			bound := make(map[string]int, len(member.Params))
			for i, param := range member.Params {
				bound[param] = i
			}
			body, err := e.canonicalize(member.Body, group, bound)
			if err != nil {
				return nil, fmt.Errorf("group member %q: %w", member.TypeID, err)
			}
			members = append(members, []any{uint64(len(member.Params)), body})
		}

		return members, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]any), nil
}

func canonicalName(name string) string {
	return norm.NFC.String(name)
}
