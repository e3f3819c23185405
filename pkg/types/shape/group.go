package shape

import (
	"fmt"
	"sync"

	shapeDigestErrors "github.com/vphpersson/shape_digest/pkg/errors"
)

// Member is one type definition belonging to a Group: its name, its declared
// parameters in order, and its derived body.
type Member struct {
	TypeID string
	Params []string
	Body   Shape
}

// Group is an ordered, immutable collection of mutually recursive type
// definitions sharing a scope. RecApp nodes inside any member's body resolve
// against this same Group, so cyclic definitions terminate structurally. A
// Group is never mutated after construction and is safe for concurrent reads.
type Group struct {
	members []Member
	index   map[string]int

	canonicalOnce  sync.Once
	canonicalValue any
	canonicalErr   error
}

// NewGroup builds a Group and checks its well-formedness: member names must be
// unique, every RecApp in a member body must name a group member with a
// matching argument count, and every Var must be bound by its member's
// parameter list.
func NewGroup(members []Member) (*Group, error) {
	group := &Group{
		members: members,
		index:   make(map[string]int, len(members)),
	}
	for i, member := range members {
		if _, ok := group.index[member.TypeID]; ok {
			return nil, fmt.Errorf("%w: group member %q", shapeDigestErrors.ErrDuplicateName, member.TypeID)
		}
		group.index[member.TypeID] = i
	}

	for _, member := range members {
		bound := make(map[string]struct{}, len(member.Params))
		for _, param := range member.Params {
			bound[param] = struct{}{}
		}
		if err := group.checkBody(member.Body, bound); err != nil {
			return nil, fmt.Errorf("group member %q: %w", member.TypeID, err)
		}
	}

	return group, nil
}

func (g *Group) checkBody(s Shape, bound map[string]struct{}) error {
	switch node := s.(type) {
	case Var:
		if _, ok := bound[node.ID]; !ok {
			return fmt.Errorf("%w: %q", shapeDigestErrors.ErrUnboundFreeVariable, node.ID)
		}
	case RecApp:
		i, ok := g.index[node.TypeID]
		if !ok {
			return fmt.Errorf("%w: %q is not a member of its group", shapeDigestErrors.ErrUnboundExternalReference, node.TypeID)
		}
		if want := len(g.members[i].Params); want != len(node.Args) {
			return fmt.Errorf(
				"%w: %q expects %d arguments, got %d",
				shapeDigestErrors.ErrArityMismatch, node.TypeID, want, len(node.Args),
			)
		}
		for _, arg := range node.Args {
			if err := g.checkBody(arg, bound); err != nil {
				return err
			}
		}
	case TopApp:
		for _, arg := range node.Args {
			if err := g.checkBody(arg, bound); err != nil {
				return err
			}
		}
	case ExternalApp:
		for _, arg := range node.Args {
			if err := g.checkBody(arg, bound); err != nil {
				return err
			}
		}
	case Tuple:
		for _, item := range node.Items {
			if err := g.checkBody(item, bound); err != nil {
				return err
			}
		}
	case Record:
		for _, field := range node.Fields {
			if err := g.checkBody(field.Shape, bound); err != nil {
				return err
			}
		}
	case Variant:
		for _, constructor := range node.Constructors {
			for _, arg := range constructor.Args {
				if err := g.checkBody(arg, bound); err != nil {
					return err
				}
			}
		}
	case PolyVariant:
		for _, row := range node.Rows {
			switch row := row.(type) {
			case Tag:
				if row.Payload != nil {
					if err := g.checkBody(row.Payload, bound); err != nil {
						return err
					}
				}
			case Inherit:
				if err := g.checkBody(row.Shape, bound); err != nil {
					return err
				}
			}
		}
	case Opaque:
		for _, arg := range node.Args {
			if err := g.checkBody(arg, bound); err != nil {
				return err
			}
		}
	case Annotated:
		return g.checkBody(node.Shape, bound)
	}

	return nil
}

// Members returns the group's members in declaration order. The returned slice
// must not be modified.
func (g *Group) Members() []Member {
	return g.members
}

// MemberIndex returns the position of the named member within the group.
func (g *Group) MemberIndex(typeID string) (int, bool) {
	i, ok := g.index[typeID]
	return i, ok
}

// Len returns the number of members.
func (g *Group) Len() int {
	return len(g.members)
}

// MemoizeCanonical runs compute on the group's first use and returns the
// memoized result on every call after that. The memo lives on the group, so
// it is reclaimed with it, and first access is safe from multiple goroutines.
func (g *Group) MemoizeCanonical(compute func() (any, error)) (any, error) {
	g.canonicalOnce.Do(func() {
		g.canonicalValue, g.canonicalErr = compute()
	})

	return g.canonicalValue, g.canonicalErr
}
