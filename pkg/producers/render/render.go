// Package render produces a stable, human-readable textual form of a shape,
// for diagnostics and tests. It has no digest semantics: recursive groups are
// shown as a "rec ... in ..." binding with member bodies rendered once.
package render

import (
	"fmt"
	"strings"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"

	"github.com/vphpersson/shape_digest/pkg/types/shape"
)

// Convert renders a shape.
func Convert(s shape.Shape) (string, error) {
	r := &renderer{inProgress: map[*shape.Group]struct{}{}}
	output, err := r.render(s)
	if err != nil {
		return "", motmedelErrors.New(fmt.Errorf("render: %w", err), s)
	}

	return output, nil
}

type renderer struct {
	inProgress map[*shape.Group]struct{}
}

func (r *renderer) render(s shape.Shape) (string, error) {
	switch node := s.(type) {
	case shape.Var:
		return "'" + node.ID, nil

	case shape.RecApp:
		return r.renderApplication(node.TypeID, node.Args)

	case shape.TopApp:
		if _, ok := r.inProgress[node.Group]; ok {
			return r.renderApplication(node.TypeID, node.Args)
		}

		r.inProgress[node.Group] = struct{}{}
		defer delete(r.inProgress, node.Group)

		memberStrings := make([]string, 0, node.Group.Len())
		for _, member := range node.Group.Members() {
			body, err := r.render(member.Body)
			if err != nil {
				return "", err
			}
			header := member.TypeID
			for _, param := range member.Params {
				header += " '" + param
			}
			memberStrings = append(memberStrings, header+" = "+body)
		}

		application, err := r.renderApplication(node.TypeID, node.Args)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("(rec %s in %s)", strings.Join(memberStrings, " and "), application), nil

	case shape.ExternalApp:
		resolved, err := node.Builder.Apply(node.Args...)
		if err != nil {
			return "", fmt.Errorf("apply %q: %w", node.Builder.Name(), err)
		}
		return r.render(resolved)

	case shape.Tuple:
		items, err := r.renderAll(node.Items)
		if err != nil {
			return "", err
		}
		return "(" + strings.Join(items, " * ") + ")", nil

	case shape.Record:
		fieldStrings := make([]string, 0, len(node.Fields))
		for _, field := range node.Fields {
			fieldString, err := r.render(field.Shape)
			if err != nil {
				return "", err
			}
			fieldStrings = append(fieldStrings, field.Name+" : "+fieldString)
		}
		return "{ " + strings.Join(fieldStrings, "; ") + " }", nil

	case shape.Variant:
		if len(node.Constructors) == 0 {
			return "[]", nil
		}
		constructorStrings := make([]string, 0, len(node.Constructors))
		for _, constructor := range node.Constructors {
			constructorString := constructor.Name
			if len(constructor.Args) > 0 {
				args, err := r.renderAll(constructor.Args)
				if err != nil {
					return "", err
				}
				constructorString += " of " + strings.Join(args, " * ")
			}
			constructorStrings = append(constructorStrings, constructorString)
		}
		return "[ " + strings.Join(constructorStrings, " | ") + " ]", nil

	case shape.PolyVariant:
		rowStrings := make([]string, 0, len(node.Rows))
		for _, row := range node.Rows {
			switch row := row.(type) {
			case shape.Tag:
				rowString := "`" + row.Name
				if row.Payload != nil {
					payload, err := r.render(row.Payload)
					if err != nil {
						return "", err
					}
					rowString += " of " + payload
				}
				rowStrings = append(rowStrings, rowString)
			case shape.Inherit:
				inherited, err := r.render(row.Shape)
				if err != nil {
					return "", err
				}
				rowStrings = append(rowStrings, "inherit "+inherited)
			default:
				return "", fmt.Errorf("unhandled row kind %T", row)
			}
		}
		return "[> " + strings.Join(rowStrings, " | ") + " ]", nil

	case shape.Opaque:
		return r.renderApplication(string(node.Uuid), node.Args)

	case shape.Annotated:
		inner, err := r.render(node.Shape)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("#%s(%s)", node.Uuid, inner), nil

	default:
		return "", fmt.Errorf("unhandled shape kind %T", s)
	}
}

func (r *renderer) renderAll(shapes []shape.Shape) ([]string, error) {
	strs := make([]string, 0, len(shapes))
	for _, s := range shapes {
		str, err := r.render(s)
		if err != nil {
			return nil, err
		}
		strs = append(strs, str)
	}

	return strs, nil
}

func (r *renderer) renderApplication(name string, args []shape.Shape) (string, error) {
	if len(args) == 0 {
		return name, nil
	}
	argStrings, err := r.renderAll(args)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s(%s)", name, strings.Join(argStrings, ", ")), nil
}
