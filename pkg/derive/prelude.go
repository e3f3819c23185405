package derive

import (
	"github.com/vphpersson/shape_digest/pkg/types/context"
	"github.com/vphpersson/shape_digest/pkg/types/shape"
)

// BaseEnv returns an environment preloaded with builders for the conventional
// wire basetypes. Each one is an Opaque pinned to its conventional identity
// token: its wire format is fixed by convention, not derivable structure.
func BaseEnv() *context.Env {
	env := context.NewEnv()
	for _, basetype := range []struct {
		name  string
		arity int
	}{
		{"unit", 0},
		{"bool", 0},
		{"char", 0},
		{"int", 0},
		{"int32", 0},
		{"int64", 0},
		{"nativeint", 0},
		{"float", 0},
		{"string", 0},
		{"bytes", 0},
		{"option", 1},
		{"list", 1},
		{"array", 1},
		{"ref", 1},
		{"lazy", 1},
	} {
		env.Register(shape.NewOpaqueBuilder(basetype.name, shape.Uuid(basetype.name), basetype.arity))
	}

	return env
}
