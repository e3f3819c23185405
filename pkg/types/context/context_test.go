package context_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vphpersson/shape_digest/pkg/types/context"
	"github.com/vphpersson/shape_digest/pkg/types/shape"
)

func TestEnvRegisterShadows(t *testing.T) {
	env := context.NewEnv()

	_, ok := env.Lookup("t")
	assert.False(t, ok)

	env.Register(shape.NewOpaqueBuilder("t", "first", 0))
	env.Register(shape.NewOpaqueBuilder("t", "second", 1))

	builder, ok := env.Lookup("t")
	require.True(t, ok)
	assert.Equal(t, 1, builder.Arity())
}

func TestContextLocalLookup(t *testing.T) {
	env := context.NewEnv()
	env.Register(shape.NewOpaqueBuilder("external", "external", 0))

	ctx := context.New(env)
	ctx.AddLocal("t", 2)

	assert.True(t, ctx.Local("t"))
	assert.False(t, ctx.Local("external"))

	arity, ok := ctx.LocalArity("t")
	require.True(t, ok)
	assert.Equal(t, 2, arity)

	_, ok = ctx.Lookup("external")
	assert.True(t, ok)
	_, ok = ctx.Lookup("t")
	assert.False(t, ok)
}
