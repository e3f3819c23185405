// Package context holds the derivation-time lookup state: the registry of
// previously derived builders (Env) and the per-group Context that answers
// whether a type name is local to the declaration group being derived.
package context

import (
	"github.com/vphpersson/shape_digest/pkg/types/shape"
)

// Env is a registry of previously derived shape builders, keyed by type name.
// Every non-local name referenced during derivation must already be registered
// here. Registering a name again shadows the earlier builder.
type Env struct {
	builders map[string]*shape.Builder
}

func NewEnv() *Env {
	return &Env{builders: map[string]*shape.Builder{}}
}

// Register makes a builder available to subsequent derivations under its own
// name.
func (e *Env) Register(builder *shape.Builder) {
	e.builders[builder.Name()] = builder
}

// Lookup returns the builder registered under the given name.
func (e *Env) Lookup(name string) (*shape.Builder, bool) {
	builder, ok := e.builders[name]
	return builder, ok
}

// Context is the lookup table for one derivation run. It is built once per
// declaration group, consulted to distinguish self-references from external
// references, and discarded when derivation completes.
type Context struct {
	localArity map[string]int
	env        *Env
}

func New(env *Env) *Context {
	return &Context{
		localArity: map[string]int{},
		env:        env,
	}
}

// AddLocal records a type name declared by the current group, with its
// parameter count.
func (c *Context) AddLocal(name string, arity int) {
	c.localArity[name] = arity
}

// Local reports whether the name belongs to the current group.
func (c *Context) Local(name string) bool {
	_, ok := c.localArity[name]
	return ok
}

// LocalArity returns the declared parameter count of a local name.
func (c *Context) LocalArity(name string) (int, bool) {
	arity, ok := c.localArity[name]
	return arity, ok
}

// Lookup resolves a non-local name against the environment.
func (c *Context) Lookup(name string) (*shape.Builder, bool) {
	return c.env.Lookup(name)
}
