package digest_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/vphpersson/shape_digest/pkg/derive"
	"github.com/vphpersson/shape_digest/pkg/producers/digest"
	"github.com/vphpersson/shape_digest/pkg/types/typeexpr"
)

func TestDigestDeterminismProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("digesting the same definition twice is stable", prop.ForAll(
		func(names []string) bool {
			seen := map[string]struct{}{}
			var constructors []typeexpr.Constructor
			for _, name := range names {
				if _, ok := seen[name]; ok {
					continue
				}
				seen[name] = struct{}{}
				constructors = append(constructors, typeexpr.Constructor{Name: name})
			}
			if len(constructors) == 0 {
				return true
			}

			def := variantDef("t", constructors...)
			return digestOf(t, def) == digestOf(t, def)
		},
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}

func TestAlphaInvarianceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("consistently renaming the bound parameter keeps the digest", prop.ForAll(
		func(first string, second string) bool {
			defFor := func(param string) typeexpr.TypeDef {
				return typeexpr.TypeDef{
					Name:   "t",
					Params: []string{param},
					Kind: typeexpr.RecordKind{Fields: []typeexpr.Field{
						{Name: "items", Type: apply("list", typeexpr.Var{Name: param})},
						{Name: "fallback", Type: typeexpr.Var{Name: param}},
					}},
				}
			}

			return parameterizedDigest(t, defFor(first)) == parameterizedDigest(t, defFor(second))
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestFieldOrderSensitivityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("swapping two distinct record fields changes the digest", prop.ForAll(
		func(first string, second string) bool {
			if first == second {
				return true
			}

			original := recordDef(
				"t",
				typeexpr.Field{Name: first, Type: apply("int")},
				typeexpr.Field{Name: second, Type: apply("string")},
			)
			swapped := recordDef(
				"t",
				typeexpr.Field{Name: second, Type: apply("string")},
				typeexpr.Field{Name: first, Type: apply("int")},
			)

			return digestOf(t, original) != digestOf(t, swapped)
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

// parameterizedDigest applies a single one-parameter definition to int and
// digests the result.
func parameterizedDigest(t *testing.T, def typeexpr.TypeDef) digest.Digest {
	t.Helper()

	env := derive.BaseEnv()
	builder, err := derive.DeriveSingle(env, def)
	if err != nil {
		t.Fatalf("derive: %s", err)
	}

	intShape, err := derive.DeriveExpr(env, apply("int"))
	if err != nil {
		t.Fatalf("derive int: %s", err)
	}

	s, err := builder.Apply(intShape)
	if err != nil {
		t.Fatalf("apply: %s", err)
	}

	d, err := digest.Compute(s)
	if err != nil {
		t.Fatalf("compute: %s", err)
	}

	return d
}
