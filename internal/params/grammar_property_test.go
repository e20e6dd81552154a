package params

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestAssignmentRoundTripProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4217)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// A value may not open with a space: the grammar splits on any space that
	// follows an unescaped quote, the opening one included. Nor may it end in
	// a backslash, which ResolveValue never returns.
	values := gen.MapOf(
		gen.Identifier(),
		gen.RegexMatch(`[a-zA-Z0-9=!.,"\\-]([a-zA-Z0-9 =!.,"\\-]{0,22}[a-zA-Z0-9=!.,"-])?`),
	)

	properties.Property("format then parse then resolve reproduces the mapping", prop.ForAll(
		func(values map[string]string) bool {
			parsed, err := ParseAssignments(Format(values))
			if err != nil {
				return false
			}
			resolved, err := Resolve(parsed)
			if err != nil {
				return false
			}
			if len(resolved) != len(values) {
				return false
			}
			for key, value := range values {
				if resolved[key] != value {
					return false
				}
			}
			return true
		},
		values,
	))

	properties.Property("resolved values never end in a backslash", prop.ForAll(
		func(inner string) bool {
			value, err := ResolveValue(`"` + inner + `"`)
			return err != nil || !strings.HasSuffix(value, `\`)
		},
		gen.RegexMatch(`[a-z\\" ]{0,12}`),
	))

	properties.Property("overrides always win when merging", prop.ForAll(
		func(defaults, overrides map[string]string) bool {
			merged := Merge(toAssignments(defaults), toAssignments(overrides))
			for key, value := range overrides {
				if merged[key] != value {
					return false
				}
			}
			for key, value := range defaults {
				if _, overridden := overrides[key]; !overridden && merged[key] != value {
					return false
				}
			}
			return len(merged) <= len(defaults)+len(overrides)
		},
		gen.MapOf(gen.Identifier(), gen.AlphaString()),
		gen.MapOf(gen.Identifier(), gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func toAssignments(values map[string]string) Assignments {
	out := make(Assignments, len(values))
	for key, value := range values {
		out[key] = `"` + value + `"`
	}
	return out
}
