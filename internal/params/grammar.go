// Package params implements the small assignment grammar shared by inclusion
// directives and partial defaults: space separated `key="value"` pairs whose
// values stay quoted until they are resolved for substitution.
package params

import (
	"regexp"
	"sort"
	"strings"
)

// Assignments maps a parameter name to its still-quoted raw value, e.g.
// `title` -> `"Install \"Teleport\""`. Keys are unique; later pairs win.
type Assignments map[string]string

// Directive is a single `(!target k="v"!)` occurrence.
type Directive struct {
	// Raw is the full directive text including the `(!` and `!)` delimiters.
	Raw string
	// Target is the first whitespace-delimited token of the expression.
	Target string
	// Section is everything after the first space following Target.
	Section string
}

const formatHint = `wrap every value in double quotes and separate assignments with single spaces, e.g. key1="value" key2="value"`

var (
	assignmentPattern = regexp.MustCompile(`(?s)^([A-Za-z0-9_][A-Za-z0-9_.-]*)=(".*")$`)
	directiveShape    = regexp.MustCompile("(?s)^\\(!.*!\\)`?$")
	defaultsLine      = regexp.MustCompile(`^\{\{\s*(.*?)\s*\}\}$`)
)

// ParseAssignments parses `k1="v1" k2="v2"` into Assignments. Empty input and
// input that does not end in a double quote yield an empty result without an
// error; callers use that to detect that no assignment list is present.
func ParseAssignments(input string) (Assignments, error) {
	out := Assignments{}
	if input == "" || !strings.HasSuffix(input, `"`) {
		return out, nil
	}

	for _, segment := range splitSegments(input) {
		match := assignmentPattern.FindStringSubmatch(segment)
		if len(match) != 3 {
			return nil, formatError(segment, "malformed assignment, "+formatHint)
		}
		out[match[1]] = match[2]
	}
	return out, nil
}

// splitSegments cuts input at every space that directly follows an unescaped
// double quote.
func splitSegments(input string) []string {
	var segments []string
	start := 0
	for i := 1; i < len(input); i++ {
		if input[i] != ' ' || input[i-1] != '"' {
			continue
		}
		if i >= 2 && input[i-2] == '\\' {
			continue
		}
		segments = append(segments, input[start:i])
		start = i + 1
	}
	return append(segments, input[start:])
}

// ResolveValue strips the surrounding double quotes from a raw value and
// unescapes `\"`. Single-quoted, unquoted, empty and mismatched values fail
// with a *FormatError.
func ResolveValue(raw string) (string, error) {
	if raw == "" {
		return "", formatError(raw, "empty parameter value")
	}
	switch raw[0] {
	case '"':
	case '\'':
		return "", formatError(raw, "single quotes are not supported, "+formatHint)
	default:
		return "", formatError(raw, "value is not quoted, "+formatHint)
	}
	if len(raw) < 2 || raw[len(raw)-1] != '"' || escapedAt(raw, len(raw)-1) {
		return "", formatError(raw, "mismatched quotes")
	}

	inner := raw[1 : len(raw)-1]
	for i := 0; i < len(inner); i++ {
		if inner[i] == '"' && !escapedAt(inner, i) {
			return "", formatError(raw, `ambiguous quote inside value, escape it as \"`)
		}
	}
	return strings.ReplaceAll(inner, `\"`, `"`), nil
}

func escapedAt(s string, i int) bool {
	return i > 0 && s[i-1] == '\\'
}

// Resolve resolves every value in the assignments. Keys are processed in
// sorted order so the first reported error is stable.
func Resolve(assignments Assignments) (map[string]string, error) {
	out := make(map[string]string, len(assignments))
	for _, key := range sortedKeys(assignments) {
		value, err := ResolveValue(assignments[key])
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

// Merge returns defaults overlaid with overrides; overrides win on collision.
func Merge(defaults, overrides Assignments) Assignments {
	out := make(Assignments, len(defaults)+len(overrides))
	for key, value := range defaults {
		out[key] = value
	}
	for key, value := range overrides {
		out[key] = value
	}
	return out
}

// Format renders resolved values back into the assignment grammar, quoting
// and escaping each value. Keys are emitted in sorted order.
//
// Only `"` has an escape, so a value ending in a backslash has no spelling:
// its closing quote would read as escaped. ResolveValue rejects such input
// (`"a\"` is a mismatched quote), so no resolved value ends in a backslash
// and every value it returns formats back to an equivalent assignment.
func Format(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+`="`+strings.ReplaceAll(values[key], `"`, `\"`)+`"`)
	}
	return strings.Join(parts, " ")
}

// SplitDirective validates that expr is exactly one inclusion directive,
// optionally followed by a backtick, and splits it into target and raw
// parameter section.
func SplitDirective(expr string) (Directive, error) {
	if !directiveShape.MatchString(expr) {
		return Directive{}, formatError(expr, "not an inclusion directive, expected (!path key=\"value\"!)")
	}
	raw := strings.TrimSuffix(expr, "`")
	inner := raw[2 : len(raw)-2]

	directive := Directive{Raw: raw, Target: inner}
	if idx := strings.IndexAny(inner, " \t\n"); idx >= 0 {
		directive.Target = inner[:idx]
		directive.Section = strings.TrimRight(inner[idx+1:], " \t\r\n")
	}
	directive.Target = strings.TrimSpace(directive.Target)
	return directive, nil
}

// ParsePartialParams extracts the call-site overrides of a directive.
// `(!includes/example.mdx!)` yields an empty map; a non-empty parameter
// section that does not parse into at least one assignment is an error.
func ParsePartialParams(expr string) (Assignments, error) {
	directive, err := SplitDirective(expr)
	if err != nil {
		return nil, err
	}
	return directive.Params()
}

// Params parses the directive's parameter section.
func (d Directive) Params() (Assignments, error) {
	if d.Section == "" {
		return Assignments{}, nil
	}
	out, err := ParseAssignments(d.Section)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, formatError(d.Section, "malformed parameter list, "+formatHint)
	}
	return out, nil
}

// ParseParamDefaults reads the default-assignment line `{{ k="v" }}` from the
// first line of a partial. A first line of any other shape means no defaults
// and is not an error. Empty text is an error; callers filter empty partials.
func ParseParamDefaults(partialText string) (Assignments, error) {
	if partialText == "" {
		return nil, formatError("", "partial text is empty")
	}
	match := defaultsLine.FindStringSubmatch(FirstLine(partialText))
	if match == nil {
		return Assignments{}, nil
	}
	return ParseAssignments(match[1])
}

// FirstLine returns text up to, and excluding, the first line break.
func FirstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSuffix(text, "\r")
}

func sortedKeys(assignments Assignments) []string {
	keys := make([]string, 0, len(assignments))
	for key := range assignments {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
