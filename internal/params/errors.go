package params

import "fmt"

// FormatError reports malformed assignment syntax: unquoted or single-quoted
// values, mismatched quotes, empty values, or a directive that does not have
// the `(!path k="v"!)` shape.
type FormatError struct {
	// Input is the offending segment or expression.
	Input string
	// Reason describes what is wrong with Input.
	Reason string
}

func (e *FormatError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("params: %s", e.Reason)
	}
	return fmt.Sprintf("params: %s: %q", e.Reason, e.Input)
}

func formatError(input, reason string) error {
	return &FormatError{Input: input, Reason: reason}
}
