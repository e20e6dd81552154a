package includes

import (
	"fmt"
	"strings"
)

// MissingPartialError reports a directive whose target could not be loaded.
type MissingPartialError struct {
	// Target is the path exactly as written in the directive.
	Target string
	// Path is the location that was read, relative to the project root.
	Path string
	// Includer is the file holding the directive.
	Includer string
	Err      error
}

func (e *MissingPartialError) Error() string {
	return fmt.Sprintf("partial %s not found (included from %s)", e.Target, e.Includer)
}

func (e *MissingPartialError) Unwrap() error {
	return e.Err
}

// CycleError reports a partial that includes itself, directly or through
// other partials, or a chain nested deeper than the configured limit.
type CycleError struct {
	Chain []string
	// Depth is set when the limit was hit rather than a repeated partial.
	Depth int
}

func (e *CycleError) Error() string {
	if e.Depth > 0 {
		return fmt.Sprintf("partial inclusion exceeds max depth %d: %s", e.Depth, strings.Join(e.Chain, " -> "))
	}
	return fmt.Sprintf("partial inclusion cycle: %s", strings.Join(e.Chain, " -> "))
}
