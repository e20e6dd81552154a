package paths

import "fmt"

// VersionResolutionError is returned when a page path matches neither the
// migrated nor the legacy directory layout.
type VersionResolutionError struct {
	Path string
}

func (e *VersionResolutionError) Error() string {
	return fmt.Sprintf("paths: cannot resolve version for %q: expected docs/, versioned_docs/version-<version>/ or content/<version>/", e.Path)
}
