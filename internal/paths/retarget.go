package paths

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// IsExternal reports whether href carries a URL scheme or is protocol relative.
func IsExternal(href string) bool {
	return strings.HasPrefix(href, "//") || schemePattern.MatchString(href)
}

// IsRelativeReference reports whether href is a relative filesystem reference:
// not empty, not a web URL, not root-absolute and not fragment or query only.
func IsRelativeReference(href string) bool {
	if href == "" || IsExternal(href) {
		return false
	}
	switch href[0] {
	case '/', '#', '?':
		return false
	}
	return true
}

// IsLocalAssetFile reports whether href is a relative reference to a file
// with an extension that is not one of the document extensions.
func (l Layout) IsLocalAssetFile(href string) bool {
	if !IsRelativeReference(href) {
		return false
	}
	target, _ := splitSuffix(href)
	if path.Ext(target) == "" {
		return false
	}
	return !l.IsDocument(target)
}

// RetargetHref rewrites originalPath, written relative to the partial's own
// directory, so it resolves to the same file from the including page's
// directory. partialPath is resolved against contentRootDir.
func RetargetHref(originalPath, partialPath, includerPath, contentRootDir string) (string, error) {
	target, suffix := splitSuffix(originalPath)
	absolute := Resolve(contentRootDir, path.Dir(partialPath), target)

	rel, err := relative(path.Dir(includerPath), absolute)
	if err != nil {
		return "", fmt.Errorf("paths: retarget %q from %q into %q: %w", originalPath, partialPath, includerPath, err)
	}
	return keepTrailingSlash(target, rel) + suffix, nil
}

// UpdateAssetPath rebases hrefs on migrated pages. Local asset files are
// resolved against the page's legacy location and re-expressed relative to
// its current location. A bare in-page anchor such as "#Setup" gets a
// lower-cased fragment. Every other href, including links to other documents
// that carry a fragment, is returned unchanged.
func (l Layout) UpdateAssetPath(href string, ctx Context) (string, error) {
	if l.IsLocalAssetFile(href) {
		target, suffix := splitSuffix(href)
		absolute := Resolve(path.Dir(ctx.PreMigrationPath), target)
		rel, err := relative(path.Dir(ctx.FilePath), absolute)
		if err != nil {
			return "", fmt.Errorf("paths: rebase asset %q for %q: %w", href, ctx.FilePath, err)
		}
		return rel + suffix, nil
	}

	if target, suffix := splitSuffix(href); target == "" && strings.HasPrefix(suffix, "#") {
		return strings.ToLower(href), nil
	}
	return href, nil
}

// Resolve joins segments right to left until an absolute segment is found,
// mirroring shell-style path resolution without consulting the working
// directory. The result is cleaned.
func Resolve(segments ...string) string {
	var parts []string
	for i := len(segments) - 1; i >= 0; i-- {
		segment := segments[i]
		if segment == "" {
			continue
		}
		parts = append([]string{segment}, parts...)
		if path.IsAbs(segment) {
			break
		}
	}
	if len(parts) == 0 {
		return "."
	}
	return path.Join(parts...)
}

func relative(from, to string) (string, error) {
	rel, err := filepath.Rel(filepath.FromSlash(from), filepath.FromSlash(to))
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// splitSuffix separates a trailing `#fragment` or `?query` from the path part.
func splitSuffix(href string) (string, string) {
	if idx := strings.IndexAny(href, "#?"); idx >= 0 {
		return href[:idx], href[idx:]
	}
	return href, ""
}

func keepTrailingSlash(original, rel string) string {
	if strings.HasSuffix(original, "/") && rel != "." && !strings.HasSuffix(rel, "/") {
		return rel + "/"
	}
	return rel
}
