// Package paths holds the path arithmetic used when partial content is
// embedded into pages: version resolution from a page location, mapping
// between the legacy `content/<version>/docs/pages` layout and the migrated
// `docs/` + `versioned_docs/version-<version>/` layout, and the relative href
// rewriting that keeps links inside partials pointing at the same files.
package paths

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Layout describes where pages live on disk for both directory shapes.
type Layout struct {
	// ProjectRoot is the repository root every other directory is relative to.
	ProjectRoot string
	// LatestVersion is reported for pages under the un-versioned DocsDir.
	LatestVersion string
	// LegacyContentDir holds one directory per version (`content/<version>`).
	LegacyContentDir string
	// LegacyPagesDir is the pages root inside a legacy version directory.
	LegacyPagesDir string
	// DocsDir is the migrated root for the latest version.
	DocsDir string
	// VersionedDocsDir is the migrated root for released versions.
	VersionedDocsDir string
	// VersionPrefix prefixes version directories under VersionedDocsDir.
	VersionPrefix string
	// DocumentExtensions lists extensions treated as pages rather than assets.
	DocumentExtensions []string
}

// DefaultLayout returns the conventional directory names.
func DefaultLayout(projectRoot, latestVersion string) Layout {
	return Layout{
		ProjectRoot:        projectRoot,
		LatestVersion:      latestVersion,
		LegacyContentDir:   "content",
		LegacyPagesDir:     "docs/pages",
		DocsDir:            "docs",
		VersionedDocsDir:   "versioned_docs",
		VersionPrefix:      "version-",
		DocumentExtensions: []string{".md", ".mdx"},
	}
}

// Context carries a page path together with the attributes derived from it.
type Context struct {
	FilePath        string
	ProjectRoot     string
	ContentRootDir  string
	LatestVersion   string
	Version         string
	IsLatest        bool
	IsPostMigration bool
	// PreMigrationPath is FilePath expressed in the legacy layout. It equals
	// FilePath for legacy pages.
	PreMigrationPath string
}

// Context resolves the version and layout attributes of filePath.
func (l Layout) Context(filePath string) (Context, error) {
	match, err := l.classify(filePath)
	if err != nil {
		return Context{}, err
	}
	return Context{
		FilePath:         filePath,
		ProjectRoot:      l.ProjectRoot,
		ContentRootDir:   l.ContentRootDir(match.version),
		LatestVersion:    l.LatestVersion,
		Version:          match.version,
		IsLatest:         match.shape == shapeLatest,
		IsPostMigration:  match.shape != shapeLegacy,
		PreMigrationPath: l.preMigration(filePath, match),
	}, nil
}

// ContentRootDir is the legacy version directory partial targets resolve against.
func (l Layout) ContentRootDir(version string) string {
	return path.Join(l.ProjectRoot, l.LegacyContentDir, version)
}

// PartialPath locates a directive target on disk relative to ProjectRoot.
// Targets are always written relative to the legacy version directory.
func (l Layout) PartialPath(version, target string) string {
	return path.Join(strings.Trim(l.LegacyContentDir, "/"), version, strings.TrimPrefix(target, "/"))
}

// IsDocument reports whether p carries one of the document extensions.
func (l Layout) IsDocument(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, candidate := range l.DocumentExtensions {
		if strings.EqualFold(candidate, ext) {
			return true
		}
	}
	return false
}

type shape int

const (
	shapeLatest shape = iota
	shapeVersioned
	shapeLegacy
)

type classification struct {
	shape   shape
	version string
	// rel is the page path relative to ProjectRoot when it lives under it.
	rel    string
	rooted bool
	// prefix bounds the layout-specific directory prefix inside rel.
	prefixStart, prefixEnd int
}

func (l Layout) classify(filePath string) (classification, error) {
	rel, rooted := l.relative(filePath)

	docsPrefix := strings.Trim(l.DocsDir, "/") + "/"
	if rooted && strings.HasPrefix(rel, docsPrefix) {
		return classification{
			shape:     shapeLatest,
			version:   l.LatestVersion,
			rel:       rel,
			rooted:    rooted,
			prefixEnd: len(docsPrefix),
		}, nil
	}

	if loc := l.versionedPattern().FindStringSubmatchIndex(rel); loc != nil {
		return classification{
			shape:       shapeVersioned,
			version:     rel[loc[4]:loc[5]],
			rel:         rel,
			rooted:      rooted,
			prefixStart: loc[2],
			prefixEnd:   loc[3],
		}, nil
	}

	if loc := l.legacyPattern().FindStringSubmatchIndex(rel); loc != nil {
		return classification{
			shape:   shapeLegacy,
			version: rel[loc[2]:loc[3]],
			rel:     rel,
			rooted:  rooted,
		}, nil
	}

	return classification{}, &VersionResolutionError{Path: filePath}
}

func (l Layout) versionedPattern() *regexp.Regexp {
	expr := fmt.Sprintf(`(?:^|/)((?:%s|%s)/%s([^/]+)/)`,
		regexp.QuoteMeta(strings.Trim(l.VersionedDocsDir, "/")),
		regexp.QuoteMeta(strings.Trim(l.DocsDir, "/")),
		regexp.QuoteMeta(l.VersionPrefix),
	)
	return regexp.MustCompile(expr)
}

func (l Layout) legacyPattern() *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?:^|/)%s/([^/]+)/`, regexp.QuoteMeta(strings.Trim(l.LegacyContentDir, "/"))))
}

// relative trims ProjectRoot from p. The boolean reports whether p was
// located under the root.
func (l Layout) relative(p string) (string, bool) {
	root := strings.TrimSpace(l.ProjectRoot)
	if root == "" || root == "." {
		return strings.TrimPrefix(path.Clean(p), "./"), !path.IsAbs(p)
	}
	root = path.Clean(root)
	clean := path.Clean(p)
	if root == "/" {
		if path.IsAbs(clean) {
			return strings.TrimPrefix(clean, "/"), true
		}
		return clean, false
	}
	if strings.HasPrefix(clean, root+"/") {
		return strings.TrimPrefix(clean, root+"/"), true
	}
	return clean, false
}

func (l Layout) preMigration(filePath string, match classification) string {
	if match.shape == shapeLegacy {
		return filePath
	}
	legacyPrefix := path.Join(l.LegacyContentDir, match.version, l.LegacyPagesDir) + "/"
	rel := match.rel[:match.prefixStart] + legacyPrefix + match.rel[match.prefixEnd:]
	if match.rooted && strings.TrimSpace(l.ProjectRoot) != "" {
		return path.Join(l.ProjectRoot, rel)
	}
	return rel
}

// VersionFromPath classifies a page path into its release version.
func (l Layout) VersionFromPath(filePath string) (string, error) {
	match, err := l.classify(filePath)
	if err != nil {
		return "", err
	}
	return match.version, nil
}

// PreMigrationPath maps a migrated page path onto its legacy-layout twin.
// Legacy paths are returned unchanged.
func (l Layout) PreMigrationPath(filePath string) (string, error) {
	match, err := l.classify(filePath)
	if err != nil {
		return "", err
	}
	return l.preMigration(filePath, match), nil
}
