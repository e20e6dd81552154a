package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goliatone/go-partials/pkg/interfaces"
)

// LoaderConfig configures how pages are discovered within a base directory.
type LoaderConfig struct {
	// BasePath is the directory the filesystem is rooted at; absolute paths
	// handed to the loader are made relative to it.
	BasePath string
	// Pattern limits discovered files to those matching the supplied glob.
	// When empty, files carrying one of Extensions are loaded.
	Pattern string
	// Extensions defaults to .md and .mdx.
	Extensions []string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader reads pages off an fs.FS and splits their front matter from the
// body.
type Loader struct {
	fsys       fs.FS
	base       string
	pattern    string
	extensions []string
	recursive  bool
}

var _ interfaces.PageSource = (*Loader)(nil)

// NewLoader returns a Loader over fsys.
func NewLoader(fsys fs.FS, cfg LoaderConfig) *Loader {
	exts := make([]string, 0, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		exts = append(exts, strings.ToLower(ext))
	}
	if len(exts) == 0 {
		exts = []string{".md", ".mdx"}
	}
	return &Loader{
		fsys:       fsys,
		base:       filepath.Clean(cfg.BasePath),
		pattern:    strings.TrimSpace(cfg.Pattern),
		extensions: exts,
		recursive:  cfg.Recursive,
	}
}

// Load reads a single page.
func (l *Loader) Load(ctx context.Context, name string) (*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := l.fsPath(name)
	if err != nil {
		return nil, err
	}
	return l.read(rel)
}

func (l *Loader) read(rel string) (*interfaces.Document, error) {
	info, err := fs.Stat(l.fsys, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown: stat page %s: %w", rel, err)
	}
	data, err := fs.ReadFile(l.fsys, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown: read page %s: %w", rel, err)
	}
	return BuildDocument(rel, data, info.ModTime())
}

// LoadDirectory discovers pages under dir, sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := l.fsPath(dir)
	if err != nil {
		return nil, err
	}

	recursive := l.recursive
	if opts.Recursive != nil {
		recursive = *opts.Recursive
	}
	pattern := strings.TrimSpace(opts.Pattern)
	if pattern == "" {
		pattern = l.pattern
	}

	var docs []*interfaces.Document
	err = fs.WalkDir(l.fsys, root, func(name string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir():
			if name != root && !recursive {
				return fs.SkipDir
			}
			return nil
		case !l.match(name, pattern):
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := l.read(name)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(docs, func(a, b *interfaces.Document) int {
		return strings.Compare(a.FilePath, b.FilePath)
	})
	return docs, nil
}

// Matches reports whether LoadDirectory would pick up name.
func (l *Loader) Matches(name string) bool {
	return l.match(filepath.ToSlash(name), l.pattern)
}

// match checks the document extensions when pattern is empty. A pattern
// without a slash is matched against the base name; "**/" segments are
// dropped.
func (l *Loader) match(name, pattern string) bool {
	if pattern == "" {
		return slices.Contains(l.extensions, strings.ToLower(path.Ext(name)))
	}
	pattern = strings.ReplaceAll(filepath.ToSlash(pattern), "**/", "")
	target := name
	if !strings.Contains(pattern, "/") {
		target = path.Base(name)
	}
	ok, err := path.Match(pattern, target)
	return err == nil && ok
}

// fsPath turns name into a slash-separated path inside the filesystem.
func (l *Loader) fsPath(name string) (string, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) {
		if l.base == "" || l.base == "." {
			return "", fmt.Errorf("markdown: absolute path %s needs a base path", name)
		}
		rel, err := filepath.Rel(l.base, clean)
		if err != nil {
			return "", fmt.Errorf("markdown: relative path for %s: %w", name, err)
		}
		clean = rel
	}
	return filepath.ToSlash(clean), nil
}
