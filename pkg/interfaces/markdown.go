package interfaces

import (
	"context"
	"time"
)

// MarkdownRenderer converts resolved Markdown bytes into HTML. Resolved pages
// are rendered through it when HTML output is requested.
type MarkdownRenderer interface {
	// Render converts Markdown into HTML using the renderer's default settings.
	Render(markdown []byte) ([]byte, error)
	// RenderWithOptions converts Markdown into HTML using the supplied overrides.
	RenderWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string `mapstructure:"extensions" yaml:"extensions" json:"extensions"`
	HardWraps  bool     `mapstructure:"hard_wraps" yaml:"hard_wraps" json:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode" yaml:"safe_mode" json:"safe_mode"`
	// FlowElements names the HTML/MDX elements folded into block containers
	// when a page is parsed into a tree. Capitalised MDX component names are
	// always treated as block containers.
	FlowElements []string `mapstructure:"flow_elements" yaml:"flow_elements" json:"flow_elements"`
}

// PageSource loads documentation pages from disk.
type PageSource interface {
	Load(ctx context.Context, path string) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
}

// Document represents a page file split into its front matter and Markdown
// body.
type Document struct {
	// FilePath is the page path relative to the loader's base path.
	FilePath    string
	FrontMatter FrontMatter
	// RawFrontMatter holds the delimited front matter block exactly as it
	// appeared in the file, so resolved output can reproduce it.
	RawFrontMatter []byte
	Body           []byte
	LastModified   time.Time
	// Checksum stores a SHA-256 digest of the original file content.
	Checksum []byte
}

// FrontMatter models the metadata block at the top of a page. Unknown keys
// are collected in Custom.
type FrontMatter struct {
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Labels      []string       `yaml:"labels" json:"labels"`
	Tags        []string       `yaml:"tags" json:"tags"`
	Draft       bool           `yaml:"draft" json:"draft"`
	Custom      map[string]any `yaml:",inline" json:"custom"`
}

// LoadOptions fine-tunes how documents are discovered on disk.
type LoadOptions struct {
	Recursive *bool
	Pattern   string
}
