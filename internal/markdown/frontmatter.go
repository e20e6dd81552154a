package markdown

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-partials/pkg/interfaces"
)

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. It returns the structured front matter, the raw
// delimited block as found in the file, and the Markdown body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	var raw []byte
	if len(body) < len(source) && bytes.HasSuffix(source, body) {
		raw = append([]byte(nil), source[:len(source)-len(body)]...)
	}

	return envelopeToFrontMatter(meta), raw, body, nil
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// raw content, and modification time.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, raw, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	sum := sha256.Sum256(source)
	return &interfaces.Document{
		FilePath:       path,
		FrontMatter:    fm,
		RawFrontMatter: raw,
		Body:           body,
		LastModified:   modified,
		Checksum:       sum[:],
	}, nil
}

// Assemble joins a document's raw front matter with a (possibly rewritten)
// body.
func Assemble(doc *interfaces.Document, body []byte) []byte {
	out := make([]byte, 0, len(doc.RawFrontMatter)+len(body))
	out = append(out, doc.RawFrontMatter...)
	return append(out, body...)
}

type frontMatterEnvelope struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Labels      []string       `yaml:"labels"`
	Tags        []string       `yaml:"tags"`
	Draft       bool           `yaml:"draft"`
	Custom      map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	custom := make(map[string]any, len(env.Custom))
	for key, value := range env.Custom {
		custom[key] = value
	}

	return interfaces.FrontMatter{
		Title:       env.Title,
		Description: env.Description,
		Labels:      append([]string(nil), env.Labels...),
		Tags:        append([]string(nil), env.Tags...),
		Draft:       env.Draft,
		Custom:      custom,
	}
}
