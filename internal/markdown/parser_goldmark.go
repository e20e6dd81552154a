package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-partials/internal/mdast"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// GoldmarkParser turns page text into mdast trees and renders resolved
// Markdown into HTML, both backed by goldmark. It holds no per-call state and
// can be shared.
type GoldmarkParser struct {
	tree goldmark.Markdown
	html goldmark.Markdown
	flow map[string]struct{}
}

// NewGoldmarkParser constructs a parser. Rendering defaults to GFM with raw
// HTML passed through, matching how MDX pages embed components.
func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	flow := map[string]struct{}{}
	names := defaults.FlowElements
	if len(names) == 0 {
		names = []string{"details"}
	}
	for _, name := range names {
		if key := strings.ToLower(strings.TrimSpace(name)); key != "" {
			flow[key] = struct{}{}
		}
	}

	return &GoldmarkParser{
		tree: newTreeEngine(),
		html: newRenderEngine(defaults),
		flow: flow,
	}
}

// ParseTree parses source into an mdast tree. HTML blocks that open or close
// one of the configured flow elements are folded into Element nodes.
func (p *GoldmarkParser) ParseTree(source []byte) (*mdast.Tree, error) {
	tree, err := p.convert(source)
	if err != nil {
		return nil, err
	}
	folder := &elementFolder{parser: p}
	if err := folder.fold(tree, tree.Root()); err != nil {
		return nil, err
	}
	return tree, nil
}

func (p *GoldmarkParser) convert(source []byte) (*mdast.Tree, error) {
	pc := parser.NewContext()
	doc := p.tree.Parser().Parse(text.NewReader(source), parser.WithContext(pc))
	if doc == nil {
		return nil, fmt.Errorf("markdown parse tree: empty document")
	}
	b := newTreeBuilder(source)
	return b.build(doc, pc.References()), nil
}

// Render converts resolved Markdown to HTML with the parser's default
// options.
func (p *GoldmarkParser) Render(markdown []byte) ([]byte, error) {
	return render(p.html, markdown)
}

// RenderWithOptions converts Markdown to HTML with a one-off engine built
// from opts.
func (p *GoldmarkParser) RenderWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	return render(newRenderEngine(opts), markdown)
}

func render(engine goldmark.Markdown, markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// newTreeEngine only enables extensions whose nodes have an mdast
// counterpart, so every parsed node survives serialisation.
func newTreeEngine() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(
		extension.Strikethrough,
		extension.TaskList,
	))
}

// newRenderEngine builds the HTML engine for resolved pages. Heading ids are
// generated so in-page anchors that UpdateAssetPath lower-cases still land.
// Raw HTML is kept unless SafeMode is set, since MDX pages embed components.
func newRenderEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	var rendererOpts []renderer.Option
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}
	return goldmark.New(
		goldmark.WithExtensions(resolveExtensions(opts.Extensions)...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
	)
}

var namedExtensions = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

// resolveExtensions maps configured names onto goldmark extenders, skipping
// unknown names and duplicates. No names means GFM.
func resolveExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}
	var out []goldmark.Extender
	seen := map[goldmark.Extender]bool{}
	for _, name := range names {
		ext, ok := namedExtensions[strings.ToLower(strings.TrimSpace(name))]
		if !ok || seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}
