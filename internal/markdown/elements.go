package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/goliatone/go-partials/internal/mdast"
)

// voidElements never take children, so an opening tag is a complete element.
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

type htmlToken struct {
	kind  html.TokenType
	raw   string
	name  string
	attrs []mdast.Attr
}

func tokenizeHTML(s string) []htmlToken {
	z := html.NewTokenizer(strings.NewReader(s))
	var tokens []htmlToken
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return tokens
		}
		raw := string(z.Raw())
		tok := z.Token()
		t := htmlToken{kind: tt, raw: raw}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			t.name = rawTagName(raw)
			for _, attr := range tok.Attr {
				t.attrs = append(t.attrs, mdast.Attr{Key: attr.Key, Value: attr.Val})
			}
		}
		tokens = append(tokens, t)
	}
}

// rawTagName returns the tag name as written; the tokenizer lower-cases it,
// which would lose MDX component names.
func rawTagName(raw string) string {
	s := strings.TrimPrefix(raw, "<")
	s = strings.TrimPrefix(s, "/")
	end := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '/' || r == '>'
	})
	if end < 0 {
		return s
	}
	return s[:end]
}

func isTag(kind html.TokenType) bool {
	return kind == html.StartTagToken || kind == html.SelfClosingTagToken || kind == html.EndTagToken
}

// elementFolder rewrites raw HTML into Element nodes. Block HTML that opens
// a flow element becomes a container holding the Markdown blocks up to the
// matching close tag; inline tags inside paragraphs wrap the inline nodes
// between them.
type elementFolder struct {
	parser *GoldmarkParser
}

func (f *elementFolder) isFlow(name string) bool {
	if _, ok := f.parser.flow[strings.ToLower(name)]; ok {
		return true
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func (f *elementFolder) hasFlowToken(tokens []htmlToken) bool {
	for _, t := range tokens {
		if isTag(t.kind) && f.isFlow(t.name) {
			return true
		}
	}
	return false
}

func (f *elementFolder) fold(tree *mdast.Tree, container mdast.NodeID) error {
	children := tree.Children(container)
	for _, child := range children {
		tree.Detach(child)
	}

	stack := []mdast.NodeID{container}
	current := func() mdast.NodeID { return stack[len(stack)-1] }

	for _, child := range children {
		n := tree.Node(child)
		switch n.Kind {
		case mdast.KindHTML:
			tokens := tokenizeHTML(n.Value)
			if !f.hasFlowToken(tokens) {
				if len(stack) > 1 && opensInline(tokens) {
					if err := f.flushRun(tree, current(), n.Value, n.Position); err != nil {
						return err
					}
					continue
				}
				break
			}
			var err error
			stack, err = f.foldBlock(tree, stack, tokens, n.Position)
			if err != nil {
				return err
			}
			continue
		case mdast.KindParagraph, mdast.KindHeading:
			f.foldInline(tree, child)
		case mdast.KindBlockquote, mdast.KindList, mdast.KindListItem:
			if err := f.fold(tree, child); err != nil {
				return err
			}
		}
		tree.Append(current(), child)
	}
	return nil
}

// opensInline reports whether a raw HTML block starts with an element that
// is closed within the same block, such as `<summary>Title</summary> text`.
// CommonMark reads those lines as HTML blocks because the tag name is a block
// name, even though the element only wraps inline content.
func opensInline(tokens []htmlToken) bool {
	var first *htmlToken
	for i := range tokens {
		if tokens[i].kind == html.TextToken && strings.TrimSpace(tokens[i].raw) == "" {
			continue
		}
		first = &tokens[i]
		break
	}
	if first == nil || first.kind != html.StartTagToken {
		return false
	}
	for _, t := range tokens {
		if t.kind == html.EndTagToken && strings.EqualFold(t.name, first.name) {
			return true
		}
	}
	return false
}

func (f *elementFolder) foldBlock(tree *mdast.Tree, stack []mdast.NodeID, tokens []htmlToken, pos *mdast.Position) ([]mdast.NodeID, error) {
	var run strings.Builder
	flush := func() error {
		err := f.flushRun(tree, stack[len(stack)-1], run.String(), pos)
		run.Reset()
		return err
	}

	for _, t := range tokens {
		if !isTag(t.kind) || !f.isFlow(t.name) {
			run.WriteString(t.raw)
			continue
		}
		switch t.kind {
		case html.StartTagToken:
			if err := flush(); err != nil {
				return nil, err
			}
			el := tree.Add(f.element(t, true, pos))
			tree.Append(stack[len(stack)-1], el)
			stack = append(stack, el)
		case html.SelfClosingTagToken:
			if err := flush(); err != nil {
				return nil, err
			}
			tree.Append(stack[len(stack)-1], tree.Add(f.element(t, true, pos)))
		case html.EndTagToken:
			top := tree.Node(stack[len(stack)-1])
			if len(stack) == 1 || top.Kind != mdast.KindElement || !strings.EqualFold(top.Name, t.name) {
				run.WriteString(t.raw)
				continue
			}
			if err := flush(); err != nil {
				return nil, err
			}
			tree.Node(stack[len(stack)-1]).CloseTag = t.raw
			stack = stack[:len(stack)-1]
		}
	}
	return stack, flush()
}

// flushRun attaches raw text found between flow tags. Runs holding markup
// become a paragraph of inline elements; plain runs are parsed as Markdown.
func (f *elementFolder) flushRun(tree *mdast.Tree, target mdast.NodeID, raw string, pos *mdast.Position) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	tokens := tokenizeHTML(trimmed)
	hasMarkup := false
	for _, t := range tokens {
		if t.kind != html.TextToken {
			hasMarkup = true
			break
		}
	}

	if !hasMarkup {
		sub, err := f.parser.convert([]byte(trimmed))
		if err != nil {
			return err
		}
		if err := f.fold(sub, sub.Root()); err != nil {
			return err
		}
		for _, id := range tree.GraftChildren(sub, sub.Root()) {
			if tree.Kind(id) == mdast.KindDefinition {
				continue
			}
			tree.Append(target, id)
		}
		return nil
	}

	para := tree.Add(mdast.Node{Kind: mdast.KindParagraph, Position: clonePosition(pos)})
	tree.Append(target, para)
	stack := []mdast.NodeID{para}
	for _, t := range tokens {
		top := stack[len(stack)-1]
		switch t.kind {
		case html.TextToken:
			tree.Append(top, tree.AddText(t.raw))
		case html.StartTagToken:
			el := tree.Add(f.element(t, false, pos))
			tree.Append(top, el)
			if _, void := voidElements[strings.ToLower(t.name)]; !void {
				stack = append(stack, el)
			}
		case html.SelfClosingTagToken:
			tree.Append(top, tree.Add(f.element(t, false, pos)))
		case html.EndTagToken:
			node := tree.Node(top)
			if len(stack) > 1 && strings.EqualFold(node.Name, t.name) {
				node.CloseTag = t.raw
				stack = stack[:len(stack)-1]
				continue
			}
			tree.Append(top, tree.Add(mdast.Node{Kind: mdast.KindHTML, Value: t.raw}))
		default:
			tree.Append(top, tree.Add(mdast.Node{Kind: mdast.KindHTML, Value: t.raw}))
		}
	}
	return nil
}

// foldInline pairs inline HTML open and close tags found among the children
// of parent into Element nodes.
func (f *elementFolder) foldInline(tree *mdast.Tree, parent mdast.NodeID) {
	children := tree.Children(parent)
	for _, child := range children {
		tree.Detach(child)
	}

	stack := []mdast.NodeID{parent}
	for _, child := range children {
		top := stack[len(stack)-1]
		n := tree.Node(child)

		switch n.Kind {
		case mdast.KindHTML:
			tokens := tokenizeHTML(n.Value)
			if len(tokens) != 1 || !isTag(tokens[0].kind) {
				break
			}
			t := tokens[0]
			switch t.kind {
			case html.StartTagToken:
				el := tree.Add(f.element(t, false, n.Position))
				tree.Append(top, el)
				if _, void := voidElements[strings.ToLower(t.name)]; !void {
					stack = append(stack, el)
				}
				continue
			case html.SelfClosingTagToken:
				tree.Append(top, tree.Add(f.element(t, false, n.Position)))
				continue
			case html.EndTagToken:
				node := tree.Node(top)
				if len(stack) > 1 && strings.EqualFold(node.Name, t.name) {
					node.CloseTag = t.raw
					stack = stack[:len(stack)-1]
					continue
				}
			}
		case mdast.KindEmphasis, mdast.KindStrong, mdast.KindDelete, mdast.KindLink:
			f.foldInline(tree, child)
		}
		tree.Append(top, child)
	}
}

func (f *elementFolder) element(t htmlToken, flow bool, pos *mdast.Position) mdast.Node {
	return mdast.Node{
		Kind:     mdast.KindElement,
		Name:     t.name,
		Attrs:    t.attrs,
		OpenTag:  t.raw,
		Flow:     flow,
		Position: clonePosition(pos),
	}
}

func clonePosition(pos *mdast.Position) *mdast.Position {
	if pos == nil {
		return nil
	}
	out := *pos
	return &out
}
