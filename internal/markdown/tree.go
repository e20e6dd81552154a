package markdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-partials/internal/mdast"
)

// treeBuilder maps a goldmark AST onto an mdast arena. Text keeps its raw
// source spelling (escapes included) so the tree serialises back to the
// same Markdown.
type treeBuilder struct {
	source    []byte
	lineStart []int
	tree      *mdast.Tree
	// trimNext drops the space goldmark leaves after a task checkbox.
	trimNext bool
}

func newTreeBuilder(source []byte) *treeBuilder {
	starts := []int{0}
	for i, c := range source {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &treeBuilder{source: source, lineStart: starts, tree: mdast.New()}
}

func (b *treeBuilder) build(doc ast.Node, refs []parser.Reference) *mdast.Tree {
	root := b.tree.Root()
	b.children(root, doc)

	sort.SliceStable(refs, func(i, j int) bool {
		return bytes.Compare(refs[i].Label(), refs[j].Label()) < 0
	})
	for _, ref := range refs {
		b.tree.Append(root, b.tree.Add(mdast.Node{
			Kind:  mdast.KindDefinition,
			Label: string(ref.Label()),
			URL:   string(ref.Destination()),
			Title: string(ref.Title()),
		}))
	}

	if len(b.source) > 0 {
		pos := b.position(0, len(b.source))
		b.tree.Node(root).Position = &pos
	}
	return b.tree
}

func (b *treeBuilder) children(parent mdast.NodeID, n ast.Node) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		b.node(parent, child)
	}
}

func (b *treeBuilder) node(parent mdast.NodeID, n ast.Node) {
	switch v := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		b.container(parent, n, mdast.Node{Kind: mdast.KindParagraph})
	case *ast.Heading:
		b.container(parent, n, mdast.Node{Kind: mdast.KindHeading, Depth: v.Level})
	case *ast.ThematicBreak:
		b.leaf(parent, n, mdast.Node{Kind: mdast.KindThematicBreak})
	case *ast.Blockquote:
		b.container(parent, n, mdast.Node{Kind: mdast.KindBlockquote})
	case *ast.List:
		b.container(parent, n, mdast.Node{
			Kind:    mdast.KindList,
			Ordered: v.IsOrdered(),
			Start:   v.Start,
			Tight:   v.IsTight,
			Marker:  v.Marker,
		})
	case *ast.ListItem:
		b.container(parent, n, mdast.Node{Kind: mdast.KindListItem})
	case *ast.FencedCodeBlock:
		node := mdast.Node{Kind: mdast.KindCode, Value: b.lines(n)}
		if v.Info != nil {
			info := strings.TrimSpace(string(v.Info.Segment.Value(b.source)))
			lang := string(v.Language(b.source))
			node.Lang = lang
			node.Meta = strings.TrimSpace(strings.TrimPrefix(info, lang))
		}
		b.leaf(parent, n, node)
	case *ast.CodeBlock:
		b.leaf(parent, n, mdast.Node{Kind: mdast.KindCode, Value: b.lines(n)})
	case *ast.HTMLBlock:
		value := b.lines(n)
		if v.HasClosure() {
			value += string(v.ClosureLine.Value(b.source))
		}
		b.leaf(parent, n, mdast.Node{Kind: mdast.KindHTML, Value: value})
	case *ast.Text:
		b.text(parent, v)
	case *ast.String:
		b.appendText(parent, string(v.Value), nil)
	case *ast.CodeSpan:
		var value strings.Builder
		for child := v.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				value.Write(t.Segment.Value(b.source))
			}
		}
		b.inlineLeaf(parent, v, mdast.Node{Kind: mdast.KindInlineCode, Value: value.String()})
	case *ast.Emphasis:
		kind := mdast.KindEmphasis
		if v.Level >= 2 {
			kind = mdast.KindStrong
		}
		b.inlineContainer(parent, v, mdast.Node{Kind: kind, Marker: b.emphasisMarker(v)})
	case *ast.Link:
		b.inlineContainer(parent, v, mdast.Node{
			Kind:  mdast.KindLink,
			URL:   string(v.Destination),
			Title: string(v.Title),
		})
	case *ast.Image:
		b.inlineLeaf(parent, v, mdast.Node{
			Kind:  mdast.KindImage,
			URL:   string(v.Destination),
			Title: string(v.Title),
			Alt:   b.rawText(v),
		})
	case *ast.AutoLink:
		b.inlineLeaf(parent, v, mdast.Node{
			Kind:     mdast.KindLink,
			URL:      string(v.URL(b.source)),
			Autolink: true,
		})
	case *ast.RawHTML:
		var value strings.Builder
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			value.Write(seg.Value(b.source))
		}
		b.inlineLeaf(parent, v, mdast.Node{Kind: mdast.KindHTML, Value: value.String()})
	case *east.Strikethrough:
		b.inlineContainer(parent, v, mdast.Node{Kind: mdast.KindDelete})
	case *east.TaskCheckBox:
		checked := v.IsChecked
		if item := b.enclosingListItem(parent); item != mdast.NoNode {
			b.tree.Node(item).Checked = &checked
		}
		b.trimNext = true
	default:
		b.children(parent, n)
	}
}

func (b *treeBuilder) container(parent mdast.NodeID, n ast.Node, node mdast.Node) {
	id := b.tree.Add(node)
	b.tree.Append(parent, id)
	b.children(id, n)
	b.setBlockPosition(id, n)
}

func (b *treeBuilder) leaf(parent mdast.NodeID, n ast.Node, node mdast.Node) {
	id := b.tree.Add(node)
	b.tree.Append(parent, id)
	b.setBlockPosition(id, n)
}

func (b *treeBuilder) inlineContainer(parent mdast.NodeID, n ast.Node, node mdast.Node) {
	id := b.tree.Add(node)
	b.tree.Append(parent, id)
	b.children(id, n)
	if start, stop, ok := b.inlineSpan(n); ok {
		pos := b.position(start, stop)
		b.tree.Node(id).Position = &pos
	}
}

func (b *treeBuilder) inlineLeaf(parent mdast.NodeID, n ast.Node, node mdast.Node) {
	id := b.tree.Add(node)
	b.tree.Append(parent, id)
	if start, stop, ok := b.inlineSpan(n); ok {
		pos := b.position(start, stop)
		b.tree.Node(id).Position = &pos
	}
}

func (b *treeBuilder) text(parent mdast.NodeID, t *ast.Text) {
	value := string(t.Segment.Value(b.source))
	if b.trimNext {
		value = strings.TrimLeft(value, " \t")
		b.trimNext = false
	}
	if t.SoftLineBreak() {
		value += "\n"
	}
	pos := b.position(t.Segment.Start, t.Segment.Stop)
	if value != "" {
		b.appendText(parent, value, &pos)
	}
	if t.HardLineBreak() {
		brk := b.tree.Add(mdast.Node{Kind: mdast.KindBreak})
		b.tree.Append(parent, brk)
	}
}

// appendText merges value into a preceding text sibling so a run of plain
// text is a single node.
func (b *treeBuilder) appendText(parent mdast.NodeID, value string, pos *mdast.Position) {
	children := b.tree.Node(parent).Children
	if n := len(children); n > 0 {
		prev := b.tree.Node(children[n-1])
		if prev.Kind == mdast.KindText {
			prev.Value += value
			if prev.Position != nil && pos != nil {
				prev.Position.End = pos.End
			}
			return
		}
	}
	id := b.tree.Add(mdast.Node{Kind: mdast.KindText, Value: value, Position: pos})
	b.tree.Append(parent, id)
}

func (b *treeBuilder) enclosingListItem(id mdast.NodeID) mdast.NodeID {
	for current := id; current != mdast.NoNode; current = b.tree.Parent(current) {
		if b.tree.Kind(current) == mdast.KindListItem {
			return current
		}
	}
	return mdast.NoNode
}

func (b *treeBuilder) lines(n ast.Node) string {
	lines := n.Lines()
	if lines == nil {
		return ""
	}
	var out strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out.Write(seg.Value(b.source))
	}
	return out.String()
}

// rawText returns the source spelling of the inline content below n.
func (b *treeBuilder) rawText(n ast.Node) string {
	var out strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			out.Write(t.Segment.Value(b.source))
			if t.SoftLineBreak() {
				out.WriteByte('\n')
			}
		case *ast.String:
			out.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return out.String()
}

func (b *treeBuilder) emphasisMarker(n *ast.Emphasis) byte {
	start, _, ok := b.inlineSpan(n)
	if ok && start > 0 {
		if c := b.source[start-1]; c == '*' || c == '_' {
			return c
		}
	}
	return '*'
}

// inlineSpan returns the source range covered by the text below n.
func (b *treeBuilder) inlineSpan(n ast.Node) (int, int, bool) {
	start, stop := -1, -1
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var seg text.Segment
		switch t := child.(type) {
		case *ast.Text:
			seg = t.Segment
		case *ast.RawHTML:
			if t.Segments.Len() == 0 {
				return ast.WalkContinue, nil
			}
			seg = t.Segments.At(0)
			seg.Stop = t.Segments.At(t.Segments.Len() - 1).Stop
		default:
			return ast.WalkContinue, nil
		}
		if start < 0 || seg.Start < start {
			start = seg.Start
		}
		if seg.Stop > stop {
			stop = seg.Stop
		}
		return ast.WalkContinue, nil
	})
	return start, stop, start >= 0
}

func (b *treeBuilder) setBlockPosition(id mdast.NodeID, n ast.Node) {
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			pos := b.position(lines.At(0).Start, lines.At(lines.Len()-1).Stop)
			b.tree.Node(id).Position = &pos
			return
		}
	}
	// Containers span their first and last positioned descendants.
	var first, last *mdast.Position
	mdast.Walk(b.tree, id, func(c *mdast.Cursor) mdast.Action {
		if c.Node() == id {
			return mdast.Continue
		}
		if pos := b.tree.Node(c.Node()).Position; pos != nil {
			if first == nil {
				first = pos
			}
			last = pos
		}
		return mdast.Continue
	})
	if first != nil {
		pos := mdast.Position{Start: first.Start, End: last.End}
		b.tree.Node(id).Position = &pos
	}
}

func (b *treeBuilder) position(start, stop int) mdast.Position {
	return mdast.Position{Start: b.point(start), End: b.point(stop)}
}

func (b *treeBuilder) point(offset int) mdast.Point {
	line := sort.Search(len(b.lineStart), func(i int) bool {
		return b.lineStart[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	return mdast.Point{
		Line:   line + 1,
		Column: offset - b.lineStart[line] + 1,
		Offset: offset,
	}
}
