package mdast

import (
	"strconv"
	"strings"
)

// Markdown serialises the sub-tree rooted at id back into Markdown/MDX text.
// Text values are written verbatim, so escapes kept by the parser survive.
func Markdown(t *Tree, id NodeID) string {
	w := &mdWriter{tree: t}
	n := t.Node(id)
	var out string
	if n.Kind.IsBlock() || (n.Kind == KindElement && n.Flow) {
		out = w.block(id)
	} else {
		out = w.inline(id)
	}
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

type mdWriter struct {
	tree *Tree
}

func (w *mdWriter) blocks(ids []NodeID, sep string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if out := w.block(id); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, sep)
}

func (w *mdWriter) block(id NodeID) string {
	n := w.tree.Node(id)
	switch n.Kind {
	case KindRoot:
		return w.blocks(n.Children, "\n\n")
	case KindParagraph:
		return w.inlines(n.Children)
	case KindHeading:
		depth := min(max(n.Depth, 1), 6)
		return strings.Repeat("#", depth) + " " + w.inlines(n.Children)
	case KindThematicBreak:
		return "***"
	case KindBlockquote:
		return prefixLines(w.blocks(n.Children, "\n\n"), "> ", ">")
	case KindList:
		return w.list(n)
	case KindListItem:
		return w.listItem(n, "-")
	case KindCode:
		return codeFence(n)
	case KindHTML:
		return strings.TrimRight(n.Value, "\n")
	case KindDefinition:
		return "[" + n.Label + "]: " + destination(n.URL) + title(n.Title)
	case KindElement:
		if !n.Flow {
			return w.inline(id)
		}
		body := w.blocks(n.Children, "\n\n")
		if body == "" {
			return n.OpenTag + n.CloseTag
		}
		return n.OpenTag + "\n\n" + body + "\n\n" + n.CloseTag
	default:
		return w.inline(id)
	}
}

func (w *mdWriter) list(n *Node) string {
	sep := "\n\n"
	if n.Tight {
		sep = "\n"
	}
	items := make([]string, 0, len(n.Children))
	for i, item := range n.Children {
		marker := "-"
		if n.Marker != 0 {
			marker = string(n.Marker)
		}
		if n.Ordered {
			delim := "."
			if n.Marker == ')' {
				delim = ")"
			}
			marker = strconv.Itoa(n.Start+i) + delim
		}
		items = append(items, w.listItem(w.tree.Node(item), marker))
	}
	return strings.Join(items, sep)
}

func (w *mdWriter) listItem(n *Node, marker string) string {
	sep := "\n\n"
	if parent := n.Parent; parent != NoNode && w.tree.nodes[parent].Kind == KindList && w.tree.nodes[parent].Tight {
		sep = "\n"
	}
	body := w.blocks(n.Children, sep)
	if n.Checked != nil {
		box := "[ ] "
		if *n.Checked {
			box = "[x] "
		}
		body = box + body
	}
	indent := strings.Repeat(" ", len(marker)+1)
	if body == "" {
		return marker
	}
	return marker + " " + indentFollowing(body, indent)
}

func (w *mdWriter) inlines(ids []NodeID) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(w.inline(id))
	}
	return b.String()
}

func (w *mdWriter) inline(id NodeID) string {
	n := w.tree.Node(id)
	switch n.Kind {
	case KindText:
		return n.Value
	case KindBreak:
		return "\\\n"
	case KindEmphasis:
		return delimited(w.inlines(n.Children), n.Marker, 1)
	case KindStrong:
		return delimited(w.inlines(n.Children), n.Marker, 2)
	case KindDelete:
		return "~~" + w.inlines(n.Children) + "~~"
	case KindInlineCode:
		return inlineCode(n.Value)
	case KindLink:
		if n.Autolink {
			return "<" + n.URL + ">"
		}
		return "[" + w.inlines(n.Children) + "](" + destination(n.URL) + title(n.Title) + ")"
	case KindImage:
		return "![" + n.Alt + "](" + destination(n.URL) + title(n.Title) + ")"
	case KindHTML:
		return n.Value
	case KindElement:
		return n.OpenTag + w.inlines(n.Children) + n.CloseTag
	default:
		if n.Kind.IsBlock() {
			return w.block(id)
		}
		return ""
	}
}

func delimited(content string, marker byte, count int) string {
	if marker != '*' && marker != '_' {
		marker = '*'
	}
	delim := strings.Repeat(string(marker), count)
	return delim + content + delim
}

func codeFence(n *Node) string {
	fence := "```"
	for strings.Contains(n.Value, fence) {
		fence += "`"
	}
	info := n.Lang
	if n.Meta != "" {
		info += " " + n.Meta
	}
	value := strings.TrimSuffix(n.Value, "\n")
	if value == "" {
		return fence + info + "\n" + fence
	}
	return fence + info + "\n" + value + "\n" + fence
}

func inlineCode(value string) string {
	fence := "`"
	for strings.Contains(value, fence) {
		fence += "`"
	}
	if strings.HasPrefix(value, "`") || strings.HasSuffix(value, "`") {
		return fence + " " + value + " " + fence
	}
	return fence + value + fence
}

func destination(url string) string {
	if url == "" || strings.ContainsAny(url, " ()<>") {
		return "<" + url + ">"
	}
	return url
}

func title(t string) string {
	if t == "" {
		return ""
	}
	return ` "` + strings.ReplaceAll(t, `"`, `\"`) + `"`
}

func prefixLines(text, prefix, blankPrefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = blankPrefix
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func indentFollowing(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
