package mdast

import (
	"fmt"
	"strings"
)

// Tree owns every node of one document. The zero value is not usable; call
// New.
type Tree struct {
	nodes []Node
	root  NodeID
}

// New returns a tree holding a single empty root node.
func New() *Tree {
	t := &Tree{}
	t.root = t.Add(Node{Kind: KindRoot})
	return t
}

// Root returns the id of the root node.
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of nodes allocated in the arena, detached ones
// included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node stored at id. The pointer stays valid until the next
// call to Add or Graft.
func (t *Tree) Node(id NodeID) *Node {
	if !t.valid(id) {
		panic(fmt.Sprintf("mdast: node %d out of range", id))
	}
	return &t.nodes[id]
}

// Kind is shorthand for t.Node(id).Kind.
func (t *Tree) Kind(id NodeID) Kind {
	return t.Node(id).Kind
}

// Parent returns the parent of id, or NoNode for the root and detached nodes.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.Node(id).Parent
}

// Children returns a copy of the child list of id.
func (t *Tree) Children(id NodeID) []NodeID {
	return append([]NodeID(nil), t.Node(id).Children...)
}

// Add allocates a detached node and returns its id. Parent and Children of n
// are ignored.
func (t *Tree) Add(n Node) NodeID {
	n.Parent = NoNode
	n.Children = nil
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// AddText is shorthand for adding a detached text node.
func (t *Tree) AddText(value string) NodeID {
	return t.Add(Node{Kind: KindText, Value: value})
}

// Append attaches detached children to the end of parent's child list.
func (t *Tree) Append(parent NodeID, children ...NodeID) {
	t.Insert(parent, len(t.Node(parent).Children), children...)
}

// Insert attaches detached children to parent starting at index.
func (t *Tree) Insert(parent NodeID, index int, children ...NodeID) {
	p := t.Node(parent)
	if index < 0 || index > len(p.Children) {
		panic(fmt.Sprintf("mdast: insert index %d out of range for node %d", index, parent))
	}
	for _, child := range children {
		if t.Node(child).Parent != NoNode {
			panic(fmt.Sprintf("mdast: node %d is already attached", child))
		}
		if child == parent || t.IsAncestor(child, parent) {
			panic(fmt.Sprintf("mdast: node %d cannot contain itself", child))
		}
	}

	next := make([]NodeID, 0, len(p.Children)+len(children))
	next = append(next, p.Children[:index]...)
	next = append(next, children...)
	next = append(next, p.Children[index:]...)
	p.Children = next

	for _, child := range children {
		t.nodes[child].Parent = parent
	}
}

// IndexOf returns the position of id in its parent's child list, or -1.
func (t *Tree) IndexOf(id NodeID) int {
	parent := t.Node(id).Parent
	if parent == NoNode {
		return -1
	}
	for i, child := range t.nodes[parent].Children {
		if child == id {
			return i
		}
	}
	return -1
}

// Replace swaps id for the given detached nodes in id's parent, keeping their
// order. With no replacements id is simply removed. id is left detached.
func (t *Tree) Replace(id NodeID, with ...NodeID) {
	parent := t.Node(id).Parent
	if parent == NoNode {
		panic(fmt.Sprintf("mdast: cannot replace detached node %d", id))
	}
	index := t.IndexOf(id)
	t.Detach(id)
	t.Insert(parent, index, with...)
}

// Detach removes id from its parent's child list. Its own sub-tree is kept.
func (t *Tree) Detach(id NodeID) {
	n := t.Node(id)
	if n.Parent == NoNode {
		return
	}
	p := &t.nodes[n.Parent]
	for i, child := range p.Children {
		if child == id {
			p.Children = append(p.Children[:i:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = NoNode
}

// IsAncestor reports whether ancestor lies on the parent chain of id.
func (t *Tree) IsAncestor(ancestor, id NodeID) bool {
	for current := t.Node(id).Parent; current != NoNode; current = t.nodes[current].Parent {
		if current == ancestor {
			return true
		}
	}
	return false
}

// Graft deep-copies the sub-tree rooted at id in src into t and returns the
// detached copy. The copy shares no slices with src.
func (t *Tree) Graft(src *Tree, id NodeID) NodeID {
	n := *src.Node(id)
	children := n.Children

	n.Attrs = append([]Attr(nil), n.Attrs...)
	if n.Checked != nil {
		checked := *n.Checked
		n.Checked = &checked
	}
	if n.Position != nil {
		pos := *n.Position
		n.Position = &pos
	}

	copied := t.Add(n)
	for _, child := range children {
		t.Append(copied, t.Graft(src, child))
	}
	return copied
}

// GraftChildren grafts every child of id in src and returns the detached
// copies in order.
func (t *Tree) GraftChildren(src *Tree, id NodeID) []NodeID {
	children := src.Node(id).Children
	out := make([]NodeID, 0, len(children))
	for _, child := range children {
		out = append(out, t.Graft(src, child))
	}
	return out
}

// Text concatenates the literal values found under id in document order.
func (t *Tree) Text(id NodeID) string {
	var b strings.Builder
	t.collectText(id, &b)
	return b.String()
}

func (t *Tree) collectText(id NodeID, b *strings.Builder) {
	n := t.Node(id)
	switch n.Kind {
	case KindText, KindInlineCode, KindCode, KindHTML:
		b.WriteString(n.Value)
	case KindBreak:
		b.WriteByte('\n')
	}
	for _, child := range n.Children {
		t.collectText(child, b)
	}
}

// Find returns the ids of every attached node below (and including) id whose
// kind is one of kinds, in document order.
func (t *Tree) Find(id NodeID, kinds ...Kind) []NodeID {
	var out []NodeID
	Walk(t, id, func(c *Cursor) Action {
		k := t.Kind(c.Node())
		for _, want := range kinds {
			if k == want {
				out = append(out, c.Node())
				break
			}
		}
		return Continue
	})
	return out
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}
