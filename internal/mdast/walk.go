package mdast

// Action tells Walk how to continue after visiting a node.
type Action int

const (
	// Continue descends into the node's children.
	Continue Action = iota
	// SkipChildren moves on to the next sibling.
	SkipChildren
	// Stop ends the walk.
	Stop
)

// Visitor is called once per node in depth-first pre-order.
type Visitor func(c *Cursor) Action

// Cursor identifies the node being visited and lets the visitor splice it.
type Cursor struct {
	tree     *Tree
	id       NodeID
	parent   NodeID
	index    int
	replaced bool
	inserted int
}

// Tree returns the tree being walked.
func (c *Cursor) Tree() *Tree { return c.tree }

// Node returns the id of the visited node.
func (c *Cursor) Node() NodeID { return c.id }

// Parent returns the visited node's parent, NoNode for the walk root when it
// is detached.
func (c *Cursor) Parent() NodeID { return c.parent }

// Index returns the position of the visited node in its parent.
func (c *Cursor) Index() int { return c.index }

// Replace splices detached nodes into the visited node's position. The
// inserted nodes are not visited; the walk resumes after them. Replacing the
// walk root is not allowed.
func (c *Cursor) Replace(with ...NodeID) {
	if c.replaced {
		panic("mdast: node replaced twice during one visit")
	}
	if c.parent == NoNode {
		panic("mdast: cannot replace the walk root")
	}
	c.tree.Replace(c.id, with...)
	c.replaced = true
	c.inserted = len(with)
}

// Replaced reports whether Replace was called during this visit.
func (c *Cursor) Replaced() bool { return c.replaced }

// Walk visits id and its descendants depth-first. Visitors may edit the
// child lists of the visited node's ancestors and siblings; Walk re-reads the
// parent's child list after each visit.
func Walk(t *Tree, id NodeID, visit Visitor) {
	c := &Cursor{tree: t, id: id, parent: NoNode, index: -1}
	switch visit(c) {
	case Stop, SkipChildren:
		return
	}
	walkChildren(t, id, visit)
}

func walkChildren(t *Tree, parent NodeID, visit Visitor) bool {
	for i := 0; i < len(t.nodes[parent].Children); {
		id := t.nodes[parent].Children[i]
		c := &Cursor{tree: t, id: id, parent: parent, index: i}

		action := visit(c)
		if action == Stop {
			return false
		}
		if c.replaced {
			i += c.inserted
			continue
		}
		if t.nodes[id].Parent != parent {
			// The visitor moved the node elsewhere; the same index now holds
			// its successor.
			continue
		}
		if action == Continue && !walkChildren(t, id, visit) {
			return false
		}
		i = t.IndexOf(id) + 1
	}
	return true
}
