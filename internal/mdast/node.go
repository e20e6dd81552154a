// Package mdast is an arena-backed Markdown syntax tree. Nodes live in a
// single slice owned by a Tree and reference each other through NodeID
// indexes, so splicing a sub-tree into a parent is an explicit edit of the
// parent's child list.
package mdast

import "fmt"

// Kind is the closed set of node variants a Tree can hold.
type Kind uint8

const (
	KindRoot Kind = iota
	KindParagraph
	KindHeading
	KindThematicBreak
	KindBlockquote
	KindList
	KindListItem
	KindCode
	KindHTML
	KindDefinition
	KindElement
	KindText
	KindEmphasis
	KindStrong
	KindDelete
	KindInlineCode
	KindBreak
	KindLink
	KindImage
)

var kindNames = [...]string{
	KindRoot:          "root",
	KindParagraph:     "paragraph",
	KindHeading:       "heading",
	KindThematicBreak: "thematicBreak",
	KindBlockquote:    "blockquote",
	KindList:          "list",
	KindListItem:      "listItem",
	KindCode:          "code",
	KindHTML:          "html",
	KindDefinition:    "definition",
	KindElement:       "element",
	KindText:          "text",
	KindEmphasis:      "emphasis",
	KindStrong:        "strong",
	KindDelete:        "delete",
	KindInlineCode:    "inlineCode",
	KindBreak:         "break",
	KindLink:          "link",
	KindImage:         "image",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsBlock reports whether nodes of kind k sit in block (flow) position.
// Elements are block or inline depending on Node.Flow.
func (k Kind) IsBlock() bool {
	switch k {
	case KindRoot, KindParagraph, KindHeading, KindThematicBreak, KindBlockquote,
		KindList, KindListItem, KindCode, KindHTML, KindDefinition:
		return true
	case KindElement, KindText, KindEmphasis, KindStrong, KindDelete, KindInlineCode,
		KindBreak, KindLink, KindImage:
		return false
	}
	return false
}

// HasURL reports whether nodes of kind k carry a URL that may need rewriting.
func (k Kind) HasURL() bool {
	switch k {
	case KindLink, KindImage, KindDefinition:
		return true
	default:
		return false
	}
}

// NodeID addresses a node inside its Tree.
type NodeID int

// NoNode marks a missing parent or an unset reference.
const NoNode NodeID = -1

// Point is a location in the parsed source.
type Point struct {
	Line   int
	Column int
	Offset int
}

// Position spans the source range a node was parsed from. Nodes created
// after parsing carry no position.
type Position struct {
	Start Point
	End   Point
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", p.Start.Line, p.Start.Column, p.End.Line, p.End.Column)
}

// Attr is one attribute of an Element, kept in source order.
type Attr struct {
	Key   string
	Value string
}

// Node is one entry of the arena. Which fields are meaningful depends on Kind.
type Node struct {
	Kind     Kind
	Parent   NodeID
	Children []NodeID

	// Value holds the literal content of text, code, inlineCode and html nodes.
	Value string

	// Code blocks.
	Lang string
	Meta string

	// Links, images and definitions.
	URL      string
	Title    string
	Alt      string
	Label    string
	Autolink bool

	// Elements. OpenTag and CloseTag keep the raw markup so serialisation
	// reproduces the author's spelling.
	Name     string
	Attrs    []Attr
	OpenTag  string
	CloseTag string
	Flow     bool

	// Headings.
	Depth int

	// Lists and list items. Marker is also the delimiter byte of emphasis
	// and strong nodes.
	Ordered bool
	Start   int
	Tight   bool
	Marker  byte
	Checked *bool

	Position *Position
}

// Attr returns the value of the named element attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, attr := range n.Attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}
