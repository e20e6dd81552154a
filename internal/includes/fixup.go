package includes

import (
	"strings"

	"github.com/goliatone/go-partials/internal/mdast"
)

const (
	disclosureElement = "details"
	summaryElement    = "summary"
)

// ElevateSummary makes a `summary` element a direct child of its disclosure
// container. A paragraph holding only the summary is replaced by it; a
// summary sharing its paragraph with other content is moved to the front of
// the container and the paragraph stays. Other shapes are left alone.
func ElevateSummary(t *mdast.Tree, container mdast.NodeID) bool {
	changed := false
	for _, child := range t.Children(container) {
		if t.Kind(child) != mdast.KindParagraph {
			continue
		}
		kids := t.Children(child)
		if len(kids) == 1 && isElement(t, kids[0], summaryElement) {
			t.Detach(kids[0])
			t.Replace(child, kids[0])
			changed = true
			continue
		}
		for _, kid := range kids {
			if !isElement(t, kid, summaryElement) {
				continue
			}
			t.Detach(kid)
			t.Insert(container, 0, kid)
			changed = true
			break
		}
	}
	return changed
}

// elevateSummaries applies ElevateSummary to every disclosure element in t.
func elevateSummaries(t *mdast.Tree) {
	for _, id := range t.Find(t.Root(), mdast.KindElement) {
		if isElement(t, id, disclosureElement) {
			ElevateSummary(t, id)
		}
	}
}

func isElement(t *mdast.Tree, id mdast.NodeID, name string) bool {
	n := t.Node(id)
	return n.Kind == mdast.KindElement && strings.EqualFold(n.Name, name)
}
