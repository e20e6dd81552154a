package includes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-partials/internal/mdast"
)

func TestScan(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{name: "none", text: "plain text (with parens)!"},
		{name: "single", text: "(!docs/pages/includes/a.mdx!)", want: []string{"(!docs/pages/includes/a.mdx!)"}},
		{
			name: "bang inside quotes",
			text: `(!a.mdx msg="Installation has failed!)" other="x"!) tail`,
			want: []string{`(!a.mdx msg="Installation has failed!)" other="x"!)`},
		},
		{
			name: "escaped quote",
			text: `(!a.mdx v="say \"hi!)\""!)`,
			want: []string{`(!a.mdx v="say \"hi!)\""!)`},
		},
		{
			name: "several per line",
			text: "$ (!a.txt!) && (!b.txt!)\n",
			want: []string{"(!a.txt!)", "(!b.txt!)"},
		},
		{name: "unterminated", text: "(!a.mdx and more", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, occ := range Scan(tc.text) {
				assert.Equal(t, occ.Raw, tc.text[occ.Start:occ.End])
				got = append(got, occ.Raw)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsSoleDirective(t *testing.T) {
	raw, ok := IsSoleDirective("  (!a.mdx k=\"v\"!)\n")
	assert.True(t, ok)
	assert.Equal(t, `(!a.mdx k="v"!)`, raw)

	_, ok = IsSoleDirective("see (!a.mdx!)")
	assert.False(t, ok)
	_, ok = IsSoleDirective("(!a.mdx!) (!b.mdx!)")
	assert.False(t, ok)
}

func details(t *mdast.Tree) mdast.NodeID {
	id := t.Add(mdast.Node{Kind: mdast.KindElement, Name: "details", Flow: true, OpenTag: "<details>", CloseTag: "</details>"})
	t.Append(t.Root(), id)
	return id
}

func summary(t *mdast.Tree) mdast.NodeID {
	id := t.Add(mdast.Node{Kind: mdast.KindElement, Name: "summary", OpenTag: "<summary>", CloseTag: "</summary>"})
	t.Append(id, t.AddText("More"))
	return id
}

func TestElevateSummarySoleChild(t *testing.T) {
	tree := mdast.New()
	container := details(tree)
	wrapper := tree.Add(mdast.Node{Kind: mdast.KindParagraph})
	sum := summary(tree)
	tree.Append(wrapper, sum)
	body := tree.Add(mdast.Node{Kind: mdast.KindParagraph})
	tree.Append(body, tree.AddText("Body"))
	tree.Append(container, wrapper, body)

	require.True(t, ElevateSummary(tree, container))
	assert.Equal(t, []mdast.NodeID{sum, body}, tree.Children(container))
	assert.Equal(t, mdast.NoNode, tree.Parent(wrapper))
	assert.Equal(t, "<details>\n\n<summary>More</summary>\n\nBody\n\n</details>\n", mdast.Markdown(tree, tree.Root()))
}

func TestElevateSummarySharedParagraph(t *testing.T) {
	tree := mdast.New()
	container := details(tree)
	intro := tree.Add(mdast.Node{Kind: mdast.KindParagraph})
	sum := summary(tree)
	tree.Append(intro, tree.AddText("Lead "), sum)
	tree.Append(container, intro)

	require.True(t, ElevateSummary(tree, container))
	assert.Equal(t, []mdast.NodeID{sum, intro}, tree.Children(container))
	assert.Equal(t, "Lead ", tree.Text(intro))
}

func TestElevateSummaryNoop(t *testing.T) {
	tree := mdast.New()
	container := details(tree)
	code := tree.Add(mdast.Node{Kind: mdast.KindCode, Value: "<summary>x</summary>\n"})
	tree.Append(container, code)

	assert.False(t, ElevateSummary(tree, container))
	assert.Equal(t, []mdast.NodeID{code}, tree.Children(container))
}
