package markdown

import (
	"strings"
	"testing"

	"github.com/goliatone/go-partials/internal/mdast"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

func parseTree(t *testing.T, source string) *mdast.Tree {
	t.Helper()
	tree, err := NewGoldmarkParser(interfaces.ParseOptions{}).ParseTree([]byte(source))
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	return tree
}

func TestParseTree_LinksAndImages(t *testing.T) {
	tree := parseTree(t, "# Title\n\nSee [intro](../intro.mdx) and ![diagram](./img/a.png \"Overview\").\n")

	root := tree.Children(tree.Root())
	if len(root) != 2 {
		t.Fatalf("expected heading and paragraph, got %d children", len(root))
	}
	if heading := tree.Node(root[0]); heading.Kind != mdast.KindHeading || heading.Depth != 1 {
		t.Fatalf("expected level 1 heading, got %v depth %d", heading.Kind, heading.Depth)
	}

	links := tree.Find(tree.Root(), mdast.KindLink)
	if len(links) != 1 || tree.Node(links[0]).URL != "../intro.mdx" {
		t.Fatalf("unexpected links: %v", links)
	}
	if got := tree.Text(links[0]); got != "intro" {
		t.Fatalf("expected link text intro, got %q", got)
	}

	images := tree.Find(tree.Root(), mdast.KindImage)
	if len(images) != 1 {
		t.Fatalf("expected one image, got %d", len(images))
	}
	img := tree.Node(images[0])
	if img.URL != "./img/a.png" || img.Title != "Overview" || img.Alt != "diagram" {
		t.Fatalf("unexpected image node: %+v", img)
	}
}

func TestParseTree_DirectiveStaysSingleText(t *testing.T) {
	source := "Intro.\n\n(!docs/pages/includes/example.mdx var1=\"this is a value\" var2=\"Installation has failed!\"!)\n"
	tree := parseTree(t, source)

	root := tree.Children(tree.Root())
	if len(root) != 2 {
		t.Fatalf("expected two paragraphs, got %d", len(root))
	}
	para := tree.Node(root[1])
	if para.Kind != mdast.KindParagraph || len(para.Children) != 1 {
		t.Fatalf("expected paragraph with a single child, got %v with %d", para.Kind, len(para.Children))
	}
	text := tree.Node(para.Children[0])
	want := `(!docs/pages/includes/example.mdx var1="this is a value" var2="Installation has failed!"!)`
	if text.Kind != mdast.KindText || text.Value != want {
		t.Fatalf("unexpected text node %v %q", text.Kind, text.Value)
	}
	if para.Position == nil || para.Position.Start.Line != 3 {
		t.Fatalf("expected paragraph to start on line 3, got %+v", para.Position)
	}
}

func TestParseTree_CodeBlock(t *testing.T) {
	tree := parseTree(t, "```yaml title=\"teleport.yaml\"\n(!examples/config.yaml!)\n```\n")

	codes := tree.Find(tree.Root(), mdast.KindCode)
	if len(codes) != 1 {
		t.Fatalf("expected one code block, got %d", len(codes))
	}
	code := tree.Node(codes[0])
	if code.Lang != "yaml" || code.Meta != `title="teleport.yaml"` {
		t.Fatalf("unexpected info string lang=%q meta=%q", code.Lang, code.Meta)
	}
	if code.Value != "(!examples/config.yaml!)\n" {
		t.Fatalf("unexpected code value %q", code.Value)
	}
}

func TestParseTree_DetailsFolding(t *testing.T) {
	source := "<details>\n<summary>More</summary>\n\nHidden [link](a.mdx)\n\n</details>\n"
	tree := parseTree(t, source)

	root := tree.Children(tree.Root())
	if len(root) != 1 {
		t.Fatalf("expected a single details element, got %d root children", len(root))
	}
	details := tree.Node(root[0])
	if details.Kind != mdast.KindElement || details.Name != "details" || !details.Flow {
		t.Fatalf("expected flow details element, got %+v", details)
	}
	if details.CloseTag != "</details>" {
		t.Fatalf("expected closing tag to be recorded, got %q", details.CloseTag)
	}
	if len(details.Children) != 2 {
		t.Fatalf("expected summary paragraph and body paragraph, got %d", len(details.Children))
	}

	wrapper := tree.Node(details.Children[0])
	if wrapper.Kind != mdast.KindParagraph || len(wrapper.Children) != 1 {
		t.Fatalf("expected summary to be wrapped in a paragraph, got %v", wrapper.Kind)
	}
	summary := tree.Node(wrapper.Children[0])
	if summary.Kind != mdast.KindElement || summary.Name != "summary" || tree.Text(wrapper.Children[0]) != "More" {
		t.Fatalf("unexpected summary element %+v", summary)
	}

	links := tree.Find(details.Children[1], mdast.KindLink)
	if len(links) != 1 || tree.Node(links[0]).URL != "a.mdx" {
		t.Fatalf("expected link inside details body")
	}
}

func TestParseTree_InlineElementBlockInsideDetails(t *testing.T) {
	tree := parseTree(t, "<details>\n\n<summary>Title</summary> extra text\n\n</details>\n")

	root := tree.Children(tree.Root())
	if len(root) != 1 {
		t.Fatalf("expected a single details element, got %d root children", len(root))
	}
	details := tree.Node(root[0])
	if len(details.Children) != 1 {
		t.Fatalf("expected one paragraph inside details, got %d", len(details.Children))
	}
	para := tree.Node(details.Children[0])
	if para.Kind != mdast.KindParagraph || len(para.Children) != 2 {
		t.Fatalf("expected paragraph with summary and text, got %v with %d children", para.Kind, len(para.Children))
	}
	summary := tree.Node(para.Children[0])
	if summary.Kind != mdast.KindElement || summary.Name != "summary" {
		t.Fatalf("expected summary element, got %+v", summary)
	}
	if got := tree.Node(para.Children[1]).Value; got != " extra text" {
		t.Fatalf("unexpected trailing text %q", got)
	}
}

func TestParseTree_ComponentFolding(t *testing.T) {
	source := "<Admonition type=\"tip\" title=\"Note\">\n\nUse the ![icon](../img/icon.svg).\n\n</Admonition>\n"
	tree := parseTree(t, source)

	root := tree.Children(tree.Root())
	if len(root) != 1 {
		t.Fatalf("expected one component, got %d", len(root))
	}
	el := tree.Node(root[0])
	if el.Name != "Admonition" {
		t.Fatalf("expected original-case component name, got %q", el.Name)
	}
	if value, ok := el.Attr("type"); !ok || value != "tip" {
		t.Fatalf("expected type attribute, got %q", value)
	}
	if len(tree.Find(root[0], mdast.KindImage)) != 1 {
		t.Fatalf("expected image inside component")
	}

	out := mdast.Markdown(tree, tree.Root())
	if out != source {
		t.Fatalf("component did not round trip:\n%q\n%q", out, source)
	}
}

func TestParseTree_InlineElements(t *testing.T) {
	tree := parseTree(t, "Press <kbd>Enter</kbd> to continue.\n")

	elements := tree.Find(tree.Root(), mdast.KindElement)
	if len(elements) != 1 {
		t.Fatalf("expected one inline element, got %d", len(elements))
	}
	kbd := tree.Node(elements[0])
	if kbd.Flow || kbd.Name != "kbd" || tree.Text(elements[0]) != "Enter" {
		t.Fatalf("unexpected inline element %+v", kbd)
	}
}

func TestParseTree_TaskListAndDefinitions(t *testing.T) {
	tree := parseTree(t, "- [x] done\n- [ ] todo\n\nRead [the docs][guide].\n\n[guide]: ./guide.mdx \"Guide\"\n")

	items := tree.Find(tree.Root(), mdast.KindListItem)
	if len(items) != 2 {
		t.Fatalf("expected two list items, got %d", len(items))
	}
	first, second := tree.Node(items[0]), tree.Node(items[1])
	if first.Checked == nil || !*first.Checked || second.Checked == nil || *second.Checked {
		t.Fatalf("unexpected checkbox state")
	}

	defs := tree.Find(tree.Root(), mdast.KindDefinition)
	if len(defs) != 1 {
		t.Fatalf("expected one definition, got %d", len(defs))
	}
	def := tree.Node(defs[0])
	if def.Label != "guide" || def.URL != "./guide.mdx" || def.Title != "Guide" {
		t.Fatalf("unexpected definition %+v", def)
	}

	links := tree.Find(tree.Root(), mdast.KindLink)
	if len(links) != 1 || tree.Node(links[0]).URL != "./guide.mdx" {
		t.Fatalf("expected reference link to resolve to definition")
	}
}

func TestMarkdownRoundTrip(t *testing.T) {
	source := strings.Join([]string{
		"# Title",
		"",
		"Some *text* and `code` with a [link](./a.mdx).",
		"",
		"- one",
		"- two",
		"",
		"> quoted",
		"",
		"```go",
		"fmt.Println()",
		"```",
		"",
	}, "\n")

	tree := parseTree(t, source)
	if got := mdast.Markdown(tree, tree.Root()); got != source {
		t.Fatalf("round trip mismatch:\n%q\n%q", got, source)
	}
}

func TestGoldmarkParser_Render(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Render([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_RenderWithOptions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.RenderWithOptions([]byte("<span>raw</span>"), interfaces.ParseOptions{SafeMode: true})
	if err != nil {
		t.Fatalf("RenderWithOptions: %v", err)
	}
	if strings.Contains(string(html), "<span>") {
		t.Fatalf("expected raw HTML to be omitted in safe mode, got %q", html)
	}
}
