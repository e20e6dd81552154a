package includes

import (
	"context"
	"path"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-partials/internal/markdown"
	"github.com/goliatone/go-partials/internal/mdast"
	"github.com/goliatone/go-partials/internal/params"
	"github.com/goliatone/go-partials/internal/partials"
	"github.com/goliatone/go-partials/internal/paths"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

const (
	projectRoot = "/site"
	legacyPage  = "/site/content/18.x/docs/pages/admin-guides/sso/okta.mdx"
)

func newEngine(t *testing.T, files map[string]string, opts ...Option) *Engine {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	layout := paths.DefaultLayout(projectRoot, "19.x")
	parser := markdown.NewGoldmarkParser(interfaces.ParseOptions{})
	return NewEngine(layout, parser, partials.NewLoader(fsys), opts...)
}

func process(t *testing.T, e *Engine, source, page string, modes Modes) (*mdast.Tree, Result, error) {
	t.Helper()
	tree, result, err := e.ProcessSource(context.Background(), []byte(source), page, modes)
	require.NotNil(t, tree)
	return tree, result, err
}

func TestProcessRetargetsPartialReferences(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/sso/setup.mdx": "{{ provider=\"Generic\" }}\n" +
			"Configure {{ provider }}.\n\n" +
			"![diagram](../../img/diagram.png)\n\n" +
			"See [the guide](../../admin-guides/sso/overview.mdx#Step-1) or [docs](https://goteleport.com/docs).\n",
	})
	source := "# Okta\n\n(!docs/pages/includes/sso/setup.mdx provider=\"Okta\"!)\n\nDone.\n"

	tree, result, err := process(t, engine, source, legacyPage, Resolve)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expanded)
	assert.Equal(t, "18.x", result.Version)
	assert.Equal(t, []string{"content/18.x/docs/pages/includes/sso/setup.mdx"}, result.Partials)

	images := tree.Find(tree.Root(), mdast.KindImage)
	require.Len(t, images, 1)
	partialDir := "/site/content/18.x/docs/pages/includes/sso"
	pageDir := path.Dir(legacyPage)
	assert.Equal(t,
		path.Join(partialDir, "../../img/diagram.png"),
		path.Join(pageDir, tree.Node(images[0]).URL),
	)

	links := tree.Find(tree.Root(), mdast.KindLink)
	require.Len(t, links, 2)
	assert.Equal(t, "overview.mdx#Step-1", tree.Node(links[0]).URL)
	assert.Equal(t, "https://goteleport.com/docs", tree.Node(links[1]).URL)

	out := mdast.Markdown(tree, tree.Root())
	assert.Contains(t, out, "# Okta\n\nConfigure Okta.\n\n![diagram](../../img/diagram.png)")
	assert.Contains(t, out, "\n\nDone.\n")
	assert.NotContains(t, out, "(!")
}

func TestProcessLintRequiresDirectiveAlone(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/a.mdx": "Alpha.\n",
	})
	source := "Some text (!docs/pages/includes/a.mdx!) here.\n"

	tree, result, err := process(t, engine, source, legacyPage, Lint)
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)

	d := result.Diagnostics[0]
	assert.Equal(t, "Includes only works if they are the only content on the line", d.Message)
	assert.Equal(t, DiagnosticSource, d.Source)
	assert.Equal(t, DiagnosticRule, d.Rule)
	assert.Equal(t, legacyPage, d.FilePath)
	assert.Equal(t, 1, d.Line)
	assert.Equal(t, source, mdast.Markdown(tree, tree.Root()))
}

func TestProcessLintFindsDirectivesSplitByInlineMarkup(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/a.mdx": "Alpha.\n",
	})
	cases := map[string]string{
		"plain":    `Some text (!docs/pages/includes/a.mdx v="x"!) here.`,
		"emphasis": `Some text (!docs/pages/includes/a.mdx v="*bold* word"!) here.`,
		"code":     "Some text (!docs/pages/includes/a.mdx v=\"`code` word\"!) here.",
		"link":     `Some text (!docs/pages/includes/a.mdx v="[x](y.md)"!) here.`,
		"two":      `(!docs/pages/includes/a.mdx v="*a*"!) and (!docs/pages/includes/a.mdx!)`,
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			_, result, err := process(t, engine, source+"\n", legacyPage, Lint)
			require.NoError(t, err)
			want := 1
			if name == "two" {
				want = 2
			}
			require.Len(t, result.Diagnostics, want)
			for _, d := range result.Diagnostics {
				assert.Equal(t, "Includes only works if they are the only content on the line", d.Message)
				assert.Equal(t, 1, d.Line)
			}
		})
	}
}

func TestProcessLintLeavesTreeUntouched(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/a.mdx": "Alpha.\n",
	})
	source := "Intro.\n\n(!docs/pages/includes/a.mdx!)\n"

	tree, result, err := process(t, engine, source, legacyPage, Lint)
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.Zero(t, result.Expanded)
	assert.Equal(t, source, mdast.Markdown(tree, tree.Root()))
}

func TestProcessMissingPartialKeepsDirective(t *testing.T) {
	engine := newEngine(t, nil)
	source := "(!docs/pages/includes/nope.mdx!)\n"

	tree, result, err := process(t, engine, source, legacyPage, Modes{Validate: true, Rewrite: true})
	require.NoError(t, err)

	assert.Equal(t, source, mdast.Markdown(tree, tree.Root()))
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0].Message, "docs/pages/includes/nope.mdx")
	assert.Equal(t, interfaces.SeverityError, result.Diagnostics[0].Severity)

	_, result, err = process(t, engine, source, legacyPage, Resolve)
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
}

func TestProcessCodeBlockSubstitution(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/config.yaml": "version: v3\nteleport:\n  nodename: ../not-a-link\n",
		"content/18.x/docs/pages/includes/login.txt":   "{{ user=\"bob\" }}\ntsh login --user={{ user }}\n",
	})
	source := "```yaml\n(!docs/pages/includes/config.yaml!)\n```\n\n" +
		"```code\n$ (!docs/pages/includes/login.txt user=\"alice\"!)\n$ (!docs/pages/includes/login.txt!)\n```\n"

	tree, result, err := process(t, engine, source, legacyPage, Resolve)
	require.NoError(t, err)

	codes := tree.Find(tree.Root(), mdast.KindCode)
	require.Len(t, codes, 2)
	assert.Equal(t, "version: v3\nteleport:\n  nodename: ../not-a-link\n", tree.Node(codes[0]).Value)
	assert.Equal(t, "$ tsh login --user=alice\n$ tsh login --user=bob\n", tree.Node(codes[1]).Value)
	assert.Equal(t, 2, result.Expanded)
}

func TestProcessPlainTextPartialInParagraph(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/version.txt": "14.2.1\n",
	})

	tree, _, err := process(t, engine, "(!docs/pages/includes/version.txt!)\n", legacyPage, Resolve)
	require.NoError(t, err)
	assert.Equal(t, "14.2.1\n", mdast.Markdown(tree, tree.Root()))
}

func TestProcessNestedPartialsAndCycles(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/a.mdx": "Alpha.\n\n(!docs/pages/includes/b.mdx!)\n",
		"content/18.x/docs/pages/includes/b.mdx": "Beta.\n\n(!docs/pages/includes/a.mdx!)\n",
	})

	tree, result, err := process(t, engine, "(!docs/pages/includes/a.mdx!)\n", legacyPage, Modes{Validate: true, Rewrite: true})
	require.NoError(t, err)

	assert.Equal(t, "Alpha.\n\nBeta.\n\n(!docs/pages/includes/a.mdx!)\n", mdast.Markdown(tree, tree.Root()))
	assert.Equal(t, []string{
		"content/18.x/docs/pages/includes/a.mdx",
		"content/18.x/docs/pages/includes/b.mdx",
	}, result.Partials)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "/site/content/18.x/docs/pages/includes/b.mdx", result.Diagnostics[0].FilePath)
	assert.Contains(t, result.Diagnostics[0].Message, "cycle")
}

func TestProcessMaxDepth(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/one.mdx":   "(!docs/pages/includes/two.mdx!)\n",
		"content/18.x/docs/pages/includes/two.mdx":   "(!docs/pages/includes/three.mdx!)\n",
		"content/18.x/docs/pages/includes/three.mdx": "Three.\n",
	}, WithMaxDepth(2))

	_, result, err := process(t, engine, "(!docs/pages/includes/one.mdx!)\n", legacyPage, Lint)
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0].Message, "max depth 2")
}

func TestProcessElevatesSummaryInsidePartials(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/details.mdx": "<details>\n<summary>Show more</summary>\n\nHidden text.\n\n</details>\n",
	})

	tree, _, err := process(t, engine, "(!docs/pages/includes/details.mdx!)\n", legacyPage, Resolve)
	require.NoError(t, err)

	root := tree.Children(tree.Root())
	require.Len(t, root, 1)
	details := tree.Node(root[0])
	require.Equal(t, "details", details.Name)
	first := tree.Node(details.Children[0])
	assert.Equal(t, mdast.KindElement, first.Kind)
	assert.Equal(t, "summary", first.Name)
}

func TestProcessElevatesSummaryFollowedByText(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/details.mdx": "<details>\n\n<summary>Title</summary> extra text\n\nBody.\n\n</details>\n",
	})

	tree, _, err := process(t, engine, "(!docs/pages/includes/details.mdx!)\n", legacyPage, Resolve)
	require.NoError(t, err)

	root := tree.Children(tree.Root())
	require.Len(t, root, 1)
	details := tree.Node(root[0])
	require.Equal(t, "details", details.Name)
	require.NotEmpty(t, details.Children)
	first := tree.Node(details.Children[0])
	assert.Equal(t, mdast.KindElement, first.Kind)
	assert.Equal(t, "summary", first.Name)
	assert.Equal(t, "Title", tree.Text(details.Children[0]))
	assert.Contains(t, mdast.Markdown(tree, root[0]), "extra text")
}

func TestProcessRebasesAssetsOnMigratedPages(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/19.x/docs/pages/includes/logo.mdx": "![logo](../img/logo.png)\n\nRead [more](../intro.mdx#Setup).\n",
	})
	page := "/site/docs/admin-guides/intro.mdx"

	tree, result, err := process(t, engine, "(!docs/pages/includes/logo.mdx!)\n", page, Resolve)
	require.NoError(t, err)
	assert.Equal(t, "19.x", result.Version)

	images := tree.Find(tree.Root(), mdast.KindImage)
	require.Len(t, images, 1)
	assert.Equal(t,
		"/site/content/19.x/docs/pages/img/logo.png",
		path.Join(path.Dir(page), tree.Node(images[0]).URL),
	)

	links := tree.Find(tree.Root(), mdast.KindLink)
	require.Len(t, links, 1)
	assert.Equal(t, "../intro.mdx#Setup", tree.Node(links[0]).URL)
}

func TestProcessFormatErrorsAreReturned(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/a.mdx": "Alpha.\n",
	})
	source := "(!docs/pages/includes/a.mdx title='single'!)\n\n(!docs/pages/includes/a.mdx!)\n"

	tree, result, err := process(t, engine, source, legacyPage, Modes{Validate: true, Rewrite: true})
	var formatErr *params.FormatError
	require.ErrorAs(t, err, &formatErr)

	assert.Equal(t, 1, result.Expanded)
	assert.Equal(t, "(!docs/pages/includes/a.mdx title='single'!)\n\nAlpha.\n", mdast.Markdown(tree, tree.Root()))
	require.Len(t, result.Diagnostics, 1)
}

func TestProcessUnresolvedVariablesWarn(t *testing.T) {
	engine := newEngine(t, map[string]string{
		"content/18.x/docs/pages/includes/a.mdx": "Connect to {{ cluster }}.\n",
	})

	tree, result, err := process(t, engine, "(!docs/pages/includes/a.mdx!)\n", legacyPage, Modes{Validate: true, Rewrite: true})
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, interfaces.SeverityWarning, result.Diagnostics[0].Severity)
	assert.Contains(t, result.Diagnostics[0].Message, "{{ cluster }}")
	assert.Equal(t, "Connect to {{ cluster }}.\n", mdast.Markdown(tree, tree.Root()))
}

func TestProcessReportsWrongContainers(t *testing.T) {
	engine := newEngine(t, nil)
	source := "## (!docs/pages/includes/title.mdx!)\n\nUse `(!docs/pages/includes/x.mdx!)` to include.\n"

	_, result, err := process(t, engine, source, legacyPage, Lint)
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "Includes only works in paragraphs and code blocks", result.Diagnostics[0].Message)
}

func TestProcessUnknownLayoutIsFatal(t *testing.T) {
	engine := newEngine(t, nil)

	_, _, err := process(t, engine, "Hello.\n", "/site/blog/post.mdx", Lint)
	var versionErr *paths.VersionResolutionError
	require.ErrorAs(t, err, &versionErr)
}

func TestProcessForwardsToSink(t *testing.T) {
	sink := &Collector{}
	engine := newEngine(t, nil, WithSink(sink))

	_, result, err := process(t, engine, "(!docs/pages/includes/nope.mdx!)\n", legacyPage, Lint)
	require.NoError(t, err)
	assert.Equal(t, result.Diagnostics, sink.Diagnostics())
	assert.Equal(t, 1, sink.Len())
}
