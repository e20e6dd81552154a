package paths

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() Layout {
	return DefaultLayout("/site", "19.x")
}

func TestVersionFromPath(t *testing.T) {
	layout := testLayout()

	cases := map[string]string{
		"content/18.x/docs/pages/installation.mdx":                                            "18.x",
		"/site/content/16.x/docs/pages/reference/cli.mdx":                                     "16.x",
		"/versioned_docs/version-17.x/admin-guides/access-controls/mfa-for-admin-actions.mdx": "17.x",
		"/site/versioned_docs/version-15.x/index.mdx":                                         "15.x",
		"/site/docs/installation.mdx":                                                         "19.x",
		"/site/docs/admin-guides/index.mdx":                                                   "19.x",
	}
	for input, want := range cases {
		got, err := layout.VersionFromPath(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestVersionFromPathPrefersMigratedPattern(t *testing.T) {
	layout := testLayout()

	got, err := layout.VersionFromPath("/elsewhere/content/12.x/versioned_docs/version-14.x/page.mdx")
	require.NoError(t, err)
	assert.Equal(t, "14.x", got)
}

func TestVersionFromPathUnresolvable(t *testing.T) {
	layout := testLayout()

	_, err := layout.VersionFromPath("/site/blog/post.mdx")
	var versionErr *VersionResolutionError
	require.ErrorAs(t, err, &versionErr)
	assert.Equal(t, "/site/blog/post.mdx", versionErr.Path)
}

func TestPreMigrationPath(t *testing.T) {
	layout := testLayout()

	cases := map[string]string{
		"/site/docs/admin-guides/intro.mdx":               "/site/content/19.x/docs/pages/admin-guides/intro.mdx",
		"/site/versioned_docs/version-17.x/install.mdx":   "/site/content/17.x/docs/pages/install.mdx",
		"/site/content/16.x/docs/pages/reference/cli.mdx": "/site/content/16.x/docs/pages/reference/cli.mdx",
		"/other/versioned_docs/version-15.x/a/b.mdx":      "/other/content/15.x/docs/pages/a/b.mdx",
	}
	for input, want := range cases {
		got, err := layout.PreMigrationPath(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestContext(t *testing.T) {
	layout := testLayout()

	ctx, err := layout.Context("/site/versioned_docs/version-17.x/install.mdx")
	require.NoError(t, err)
	assert.Equal(t, "17.x", ctx.Version)
	assert.False(t, ctx.IsLatest)
	assert.True(t, ctx.IsPostMigration)
	assert.Equal(t, "/site/content/17.x", ctx.ContentRootDir)

	ctx, err = layout.Context("/site/docs/install.mdx")
	require.NoError(t, err)
	assert.True(t, ctx.IsLatest)
	assert.True(t, ctx.IsPostMigration)
	assert.Equal(t, "/site/content/19.x", ctx.ContentRootDir)

	ctx, err = layout.Context("/site/content/18.x/docs/pages/install.mdx")
	require.NoError(t, err)
	assert.False(t, ctx.IsPostMigration)
	assert.Equal(t, ctx.FilePath, ctx.PreMigrationPath)
}

func TestRetargetHref(t *testing.T) {
	got, err := RetargetHref(
		"../../admin-guides/database-access/introduction.mdx",
		"/docs/pages/includes/database-access/standard-intro.mdx",
		"/docs/pages/admin-guides/database-access/sql-server.mdx",
		"/",
	)
	require.NoError(t, err)
	assert.Equal(t, "introduction.mdx", got)
}

func TestRetargetHrefRelativePartialPath(t *testing.T) {
	got, err := RetargetHref(
		"../../img/diagram.png#large",
		"docs/pages/includes/sso/setup.mdx",
		"/site/content/18.x/docs/pages/admin-guides/sso/okta.mdx",
		"/site/content/18.x",
	)
	require.NoError(t, err)
	assert.Equal(t, "../../img/diagram.png#large", got)
}

func TestRetargetHrefResolvesToSameFile(t *testing.T) {
	contentRoot := "/site/content/18.x"
	partial := "docs/pages/includes/a/b/partial.mdx"
	includers := []string{
		"/site/content/18.x/docs/pages/index.mdx",
		"/site/content/18.x/docs/pages/includes/a/b/other.mdx",
		"/site/content/18.x/docs/pages/deep/er/than/that/page.mdx",
	}
	hrefs := []string{
		"sibling.mdx",
		"./img/logo.svg",
		"../../../reference/cli.mdx",
		"../x/",
	}

	for _, includer := range includers {
		for _, href := range hrefs {
			got, err := RetargetHref(href, partial, includer, contentRoot)
			require.NoError(t, err)

			want := path.Join(contentRoot, path.Dir(partial), href)
			assert.Equal(t, want, path.Join(path.Dir(includer), got), "%s from %s", href, includer)
		}
	}
}

func TestUpdateAssetPath(t *testing.T) {
	layout := testLayout()

	ctx, err := layout.Context("/site/docs/admin-guides/intro.mdx")
	require.NoError(t, err)

	got, err := layout.UpdateAssetPath("../../img/overview.png", ctx)
	require.NoError(t, err)
	assert.Equal(t, "../../content/19.x/docs/img/overview.png", got)
	assert.Equal(t,
		path.Join(path.Dir(ctx.PreMigrationPath), "../../img/overview.png"),
		path.Join(path.Dir(ctx.FilePath), got),
	)

	got, err = layout.UpdateAssetPath("#Configure-The-Proxy", ctx)
	require.NoError(t, err)
	assert.Equal(t, "#configure-the-proxy", got)

	for _, unchanged := range []string{"./Setup.mdx#Step-One", "../../admin-guides/x.mdx#Foo", "?Tab=Cloud", "installation.mdx", "https://goteleport.com/Docs#Top", "/img/logo.png", "../reference/"} {
		got, err = layout.UpdateAssetPath(unchanged, ctx)
		require.NoError(t, err)
		assert.Equal(t, unchanged, got)
	}
}

func TestIsLocalAssetFile(t *testing.T) {
	layout := testLayout()

	assert.True(t, layout.IsLocalAssetFile("img/a.png"))
	assert.True(t, layout.IsLocalAssetFile("../files/config.yaml?raw"))
	assert.False(t, layout.IsLocalAssetFile("page.mdx"))
	assert.False(t, layout.IsLocalAssetFile("page.MD"))
	assert.False(t, layout.IsLocalAssetFile("folder/"))
	assert.False(t, layout.IsLocalAssetFile("#anchor"))
	assert.False(t, layout.IsLocalAssetFile("mailto:team@example.com"))
	assert.False(t, layout.IsLocalAssetFile("//cdn.example.com/a.png"))
	assert.False(t, layout.IsLocalAssetFile("/static/a.png"))
}
