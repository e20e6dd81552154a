package markdown

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-partials/pkg/interfaces"
)

const pageWithFrontMatter = "---\ntitle: Database Access\ndescription: Connect databases\nlabels:\n - how-to\n - zero-trust\nsidebar_position: 3\n---\n\n(!docs/pages/includes/database-access/standard-intro.mdx!)\n"

func TestParseFrontMatter(t *testing.T) {
	fm, raw, body, err := ParseFrontMatter([]byte(pageWithFrontMatter))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Database Access" || fm.Description != "Connect databases" {
		t.Fatalf("unexpected front matter %+v", fm)
	}
	if len(fm.Labels) != 2 || fm.Labels[0] != "how-to" {
		t.Fatalf("unexpected labels %#v", fm.Labels)
	}
	if fm.Custom["sidebar_position"] != 3 {
		t.Fatalf("expected custom key to be kept, got %#v", fm.Custom)
	}
	if string(raw)+string(body) != pageWithFrontMatter {
		t.Fatalf("raw front matter and body should reassemble the page")
	}
}

func TestParseFrontMatter_NoFrontMatter(t *testing.T) {
	source := "# Plain\n\nNo metadata here.\n"
	_, raw, body, err := ParseFrontMatter([]byte(source))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if len(raw) != 0 {
		t.Fatalf("expected no raw front matter, got %q", raw)
	}
	if string(body) != source {
		t.Fatalf("expected body to equal the source, got %q", body)
	}
}

func TestAssemble(t *testing.T) {
	doc, err := BuildDocument("docs/page.mdx", []byte(pageWithFrontMatter), time.Time{})
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	out := Assemble(doc, []byte("Resolved body.\n"))
	if string(out) != string(doc.RawFrontMatter)+"Resolved body.\n" {
		t.Fatalf("unexpected assembled output %q", out)
	}
	if len(doc.Checksum) != 32 {
		t.Fatalf("expected sha256 checksum, got %d bytes", len(doc.Checksum))
	}
}

func TestLoaderLoadDirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"docs/index.mdx":             {Data: []byte("# Home\n")},
		"docs/guides/setup.md":       {Data: []byte(pageWithFrontMatter)},
		"docs/img/logo.png":          {Data: []byte{0x89, 0x50}},
		"docs/includes/fragment.mdx": {Data: []byte("fragment\n")},
	}

	loader := NewLoader(fsys, LoaderConfig{Recursive: true})

	docs, err := loader.LoadDirectory(context.Background(), "docs", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(docs))
	}
	if docs[0].FilePath != "docs/guides/setup.md" || docs[0].FrontMatter.Title != "Database Access" {
		t.Fatalf("unexpected first document %+v", docs[0])
	}

	flat := false
	docs, err = loader.LoadDirectory(context.Background(), "docs", interfaces.LoadOptions{Recursive: &flat})
	if err != nil {
		t.Fatalf("LoadDirectory (flat): %v", err)
	}
	if len(docs) != 1 || docs[0].FilePath != "docs/index.mdx" {
		t.Fatalf("expected only the top-level page, got %d", len(docs))
	}

	docs, err = loader.LoadDirectory(context.Background(), "docs", interfaces.LoadOptions{Pattern: "*.md"})
	if err != nil {
		t.Fatalf("LoadDirectory (pattern): %v", err)
	}
	if len(docs) != 1 || docs[0].FilePath != "docs/guides/setup.md" {
		t.Fatalf("expected pattern to select the .md page")
	}
}

func TestLoaderLoadCancelled(t *testing.T) {
	loader := NewLoader(fstest.MapFS{}, LoaderConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := loader.Load(ctx, "docs/index.mdx"); err == nil {
		t.Fatalf("expected cancelled context to abort the load")
	}
}

func TestLoaderMatches(t *testing.T) {
	loader := NewLoader(fstest.MapFS{}, LoaderConfig{})
	if !loader.Matches("docs/a.MDX") || loader.Matches("docs/a.png") {
		t.Fatalf("unexpected extension matching")
	}
}
