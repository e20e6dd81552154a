// Package markdown parses documentation pages. It splits front matter from
// the body, turns Markdown/MDX text into mdast trees with goldmark (folding
// HTML and MDX flow elements into Element nodes), discovers pages on an
// fs.FS, and renders resolved Markdown to HTML.
package markdown
