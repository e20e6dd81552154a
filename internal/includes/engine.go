// Package includes expands `(!path k="v"!)` directives in a page tree.
//
// Document partials (.md/.mdx) are parsed into a sub-tree, have their
// relative links retargeted to the including page and replace the paragraph
// that held the directive. Other partials, and every directive inside a code
// block, are substituted as plain text. Partials may include partials; the
// active chain is tracked to stop cycles.
package includes

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/internal/mdast"
	"github.com/goliatone/go-partials/internal/params"
	"github.com/goliatone/go-partials/internal/partials"
	"github.com/goliatone/go-partials/internal/paths"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// DefaultMaxDepth bounds how deeply partials may nest.
const DefaultMaxDepth = 16

// Modes selects what a pass does. Validate reports diagnostics, Rewrite
// splices partial content into the tree; both may be set.
type Modes struct {
	Validate bool
	Rewrite  bool
}

// Lint only reports.
var Lint = Modes{Validate: true}

// Resolve only rewrites.
var Resolve = Modes{Rewrite: true}

// TreeParser turns partial text into a tree.
type TreeParser interface {
	ParseTree(source []byte) (*mdast.Tree, error)
}

// PartialRenderer loads a partial and substitutes its parameters.
type PartialRenderer interface {
	Render(ctx context.Context, partialPath string, overrides params.Assignments) (partials.Rendered, error)
}

// Result summarises one pass over a page.
type Result struct {
	FilePath    string
	Version     string
	Diagnostics []interfaces.Diagnostic
	// Partials lists every partial loaded during the pass, relative to the
	// project root, in first-use order.
	Partials []string
	// Expanded counts directives replaced in the page tree.
	Expanded int
}

// Engine runs inclusion passes. It holds no per-page state and may be shared
// between goroutines processing different pages.
type Engine struct {
	layout       paths.Layout
	parser       TreeParser
	loader       PartialRenderer
	maxDepth     int
	rebaseAssets bool
	sink         interfaces.DiagnosticSink
	logger       interfaces.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxDepth overrides DefaultMaxDepth. Values below one are ignored.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithAssetRebase toggles rewriting of asset hrefs on pages in the migrated
// layout. Enabled by default.
func WithAssetRebase(enabled bool) Option {
	return func(e *Engine) {
		e.rebaseAssets = enabled
	}
}

// WithSink forwards every diagnostic to sink as well as the Result.
func WithSink(sink interfaces.DiagnosticSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// NewEngine wires an engine over the given layout, parser and partial loader.
func NewEngine(layout paths.Layout, parser TreeParser, loader PartialRenderer, opts ...Option) *Engine {
	e := &Engine{
		layout:       layout,
		parser:       parser,
		loader:       loader,
		maxDepth:     DefaultMaxDepth,
		rebaseAssets: true,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout returns the directory layout the engine resolves paths with.
func (e *Engine) Layout() paths.Layout {
	return e.layout
}

// Process runs one pass over tree, the parsed content of the page at
// filePath. Malformed directives are reported and returned joined as the
// error; the rest of the page is still processed. A page path that matches no
// known layout fails the pass before the tree is touched.
func (e *Engine) Process(ctx context.Context, tree *mdast.Tree, filePath string, modes Modes) (Result, error) {
	result := Result{FilePath: filePath}

	page, err := e.layout.Context(filePath)
	if err != nil {
		return result, err
	}
	result.Version = page.Version

	if !modes.Validate && !modes.Rewrite {
		return result, nil
	}

	p := &pass{
		engine: e,
		ctx:    ctx,
		modes:  modes,
		page:   page,
		result: &result,
		seen:   map[string]bool{},
		logger: logging.WithPageContext(e.logger, filePath, page.Version, modes.String()),
	}

	p.expandTree(tree, filePath, nil)
	if p.fatal != nil {
		return result, p.fatal
	}

	if modes.Rewrite && e.rebaseAssets && page.IsPostMigration {
		if err := p.rebaseAssets(tree); err != nil {
			return result, err
		}
	}

	p.logger.Debug("includes.engine.completed",
		"expanded", result.Expanded,
		"partials", len(result.Partials),
		"diagnostics", len(result.Diagnostics),
	)
	return result, errors.Join(p.formatErrs...)
}

// ProcessSource parses source with the engine's parser and runs Process on
// the resulting tree.
func (e *Engine) ProcessSource(ctx context.Context, source []byte, filePath string, modes Modes) (*mdast.Tree, Result, error) {
	tree, err := e.parser.ParseTree(source)
	if err != nil {
		return nil, Result{FilePath: filePath}, err
	}
	result, err := e.Process(ctx, tree, filePath, modes)
	return tree, result, err
}

// String names the modes for logs and reports.
func (m Modes) String() string {
	switch {
	case m.Validate && m.Rewrite:
		return "lint+resolve"
	case m.Rewrite:
		return "resolve"
	case m.Validate:
		return "lint"
	}
	return ""
}

// pass is the state of one Process call.
type pass struct {
	engine     *Engine
	ctx        context.Context
	modes      Modes
	page       paths.Context
	result     *Result
	seen       map[string]bool
	formatErrs []error
	fatal      error
	logger     interfaces.Logger
}

// expandTree walks tree, the content of file, and handles every directive.
// chain holds the partials currently being expanded.
func (p *pass) expandTree(tree *mdast.Tree, file string, chain []string) {
	mdast.Walk(tree, tree.Root(), func(c *mdast.Cursor) mdast.Action {
		if p.fatal != nil {
			return mdast.Stop
		}
		n := tree.Node(c.Node())
		switch n.Kind {
		case mdast.KindCode:
			p.expandCode(tree, c.Node(), file, chain)
			return mdast.SkipChildren
		case mdast.KindParagraph:
			p.expandParagraph(c, file, chain)
			return mdast.SkipChildren
		case mdast.KindHeading:
			p.reportTexts(tree, c.Node(), file, msgWrongContainer)
			return mdast.SkipChildren
		case mdast.KindHTML:
			if len(Scan(n.Value)) > 0 {
				p.report(file, n.Position, interfaces.SeverityWarning, msgWrongContainer)
			}
			return mdast.SkipChildren
		case mdast.KindInlineCode, mdast.KindDefinition:
			return mdast.SkipChildren
		}
		return mdast.Continue
	})
}

// expandParagraph handles a paragraph that is exactly one directive, the
// full-page case, and reports directives sharing a paragraph with other
// content.
func (p *pass) expandParagraph(c *mdast.Cursor, file string, chain []string) {
	tree := c.Tree()
	id := c.Node()

	source := mdast.Markdown(tree, id)
	raw, sole := IsSoleDirective(source)
	if !sole {
		p.reportSource(tree, id, source, file, msgNotAlone)
		return
	}

	pos := tree.Node(id).Position
	directive, overrides, ok := p.directive(raw, file, pos)
	if !ok {
		return
	}
	rendered, partialPath, ok := p.load(directive, overrides, file, pos, chain)
	if !ok {
		return
	}
	nested := append(append([]string(nil), chain...), partialPath)
	partialFile := path.Join(p.page.ProjectRoot, partialPath)

	if !p.engine.layout.IsDocument(directive.Target) {
		text := p.expandText(rendered.Text, partialFile, tree.Node(id).Position, nested)
		if p.modes.Rewrite {
			for _, child := range tree.Children(id) {
				tree.Detach(child)
			}
			tree.Append(id, tree.AddText(strings.TrimRight(text, "\n")))
			p.result.Expanded++
		}
		return
	}

	sub, err := p.engine.parser.ParseTree([]byte(rendered.Text))
	if err != nil {
		p.logger.Warn("includes.engine.partial_parse_failed", "partial", partialPath, "error", err)
		p.report(file, pos, interfaces.SeverityError, "Could not parse partial "+directive.Target+": "+err.Error())
		return
	}

	elevateSummaries(sub)
	if err := p.retarget(sub, directive.Target); err != nil {
		p.fatal = err
		return
	}
	p.expandTree(sub, partialFile, nested)
	if p.fatal != nil || !p.modes.Rewrite {
		return
	}

	c.Replace(tree.GraftChildren(sub, sub.Root())...)
	p.result.Expanded++
}

// expandCode substitutes every directive in a code block as plain text.
func (p *pass) expandCode(tree *mdast.Tree, id mdast.NodeID, file string, chain []string) {
	n := tree.Node(id)
	if len(Scan(n.Value)) == 0 {
		return
	}
	out := p.expandText(n.Value, file, n.Position, chain)
	if p.modes.Rewrite && out != n.Value {
		tree.Node(id).Value = out
		p.result.Expanded++
	}
}

// expandText replaces each directive in text with the partial's rendered
// text, recursively. Directives that fail to resolve stay verbatim.
func (p *pass) expandText(text, file string, pos *mdast.Position, chain []string) string {
	found := Scan(text)
	if len(found) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, occ := range found {
		b.WriteString(text[last:occ.Start])
		last = occ.End
		replacement := occ.Raw

		if directive, overrides, ok := p.directive(occ.Raw, file, pos); ok {
			if rendered, partialPath, ok := p.load(directive, overrides, file, pos, chain); ok {
				nested := append(append([]string(nil), chain...), partialPath)
				replacement = p.expandText(strings.TrimSuffix(rendered.Text, "\n"), path.Join(p.page.ProjectRoot, partialPath), pos, nested)
			}
		}
		if p.fatal != nil {
			return text
		}
		b.WriteString(replacement)
	}
	b.WriteString(text[last:])
	return b.String()
}

// directive parses raw into a directive and its overrides. Grammar errors
// are kept for the caller of Process and reported in lint mode.
func (p *pass) directive(raw, file string, pos *mdast.Position) (params.Directive, params.Assignments, bool) {
	directive, err := params.SplitDirective(raw)
	if err == nil {
		var overrides params.Assignments
		if overrides, err = directive.Params(); err == nil {
			return directive, overrides, true
		}
	}
	p.formatError(err, file, pos)
	return params.Directive{}, nil, false
}

// load renders the directive's partial. Missing partials and cycles are
// reported and leave the directive untouched.
func (p *pass) load(d params.Directive, overrides params.Assignments, file string, pos *mdast.Position, chain []string) (partials.Rendered, string, bool) {
	partialPath := p.engine.layout.PartialPath(p.page.Version, d.Target)

	if err := p.checkChain(partialPath, chain); err != nil {
		p.logger.Warn("includes.engine.cycle", "partial", partialPath, "error", err)
		p.report(file, pos, interfaces.SeverityError, err.Error())
		return partials.Rendered{}, "", false
	}

	rendered, err := p.engine.loader.Render(p.ctx, partialPath, overrides)
	if err != nil {
		var notFound *partials.NotFoundError
		var formatErr *params.FormatError
		switch {
		case errors.As(err, &notFound):
			missing := &MissingPartialError{Target: d.Target, Path: partialPath, Includer: file, Err: err}
			p.logger.Warn("includes.engine.partial_missing", "partial", partialPath, "includer", file)
			p.report(file, pos, interfaces.SeverityError, missing.Error())
		case errors.As(err, &formatErr):
			p.formatError(err, file, pos)
		default:
			p.logger.Error("includes.engine.partial_load_failed", "partial", partialPath, "error", err)
			p.fatal = err
		}
		return partials.Rendered{}, "", false
	}

	if !p.seen[partialPath] {
		p.seen[partialPath] = true
		p.result.Partials = append(p.result.Partials, partialPath)
	}
	for _, name := range rendered.Unresolved {
		p.report(file, pos, interfaces.SeverityWarning, "Partial "+d.Target+" has no value for {{ "+name+" }}")
	}
	return rendered, partialPath, true
}

func (p *pass) checkChain(partialPath string, chain []string) error {
	for _, active := range chain {
		if active == partialPath {
			return &CycleError{Chain: append(append([]string(nil), chain...), partialPath)}
		}
	}
	if len(chain) >= p.engine.maxDepth {
		return &CycleError{Chain: append(append([]string(nil), chain...), partialPath), Depth: p.engine.maxDepth}
	}
	return nil
}

// retarget rewrites relative references in a partial's sub-tree so they
// resolve from the including page. Migrated pages are addressed through
// their legacy-layout twin, which is where partial targets live.
func (p *pass) retarget(sub *mdast.Tree, target string) error {
	partialPath := strings.TrimPrefix(target, "/")
	for _, id := range sub.Find(sub.Root(), mdast.KindLink, mdast.KindImage, mdast.KindDefinition) {
		n := sub.Node(id)
		if !paths.IsRelativeReference(n.URL) {
			continue
		}
		href, err := paths.RetargetHref(n.URL, partialPath, p.page.PreMigrationPath, p.page.ContentRootDir)
		if err != nil {
			return err
		}
		n.URL = href
	}
	return nil
}

func (p *pass) rebaseAssets(tree *mdast.Tree) error {
	for _, id := range tree.Find(tree.Root(), mdast.KindLink, mdast.KindImage, mdast.KindDefinition) {
		n := tree.Node(id)
		href, err := p.engine.layout.UpdateAssetPath(n.URL, p.page)
		if err != nil {
			return err
		}
		n.URL = href
	}
	return nil
}

// reportTexts raises message once per directive in the serialised content
// of id. Scanning the serialised text catches directives whose quoted values
// contain inline markup, which the parser splits across several nodes.
// Directives written inside inline code spans are left alone.
func (p *pass) reportTexts(tree *mdast.Tree, id mdast.NodeID, file, message string) {
	p.reportSource(tree, id, mdast.Markdown(tree, id), file, message)
}

func (p *pass) reportSource(tree *mdast.Tree, id mdast.NodeID, source, file, message string) {
	quoted := map[string]int{}
	for _, code := range tree.Find(id, mdast.KindInlineCode) {
		for _, occ := range Scan(tree.Node(code).Value) {
			quoted[occ.Raw]++
		}
	}
	pos := tree.Node(id).Position
	for _, occ := range Scan(source) {
		if quoted[occ.Raw] > 0 {
			quoted[occ.Raw]--
			continue
		}
		p.report(file, pos, interfaces.SeverityWarning, message)
	}
}

func (p *pass) formatError(err error, file string, pos *mdast.Position) {
	p.formatErrs = append(p.formatErrs, err)
	p.logger.Warn("includes.engine.format_invalid", "file", file, "error", err)
	p.report(file, pos, interfaces.SeverityError, err.Error())
}

func (p *pass) report(file string, pos *mdast.Position, severity interfaces.Severity, message string) {
	if !p.modes.Validate {
		return
	}
	d := newDiagnostic(file, pos, severity, message)
	p.result.Diagnostics = append(p.result.Diagnostics, d)
	if p.engine.sink != nil {
		p.engine.sink.Report(d)
	}
}
