package includes

import (
	"sync"

	"github.com/goliatone/go-partials/internal/mdast"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// Every diagnostic raised by the engine carries this source and rule so
// report consumers can filter by origin.
const (
	DiagnosticSource = "partials"
	DiagnosticRule   = "includes"
)

const (
	msgNotAlone       = "Includes only works if they are the only content on the line"
	msgWrongContainer = "Includes only works in paragraphs and code blocks"
)

// Collector is a DiagnosticSink that keeps everything it receives.
type Collector struct {
	mu    sync.Mutex
	items []interfaces.Diagnostic
}

var _ interfaces.DiagnosticSink = (*Collector)(nil)

func (c *Collector) Report(d interfaces.Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of the collected diagnostics in report order.
func (c *Collector) Diagnostics() []interfaces.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]interfaces.Diagnostic(nil), c.items...)
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func newDiagnostic(file string, pos *mdast.Position, severity interfaces.Severity, message string) interfaces.Diagnostic {
	d := interfaces.Diagnostic{
		FilePath: file,
		Message:  message,
		Source:   DiagnosticSource,
		Rule:     DiagnosticRule,
		Severity: severity,
	}
	if pos != nil {
		d.Line, d.Column = pos.Start.Line, pos.Start.Column
		d.EndLine, d.EndColumn = pos.End.Line, pos.End.Column
	}
	return d
}
