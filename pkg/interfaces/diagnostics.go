package interfaces

// Severity grades a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is one lint finding raised while processing a page.
type Diagnostic struct {
	FilePath string   `json:"file_path" yaml:"file_path"`
	Message  string   `json:"message" yaml:"message"`
	Source   string   `json:"source" yaml:"source"`
	Rule     string   `json:"rule" yaml:"rule"`
	Severity Severity `json:"severity" yaml:"severity"`
	// Line and Column are 1-based; zero means the position is unknown.
	Line      int `json:"line,omitempty" yaml:"line,omitempty"`
	Column    int `json:"column,omitempty" yaml:"column,omitempty"`
	EndLine   int `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndColumn int `json:"end_column,omitempty" yaml:"end_column,omitempty"`
}

// DiagnosticSink accumulates diagnostics for later reporting.
type DiagnosticSink interface {
	Report(d Diagnostic)
}
