package site

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-partials/pkg/interfaces"
)

// PageResult is the outcome of processing one page.
type PageResult struct {
	// Path is the page location including the project root.
	Path        string                  `json:"path" yaml:"path"`
	Version     string                  `json:"version,omitempty" yaml:"version,omitempty"`
	Diagnostics []interfaces.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Partials    []string                `json:"partials,omitempty" yaml:"partials,omitempty"`
	Expanded    int                     `json:"expanded" yaml:"expanded"`
	// Output is where the resolved page was written, empty in lint runs.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`

	err error
}

// Err returns the error that stopped or tainted the page, if any.
func (p PageResult) Err() error {
	return p.err
}

// Summary aggregates a lint or resolve run over a directory.
type Summary struct {
	RunID      uuid.UUID    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Directory  string       `json:"directory" yaml:"directory"`
	Modes      string       `json:"modes" yaml:"modes"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
	Pages      []PageResult `json:"pages" yaml:"pages"`
	Errors     int          `json:"errors" yaml:"errors"`
	Warnings   int          `json:"warnings" yaml:"warnings"`
	Failed     int          `json:"failed" yaml:"failed"`
}

// Diagnostics flattens the diagnostics of every page in page order.
func (s Summary) Diagnostics() []interfaces.Diagnostic {
	var out []interfaces.Diagnostic
	for _, page := range s.Pages {
		out = append(out, page.Diagnostics...)
	}
	return out
}

// Err joins the page errors of the run.
func (s Summary) Err() error {
	var errs []error
	for _, page := range s.Pages {
		if page.err != nil {
			errs = append(errs, page.err)
		}
	}
	return errors.Join(errs...)
}

// HasErrors reports whether any page failed or raised an error diagnostic.
func (s Summary) HasErrors() bool {
	return s.Errors > 0 || s.Failed > 0
}

func (s *Summary) add(page PageResult) {
	for _, d := range page.Diagnostics {
		switch d.Severity {
		case interfaces.SeverityError:
			s.Errors++
		case interfaces.SeverityWarning:
			s.Warnings++
		}
	}
	if page.err != nil {
		s.Failed++
		page.Error = page.err.Error()
	}
	s.Pages = append(s.Pages, page)
}
