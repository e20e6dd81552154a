package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-partials"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

// encode writes v as JSON or YAML. It reports false for the text format so
// callers can fall back to their own rendering.
func encode(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

func printDiagnostic(w io.Writer, d partials.Diagnostic) {
	location := d.FilePath
	if d.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d", d.FilePath, d.Line, d.Column)
	}
	fmt.Fprintf(w, "%s: %s: %s [%s]\n", location, d.Severity, d.Message, d.Rule)
}

func printSummary(w io.Writer, summary partials.Summary) {
	for _, page := range summary.Pages {
		for _, d := range page.Diagnostics {
			printDiagnostic(w, d)
		}
		if page.Error != "" {
			fmt.Fprintf(w, "%s: failed: %s\n", page.Path, page.Error)
		}
	}

	parts := []string{
		fmt.Sprintf("%d pages", len(summary.Pages)),
		fmt.Sprintf("%d errors", summary.Errors),
		fmt.Sprintf("%d warnings", summary.Warnings),
	}
	if summary.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", summary.Failed))
	}
	fmt.Fprintf(w, "%s: %s\n", summary.Modes, strings.Join(parts, ", "))
	if summary.RunID != uuid.Nil {
		fmt.Fprintf(w, "run %s\n", summary.RunID)
	}
}
