package partialscmd

import "testing"

func TestLintDirectoryCommandValidateRequiresDirectory(t *testing.T) {
	cmd := LintDirectoryCommand{Directory: "   "}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when directory is blank")
	}

	cmd.Directory = "content/18.x"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error when directory provided: %v", err)
	}
}

func TestResolveDirectoryCommandValidate(t *testing.T) {
	cmd := ResolveDirectoryCommand{Directory: "content"}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when output directory missing")
	}

	cmd.OutputDir = "build"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cmd.Format = "pdf"
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error for unknown format")
	}

	cmd.Format = "html"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error for html format: %v", err)
	}
}
