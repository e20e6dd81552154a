package partials_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-partials"
)

func TestConfigValidateRequiresLatestVersion(t *testing.T) {
	cfg := partials.DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, partials.ErrLatestVersionRequired) {
		t.Fatalf("expected ErrLatestVersionRequired, got %v", err)
	}
}

func TestConfigValidateResolveNeedsOutputDir(t *testing.T) {
	cfg := partials.DefaultConfig()
	cfg.LatestVersion = "19.x"
	cfg.Modes.Resolve = true
	cfg.Output.Dir = ""

	if err := cfg.Validate(); !errors.Is(err, partials.ErrOutputDirRequired) {
		t.Fatalf("expected ErrOutputDirRequired, got %v", err)
	}
}

func TestConfigValidateReportDriver(t *testing.T) {
	cfg := partials.DefaultConfig()
	cfg.LatestVersion = "19.x"
	cfg.Report = partials.ReportConfig{Enabled: true, Driver: "mongo"}

	if err := cfg.Validate(); !errors.Is(err, partials.ErrReportDriverUnknown) {
		t.Fatalf("expected ErrReportDriverUnknown, got %v", err)
	}
}
