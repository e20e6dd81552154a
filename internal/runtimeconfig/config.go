package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrProjectRootRequired = errors.New("partials config: project root is required")
var ErrLatestVersionRequired = errors.New("partials config: latest version is required")
var ErrLayoutDirRequired = errors.New("partials config: layout directory is required")
var ErrDocumentExtensionInvalid = errors.New("partials config: document extensions must start with a dot")

// ErrModesRequired indicates a configuration that neither lints nor resolves.
var ErrModesRequired = errors.New("partials config: at least one of lint or resolve must be enabled")
var ErrMaxDepthInvalid = errors.New("partials config: includes max depth must be positive")
var ErrCacheTTLInvalid = errors.New("partials config: partial cache ttl must be zero or positive")
var ErrOutputDirRequired = errors.New("partials config: output directory is required when resolve is enabled")
var ErrOutputFormatInvalid = errors.New("partials config: output format is invalid")
var ErrReportDriverUnknown = errors.New("partials config: report driver is invalid")
var ErrReportDSNRequired = errors.New("partials config: report dsn is required for the sqlite driver")
var ErrWatchDebounceInvalid = errors.New("partials config: watch debounce must be zero or positive")
var ErrLoggingProviderRequired = errors.New("partials config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("partials config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("partials config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("partials config: logging format is invalid")

// Config aggregates the settings of the partials module. Field tags follow
// the keys of the `.partials.yml` file.
type Config struct {
	// ProjectRoot is the directory every layout directory is relative to.
	ProjectRoot string `mapstructure:"project_root" yaml:"project_root"`
	// LatestVersion is reported for pages in the un-versioned docs directory.
	LatestVersion string         `mapstructure:"latest_version" yaml:"latest_version"`
	Layout        LayoutConfig   `mapstructure:"layout" yaml:"layout"`
	Modes         ModesConfig    `mapstructure:"modes" yaml:"modes"`
	Includes      IncludesConfig `mapstructure:"includes" yaml:"includes"`
	Assets        AssetsConfig   `mapstructure:"assets" yaml:"assets"`
	Markdown      MarkdownConfig `mapstructure:"markdown" yaml:"markdown"`
	Output        OutputConfig   `mapstructure:"output" yaml:"output"`
	Report        ReportConfig   `mapstructure:"report" yaml:"report"`
	Watch         WatchConfig    `mapstructure:"watch" yaml:"watch"`
	Logging       LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// LayoutConfig names the content directories of the two coexisting layouts.
type LayoutConfig struct {
	LegacyContentDir   string   `mapstructure:"legacy_content_dir" yaml:"legacy_content_dir"`
	LegacyPagesDir     string   `mapstructure:"legacy_pages_dir" yaml:"legacy_pages_dir"`
	DocsDir            string   `mapstructure:"docs_dir" yaml:"docs_dir"`
	VersionedDocsDir   string   `mapstructure:"versioned_docs_dir" yaml:"versioned_docs_dir"`
	VersionPrefix      string   `mapstructure:"version_prefix" yaml:"version_prefix"`
	DocumentExtensions []string `mapstructure:"document_extensions" yaml:"document_extensions"`
}

// ModesConfig selects what watch mode runs.
type ModesConfig struct {
	Lint    bool `mapstructure:"lint" yaml:"lint"`
	Resolve bool `mapstructure:"resolve" yaml:"resolve"`
}

// IncludesConfig tunes the inclusion engine.
type IncludesConfig struct {
	MaxDepth int                `mapstructure:"max_depth" yaml:"max_depth"`
	Cache    PartialCacheConfig `mapstructure:"cache" yaml:"cache"`
}

// PartialCacheConfig controls caching of rendered partials.
type PartialCacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// AssetsConfig controls asset rebasing on migrated pages.
type AssetsConfig struct {
	Rebase bool `mapstructure:"rebase" yaml:"rebase"`
}

// MarkdownConfig captures page discovery and parser behaviour.
type MarkdownConfig struct {
	Pattern   string               `mapstructure:"pattern" yaml:"pattern"`
	Recursive bool                 `mapstructure:"recursive" yaml:"recursive"`
	Parser    MarkdownParserConfig `mapstructure:"parser" yaml:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions   []string `mapstructure:"extensions" yaml:"extensions"`
	HardWraps    bool     `mapstructure:"hard_wraps" yaml:"hard_wraps"`
	SafeMode     bool     `mapstructure:"safe_mode" yaml:"safe_mode"`
	FlowElements []string `mapstructure:"flow_elements" yaml:"flow_elements"`
}

// OutputConfig controls where resolved pages go.
type OutputConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ReportConfig controls persistence of lint runs.
type ReportConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Driver is memory or sqlite.
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider" yaml:"provider"`
	Level     string   `mapstructure:"level" yaml:"level"`
	Format    string   `mapstructure:"format" yaml:"format"`
	AddSource bool     `mapstructure:"add_source" yaml:"add_source"`
	Focus     []string `mapstructure:"focus" yaml:"focus"`
}

// DefaultConfig returns the conventional layout with lint enabled.
func DefaultConfig() Config {
	return Config{
		ProjectRoot:   ".",
		LatestVersion: "",
		Layout: LayoutConfig{
			LegacyContentDir:   "content",
			LegacyPagesDir:     "docs/pages",
			DocsDir:            "docs",
			VersionedDocsDir:   "versioned_docs",
			VersionPrefix:      "version-",
			DocumentExtensions: []string{".md", ".mdx"},
		},
		Modes: ModesConfig{
			Lint: true,
		},
		Includes: IncludesConfig{
			MaxDepth: 16,
			Cache: PartialCacheConfig{
				Enabled: true,
				TTL:     time.Minute,
			},
		},
		Assets: AssetsConfig{
			Rebase: true,
		},
		Markdown: MarkdownConfig{
			Pattern:   "",
			Recursive: true,
			Parser: MarkdownParserConfig{
				Extensions:   []string{"gfm"},
				FlowElements: []string{"details", "summary"},
			},
		},
		Output: OutputConfig{
			Dir:    "build",
			Format: "markdown",
		},
		Report: ReportConfig{
			Driver: "memory",
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.ProjectRoot) == "" {
		return ErrProjectRootRequired
	}
	if strings.TrimSpace(cfg.LatestVersion) == "" {
		return ErrLatestVersionRequired
	}
	for name, dir := range map[string]string{
		"legacy_content_dir": cfg.Layout.LegacyContentDir,
		"legacy_pages_dir":   cfg.Layout.LegacyPagesDir,
		"docs_dir":           cfg.Layout.DocsDir,
		"versioned_docs_dir": cfg.Layout.VersionedDocsDir,
	} {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("%w: %s", ErrLayoutDirRequired, name)
		}
	}
	for _, ext := range cfg.Layout.DocumentExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: %q", ErrDocumentExtensionInvalid, ext)
		}
	}
	if !cfg.Modes.Lint && !cfg.Modes.Resolve {
		return ErrModesRequired
	}
	if cfg.Includes.MaxDepth <= 0 {
		return ErrMaxDepthInvalid
	}
	if cfg.Includes.Cache.TTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Modes.Resolve && strings.TrimSpace(cfg.Output.Dir) == "" {
		return ErrOutputDirRequired
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Output.Format)) {
	case "", "markdown", "html":
	default:
		return fmt.Errorf("%w: %s", ErrOutputFormatInvalid, cfg.Output.Format)
	}
	if cfg.Report.Enabled {
		switch driver := normalizeProvider(cfg.Report.Driver); driver {
		case "", "memory":
		case "sqlite":
			if strings.TrimSpace(cfg.Report.DSN) == "" {
				return ErrReportDSNRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrReportDriverUnknown, driver)
		}
	}
	if cfg.Watch.Debounce < 0 {
		return ErrWatchDebounceInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
