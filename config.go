package partials

import "github.com/goliatone/go-partials/internal/runtimeconfig"

var (
	ErrProjectRootRequired      = runtimeconfig.ErrProjectRootRequired
	ErrLatestVersionRequired    = runtimeconfig.ErrLatestVersionRequired
	ErrLayoutDirRequired        = runtimeconfig.ErrLayoutDirRequired
	ErrDocumentExtensionInvalid = runtimeconfig.ErrDocumentExtensionInvalid
	ErrModesRequired            = runtimeconfig.ErrModesRequired
	ErrMaxDepthInvalid          = runtimeconfig.ErrMaxDepthInvalid
	ErrCacheTTLInvalid          = runtimeconfig.ErrCacheTTLInvalid
	ErrOutputDirRequired        = runtimeconfig.ErrOutputDirRequired
	ErrOutputFormatInvalid      = runtimeconfig.ErrOutputFormatInvalid
	ErrReportDriverUnknown      = runtimeconfig.ErrReportDriverUnknown
	ErrReportDSNRequired        = runtimeconfig.ErrReportDSNRequired
	ErrWatchDebounceInvalid     = runtimeconfig.ErrWatchDebounceInvalid
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	LayoutConfig         = runtimeconfig.LayoutConfig
	ModesConfig          = runtimeconfig.ModesConfig
	IncludesConfig       = runtimeconfig.IncludesConfig
	PartialCacheConfig   = runtimeconfig.PartialCacheConfig
	AssetsConfig         = runtimeconfig.AssetsConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	OutputConfig         = runtimeconfig.OutputConfig
	ReportConfig         = runtimeconfig.ReportConfig
	WatchConfig          = runtimeconfig.WatchConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
