package partialscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-partials/internal/site"
)

const (
	lintDirectoryMessageType    = "partials.lint_directory"
	resolveDirectoryMessageType = "partials.resolve_directory"
)

// LintDirectoryCommand reports inclusion diagnostics for every page under
// Directory without writing anything.
type LintDirectoryCommand struct {
	// Directory selects the content directory, absolute or relative to the project root.
	Directory string `json:"directory"`
	// Persist stores the run in the configured report repository.
	Persist bool `json:"persist,omitempty"`
	// Result receives the run summary when set.
	Result *site.Summary `json:"-"`
}

// Type implements command.Message.
func (LintDirectoryCommand) Type() string { return lintDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd LintDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(notBlank("partials.lint_directory.directory_required", "directory is required"))),
	)
}

// ResolveDirectoryCommand expands every page under Directory and writes the
// resolved pages below OutputDir.
type ResolveDirectoryCommand struct {
	Directory string `json:"directory"`
	OutputDir string `json:"output_dir"`
	// Format is markdown (default) or html.
	Format string `json:"format,omitempty"`
	// ValidateRun collects lint diagnostics during the run.
	ValidateRun bool          `json:"validate,omitempty"`
	Result      *site.Summary `json:"-"`
}

// Type implements command.Message.
func (ResolveDirectoryCommand) Type() string { return resolveDirectoryMessageType }

// Validate checks the directories and the output format.
func (cmd ResolveDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(notBlank("partials.resolve_directory.directory_required", "directory is required"))),
		validation.Field(&cmd.OutputDir, validation.Required, validation.By(notBlank("partials.resolve_directory.output_dir_required", "output directory is required"))),
		validation.Field(&cmd.Format, validation.By(func(value any) error {
			if _, err := site.ParseFormat(value.(string)); err != nil {
				return validation.NewError("partials.resolve_directory.format_invalid", "format must be markdown or html")
			}
			return nil
		})),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
