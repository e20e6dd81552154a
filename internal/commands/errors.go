package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-partials/internal/params"
	"github.com/goliatone/go-partials/internal/paths"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"

	// PartialFormatInvalidCode tags malformed directive parameters or defaults.
	PartialFormatInvalidCode = "PARTIAL_FORMAT_INVALID"
	// PageVersionUnresolvedCode tags pages outside every known content layout.
	PageVersionUnresolvedCode = "PAGE_VERSION_UNRESOLVED"
)

type errorTag struct {
	category goerrors.Category
	message  string
	code     string
}

func (t errorTag) wrap(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, t.category, t.message).WithTextCode(t.code)
}

var (
	validationTag = errorTag{goerrors.CategoryValidation, "command validation failed", commandValidationCode}
	canceledTag   = errorTag{goerrors.CategoryCommand, "command execution cancelled", commandContextCanceled}
	timeoutTag    = errorTag{goerrors.CategoryCommand, "command execution deadline exceeded", commandContextTimeout}
	contextTag    = errorTag{goerrors.CategoryCommand, "command context error", commandContextErrorCode}
	formatTag     = errorTag{goerrors.CategoryValidation, "partial directive is malformed", PartialFormatInvalidCode}
	versionTag    = errorTag{goerrors.CategoryValidation, "page version could not be resolved", PageVersionUnresolvedCode}
	executeTag    = errorTag{goerrors.CategoryCommand, "command execution failed", commandExecuteFailed}
)

func wrapValidationError(err error) error {
	return validationTag.wrap(err)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return canceledTag.wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return timeoutTag.wrap(err)
	default:
		return contextTag.wrap(err)
	}
}

// wrapExecuteError tags domain failures first, then interruptions, then
// anything else as a generic execution failure.
func wrapExecuteError(err error) error {
	var formatErr *params.FormatError
	var versionErr *paths.VersionResolutionError
	switch {
	case errors.As(err, &formatErr):
		return formatTag.wrap(err)
	case errors.As(err, &versionErr):
		return versionTag.wrap(err)
	case interrupted(err):
		return wrapContextError(err)
	default:
		return executeTag.wrap(err)
	}
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// TextCode returns the text code attached by the handler, or "".
func TextCode(err error) string {
	var wrapped *goerrors.Error
	if errors.As(err, &wrapped) {
		return wrapped.TextCode
	}
	return ""
}
