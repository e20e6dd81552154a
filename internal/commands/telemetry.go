package commands

import (
	"context"
	"maps"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// Outcome classifies how a command execution ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	// OutcomeInterrupted means the context was cancelled or timed out.
	OutcomeInterrupted Outcome = "interrupted"
)

// Report is handed to a Telemetry callback once a command returns.
type Report struct {
	Command   string
	Operation string
	// Fields are the message-derived fields logged with the run.
	Fields map[string]any
	// Result holds the fields produced by WithResultFields, nil otherwise.
	Result   map[string]any
	Duration time.Duration
	Err      error
	Outcome  Outcome
	Logger   interfaces.Logger
}

// Telemetry receives the report of every execution.
type Telemetry[T command.Message] func(ctx context.Context, msg T, report Report)

// LogTelemetry logs one `command.finished` entry per execution. Interrupted
// runs are logged as warnings, failures as errors.
func LogTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = logging.OrNoOp(logger)
	return func(_ context.Context, _ T, report Report) {
		fields := make(map[string]any, len(report.Fields)+len(report.Result)+2)
		maps.Copy(fields, report.Fields)
		maps.Copy(fields, report.Result)
		fields["outcome"] = string(report.Outcome)
		fields["duration_ms"] = report.Duration.Milliseconds()

		entry := logging.WithFields(logger, fields)
		switch report.Outcome {
		case OutcomeSucceeded:
			entry.Info("command.finished")
		case OutcomeInterrupted:
			entry.Warn("command.finished", "error", report.Err)
		default:
			entry.Error("command.finished", "error", report.Err)
		}
	}
}
