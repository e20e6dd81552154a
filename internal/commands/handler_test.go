package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-partials/internal/params"
	"github.com/goliatone/go-partials/internal/paths"
)

type lintMessage struct {
	Directory string
	Pages     *int
}

func (lintMessage) Type() string { return "partials.test.lint" }

func (m lintMessage) Validate() error {
	if m.Directory == "" {
		return errors.New("directory is required")
	}
	return nil
}

func TestHandlerOutcomes(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name     string
		ctx      context.Context
		msg      lintMessage
		exec     func(context.Context, lintMessage) error
		opts     []HandlerOption[lintMessage]
		called   bool
		category goerrors.Category
		outcome  Outcome
		reported bool
	}{
		{
			name:     "success",
			ctx:      context.Background(),
			msg:      lintMessage{Directory: "docs"},
			exec:     func(context.Context, lintMessage) error { return nil },
			called:   true,
			outcome:  OutcomeSucceeded,
			reported: true,
		},
		{
			name:     "validation short circuits",
			ctx:      context.Background(),
			msg:      lintMessage{},
			exec:     func(context.Context, lintMessage) error { return nil },
			category: goerrors.CategoryValidation,
		},
		{
			name:     "cancelled before start",
			ctx:      cancelled,
			msg:      lintMessage{Directory: "docs"},
			exec:     func(context.Context, lintMessage) error { return nil },
			category: goerrors.CategoryCommand,
		},
		{
			name:     "execution error",
			ctx:      context.Background(),
			msg:      lintMessage{Directory: "docs"},
			exec:     func(context.Context, lintMessage) error { return errors.New("boom") },
			called:   true,
			category: goerrors.CategoryCommand,
			outcome:  OutcomeFailed,
			reported: true,
		},
		{
			name: "timeout",
			ctx:  context.Background(),
			msg:  lintMessage{Directory: "docs"},
			exec: func(ctx context.Context, _ lintMessage) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Second):
					return nil
				}
			},
			opts:     []HandlerOption[lintMessage]{WithTimeout[lintMessage](10 * time.Millisecond)},
			called:   true,
			category: goerrors.CategoryCommand,
			outcome:  OutcomeInterrupted,
			reported: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			var reports []Report
			opts := append([]HandlerOption[lintMessage]{
				WithTelemetry(func(_ context.Context, _ lintMessage, r Report) {
					reports = append(reports, r)
				}),
			}, tc.opts...)
			h := NewHandler(func(ctx context.Context, msg lintMessage) error {
				called = true
				return tc.exec(ctx, msg)
			}, opts...)

			err := h.Execute(tc.ctx, tc.msg)
			if called != tc.called {
				t.Fatalf("expected called=%v, got %v", tc.called, called)
			}
			if tc.category == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else if !goerrors.IsCategory(err, tc.category) {
				t.Fatalf("expected category %v, got %v", tc.category, err)
			}
			if !tc.reported {
				if len(reports) != 0 {
					t.Fatalf("expected no telemetry, got %+v", reports)
				}
				return
			}
			if len(reports) != 1 {
				t.Fatalf("expected one report, got %d", len(reports))
			}
			if reports[0].Outcome != tc.outcome {
				t.Fatalf("expected outcome %s, got %s", tc.outcome, reports[0].Outcome)
			}
		})
	}
}

func TestHandlerTagsDomainErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		code     string
		category goerrors.Category
	}{
		{
			name:     "format",
			err:      fmt.Errorf("page a.mdx: %w", &params.FormatError{Input: `var="x`, Reason: "unterminated quote"}),
			code:     PartialFormatInvalidCode,
			category: goerrors.CategoryValidation,
		},
		{
			name:     "version",
			err:      errors.Join(&paths.VersionResolutionError{Path: "/site/blog/post.mdx"}),
			code:     PageVersionUnresolvedCode,
			category: goerrors.CategoryValidation,
		},
		{
			name:     "other",
			err:      errors.New("disk full"),
			code:     commandExecuteFailed,
			category: goerrors.CategoryCommand,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(func(context.Context, lintMessage) error {
				return tc.err
			})
			err := h.Execute(context.Background(), lintMessage{Directory: "docs"})
			if !goerrors.IsCategory(err, tc.category) {
				t.Fatalf("expected category %v, got %v", tc.category, err)
			}
			if !goerrors.HasCategory(err, tc.category) {
				t.Fatalf("expected category %v to propagate, got %v", tc.category, err)
			}
			if got := TextCode(err); got != tc.code {
				t.Fatalf("expected text code %s, got %q", tc.code, got)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected wrapped error to keep its cause")
			}
		})
	}
}

func TestHandlerReportCarriesFields(t *testing.T) {
	var reports []Report
	pages := 0
	h := NewHandler(func(_ context.Context, msg lintMessage) error {
		*msg.Pages = 3
		return nil
	},
		WithOperation[lintMessage]("test.run"),
		WithMessageFields(func(msg lintMessage) map[string]any {
			return map[string]any{"directory": msg.Directory}
		}),
		WithResultFields(func(msg lintMessage) map[string]any {
			return map[string]any{"pages": *msg.Pages}
		}),
		WithTelemetry(func(_ context.Context, _ lintMessage, r Report) {
			reports = append(reports, r)
		}),
	)

	if err := h.Execute(context.Background(), lintMessage{Directory: "content", Pages: &pages}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected one report, got %d", len(reports))
	}
	r := reports[0]
	if r.Command != "partials.test.lint" || r.Operation != "test.run" {
		t.Fatalf("unexpected command info: %+v", r)
	}
	if r.Fields["directory"] != "content" {
		t.Fatalf("expected message fields in report, got %v", r.Fields)
	}
	if r.Result["pages"] != 3 {
		t.Fatalf("expected result fields read after execution, got %v", r.Result)
	}
}
