package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-partials"
)

// errLintFailed is returned after printing a summary with error diagnostics
// so the process exits non-zero.
var errLintFailed = errors.New("lint found errors")

func (a *app) lintCmd() *cobra.Command {
	var (
		persist bool
		format  string
	)

	cmd := &cobra.Command{
		Use:   "lint [dir]",
		Short: "Report inclusion diagnostics for every page under dir",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format); err != nil {
				return err
			}
			module, err := a.module(func(cfg *partials.Config) {
				cfg.Modes = partials.ModesConfig{Lint: true}
				if persist {
					cfg.Report.Enabled = true
				}
			})
			if err != nil {
				return err
			}
			defer module.Close()

			summary, runErr := module.Lint(cmd.Context(), a.directory(args), persist)
			if len(summary.Pages) > 0 || runErr == nil {
				w := cmd.OutOrStdout()
				if ok, err := encode(w, format, summary); ok {
					if err != nil {
						return err
					}
				} else {
					printSummary(w, summary)
				}
			}
			if runErr != nil {
				return runErr
			}
			if summary.HasErrors() {
				return errLintFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&persist, "persist", false, "store the run in the report repository")
	cmd.Flags().StringVarP(&format, "format", "f", outputText, "output format (text, json, yaml)")
	return cmd
}
