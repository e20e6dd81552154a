package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-partials"
)

func (a *app) resolveCmd() *cobra.Command {
	var (
		outDir   string
		format   string
		validate bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [dir]",
		Short: "Write every page under dir with its partials expanded",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = a.cfg.Output.Dir
			}
			if format == "" {
				format = a.cfg.Output.Format
			}

			module, err := a.module(func(cfg *partials.Config) {
				cfg.Modes = partials.ModesConfig{Lint: validate, Resolve: true}
				cfg.Output.Dir = outDir
				cfg.Output.Format = format
			})
			if err != nil {
				return err
			}
			defer module.Close()

			summary, runErr := module.Resolve(cmd.Context(), a.directory(args), outDir, partials.Format(format), validate)
			w := cmd.OutOrStdout()
			if validate {
				for _, d := range summary.Diagnostics() {
					printDiagnostic(w, d)
				}
			}
			written := 0
			for _, page := range summary.Pages {
				if page.Output != "" {
					written++
				}
			}
			fmt.Fprintf(w, "resolved %d of %d pages into %s\n", written, len(summary.Pages), outDir)
			if runErr != nil {
				return runErr
			}
			if validate && summary.HasErrors() {
				return errLintFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config output.dir)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: markdown or html (default from config output.format)")
	cmd.Flags().BoolVar(&validate, "validate", false, "also report lint diagnostics")
	return cmd
}
