package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-partials"
)

func (a *app) watchCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-run the configured modes whenever a page or partial changes",
		Long: `watch runs the modes enabled under "modes" in the config once, then
again after every change below the project root. Resolved pages are
written to output.dir.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := a.module(func(cfg *partials.Config) {
				if outDir != "" {
					cfg.Output.Dir = outDir
				}
			})
			if err != nil {
				return err
			}
			defer module.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			err = module.Watch(ctx, a.directory(args), func(summary partials.Summary) {
				printSummary(w, summary)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory for resolve runs")
	return cmd
}
