package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errReportsDisabled = errors.New("reports are disabled; set report.enabled and a persistent driver")

func (a *app) runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored lint runs",
	}
	cmd.AddCommand(a.runsListCmd(), a.runsShowCmd())
	return cmd
}

func (a *app) runsListCmd() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored lint runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(format); err != nil {
				return err
			}
			module, err := a.module(nil)
			if err != nil {
				return err
			}
			defer module.Close()

			repo := module.Reports()
			if repo == nil {
				return errReportsDisabled
			}
			runs, err := repo.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if ok, err := encode(w, format, runs); ok {
				return err
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tDIRECTORY\tPAGES\tERRORS\tWARNINGS")
			for _, run := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
					run.ID, run.StartedAt.Format(time.RFC3339), run.Directory, run.Pages, run.Errors, run.Warnings)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs; 0 lists all")
	cmd.Flags().StringVarP(&format, "format", "f", outputText, "output format (text, json, yaml)")
	return cmd
}

func (a *app) runsShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one lint run with its diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format); err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}
			module, err := a.module(nil)
			if err != nil {
				return err
			}
			defer module.Close()

			repo := module.Reports()
			if repo == nil {
				return errReportsDisabled
			}
			run, err := repo.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if ok, err := encode(w, format, run); ok {
				return err
			}
			fmt.Fprintf(w, "run %s (%s)\n", run.ID, run.Modes)
			fmt.Fprintf(w, "directory: %s\n", run.Directory)
			fmt.Fprintf(w, "pages: %d, errors: %d, warnings: %d\n", run.Pages, run.Errors, run.Warnings)
			for _, d := range run.Diagnostics {
				printDiagnostic(w, d)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", outputText, "output format (text, json, yaml)")
	return cmd
}
