package main

import (
	"fmt"
	"path"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type pageInfo struct {
	Path             string `json:"path" yaml:"path"`
	Version          string `json:"version" yaml:"version"`
	Latest           bool   `json:"latest" yaml:"latest"`
	PostMigration    bool   `json:"post_migration" yaml:"post_migration"`
	ContentRoot      string `json:"content_root" yaml:"content_root"`
	PreMigrationPath string `json:"pre_migration_path" yaml:"pre_migration_path"`
}

func (a *app) versionOfCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version-of <path>...",
		Short: "Show the version and layout a page path resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format); err != nil {
				return err
			}
			module, err := a.module(nil)
			if err != nil {
				return err
			}
			defer module.Close()

			infos := make([]pageInfo, 0, len(args))
			root := module.Container().Layout().ProjectRoot
			for _, arg := range args {
				p := filepath.ToSlash(arg)
				if !path.IsAbs(p) {
					p = path.Join(root, p)
				}
				ctx, err := module.PageContext(p)
				if err != nil {
					return err
				}
				infos = append(infos, pageInfo{
					Path:             ctx.FilePath,
					Version:          ctx.Version,
					Latest:           ctx.IsLatest,
					PostMigration:    ctx.IsPostMigration,
					ContentRoot:      ctx.ContentRootDir,
					PreMigrationPath: ctx.PreMigrationPath,
				})
			}

			w := cmd.OutOrStdout()
			if ok, err := encode(w, format, infos); ok {
				return err
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tVERSION\tLAYOUT\tPRE-MIGRATION PATH")
			for _, info := range infos {
				layout := "legacy"
				if info.PostMigration {
					layout = "versioned"
					if info.Latest {
						layout = "latest"
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Path, info.Version, layout, info.PreMigrationPath)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", outputText, "output format (text, json, yaml)")
	return cmd
}
