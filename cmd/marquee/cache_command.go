package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the intensity analysis cache",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}
			entries := app.cache.List()
			if ctx.jsonOutput() {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Intensity cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				analyzed := "-"
				if !entry.Analysis.AnalyzedAt.IsZero() {
					analyzed = entry.Analysis.AnalyzedAt.Local().Format(time.DateTime)
				}
				rows = append(rows, []string{
					entry.Key,
					entry.Analysis.MovieTitle,
					yesNo(entry.Analysis.Success),
					analyzed,
					strconv.Itoa(entry.Analysis.ReviewCount),
				})
			}
			caption := fmt.Sprintf("%d entries in %s", len(entries), app.cache.Path())
			fmt.Fprintln(out, renderTable(cacheColumns, rows, caption))
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "remove <key-or-title>",
		Short: "Remove one cached analysis",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}
			key, err := app.cache.Remove(joinArgs(args))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", key)
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}
			count := app.cache.Count()
			if err := app.cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached analyses\n", count)
			return nil
		},
	})

	return cacheCmd
}
