package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/dataset"
	"marquee/internal/scheduler"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and rebuild the movie catalog",
	}

	catalogCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show catalog counts by language and source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}
			catalog, err := app.catalogs.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			stats := catalog.Stats()
			if ctx.jsonOutput() {
				return writeJSON(cmd, stats)
			}
			printCatalogStats(cmd, stats, app.catalogs.LoadedAt())
			return nil
		},
	})

	catalogCmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Rebuild the catalog from its CSV sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}
			sched := scheduler.New(app.logger, 0)
			if err := sched.RunNow(cmd.Context(), scheduler.CatalogRefreshJob, scheduler.RefreshCatalog(app.catalogs)); err != nil {
				return err
			}
			catalog, err := app.catalogs.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog rebuilt: %d movies\n", catalog.Len())
			return nil
		},
	})

	return catalogCmd
}

func printCatalogStats(cmd *cobra.Command, stats dataset.Stats, loadedAt time.Time) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Movies: %d\n", stats.Movies)
	fmt.Fprintf(out, "Genres: %d\n", stats.Genres)
	fmt.Fprintf(out, "With IMDb id: %d\n", stats.WithIMDb)
	if !loadedAt.IsZero() {
		fmt.Fprintf(out, "Loaded: %s\n", loadedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(countColumns("Language"), countRows(stats.Languages), ""))
	fmt.Fprintln(out, renderTable(countColumns("Source"), countRows(stats.Sources), ""))
}

// countRows orders a count map by descending count, then key.
func countRows(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{orDash(key), strconv.Itoa(counts[key])})
	}
	return rows
}
