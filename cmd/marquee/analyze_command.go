package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/analysis"
	"marquee/internal/services/tmdb"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <title>",
		Short: "Rate a film's intensity across its runtime",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.service.ResolveAndAnalyze(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printIntensity(cmd, result)
			return nil
		},
	}
}

func printIntensity(cmd *cobra.Command, result analysis.Result) {
	out := cmd.OutOrStdout()
	p := newPainter(cmd)
	movie := result.Movie
	report := result.Intensity

	heading := movie.Title
	if year := movie.Year(); year > 0 {
		heading = fmt.Sprintf("%s (%d)", movie.Title, year)
	}
	fmt.Fprintln(out, p.heading(heading))
	printField(out, "Genres", movie.Genres)
	printField(out, "Rating", fmt.Sprintf("%s (%d votes)", formatRating(movie.VoteAverage), movie.VoteCount))
	printField(out, "Poster", tmdb.PosterURL(movie.PosterPath))

	if !report.Success {
		fmt.Fprintf(out, "%s %s\n", p.bad("Analysis failed:"), report.Error)
		return
	}

	status := "fresh"
	switch {
	case report.Cached:
		status = "cached"
	case report.Placeholder:
		status = "placeholder"
	}
	fmt.Fprintf(out, "Analysis: %s\n\n", p.ok(status))

	ratings := report.Ratings
	rows := make([][]string, 0, 5)
	for _, seg := range ratings.Segments() {
		rows = append(rows, []string{seg.Label, strconv.Itoa(seg.Segment.Score), seg.Segment.Description})
	}
	fmt.Fprintln(out, renderTable(segmentColumns, rows, ""))
	fmt.Fprintln(out)
	printField(out, "Overall arc", report.OverallArc)
	printField(out, "Peak moments", report.PeakMoments)
	printField(out, "Pacing", report.PacingAssessment)
	if report.ChartPath != "" {
		fmt.Fprintf(out, "Chart: %s\n", p.dim(report.ChartPath))
	}
}
