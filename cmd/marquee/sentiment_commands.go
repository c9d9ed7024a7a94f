package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find titles to analyze for review sentiment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}
			candidates, err := app.service.SearchSentimentCandidates(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, candidates)
			}
			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				fmt.Fprintln(out, "No matching titles")
				return nil
			}
			rows := make([][]string, 0, len(candidates))
			for _, c := range candidates {
				rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Title, orDash(c.ExternalID), orDash(c.ReleaseDate)})
			}
			fmt.Fprintln(out, renderTable(candidateColumns, rows, fmt.Sprintf("%d match(es)", len(rows))))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of matches")
	return cmd
}

func newSentimentCommand(ctx *commandContext) *cobra.Command {
	var imdbID string

	cmd := &cobra.Command{
		Use:   "sentiment [title]",
		Short: "Summarize audience review sentiment for a film",
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			if strings.TrimSpace(title) == "" && strings.TrimSpace(imdbID) == "" {
				return fmt.Errorf("provide a title or --imdb-id")
			}
			app, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.service.AnalyzeSentiment(cmd.Context(), title, imdbID)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			p := newPainter(cmd)
			fmt.Fprintln(out, p.heading(result.Title))
			if !result.Success {
				fmt.Fprintf(out, "%s %s\n", p.bad("Sentiment unavailable:"), result.Error)
				return nil
			}
			printField(out, "IMDb", result.ExternalID)
			fmt.Fprintf(out, "Overall: %s\n", p.ok(result.Overall))
			fmt.Fprintf(out, "Reviews: %d (positive %d, negative %d, neutral %d)\n",
				result.ReviewCount, result.Positive, result.Negative, result.Neutral)
			printField(out, "Themes", strings.Join(result.Themes, ", "))
			printField(out, "Summary", result.Summary)
			if result.Placeholder {
				fmt.Fprintln(out, p.dim("Keyword estimate; configure an llm api key for model summaries."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&imdbID, "imdb-id", "", "IMDb id (tt...) to analyze directly")
	return cmd
}
