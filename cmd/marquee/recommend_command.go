package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/dataset"
	"marquee/internal/recommend"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var req recommend.Request

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest highly rated films by genre and language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.selector.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			if len(result.Recommendations) == 0 {
				fmt.Fprintln(out, result.Message)
				return nil
			}
			rows := make([][]string, 0, len(result.Recommendations))
			for _, rec := range result.Recommendations {
				rows = append(rows, []string{
					strconv.FormatInt(rec.ID, 10),
					rec.Title,
					formatRating(rec.VoteAverage),
					strconv.FormatInt(rec.VoteCount, 10),
					orDash(rec.ReleaseDate),
					orDash(rec.OriginalLanguage),
				})
			}
			caption := fmt.Sprintf("%d recommendation(s)", result.Total)
			fmt.Fprintln(out, renderTable(recommendationColumns, rows, caption))
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Genre, "genre", "g", "", "Genre to match (e.g. Action)")
	cmd.Flags().StringVarP(&req.Language, "language", "l", "", "Original language code or name")
	cmd.Flags().Int64SliceVarP(&req.ExcludedIDs, "exclude", "x", nil, "Movie ids to skip (repeatable or comma separated)")
	cmd.Flags().IntVarP(&req.Limit, "limit", "n", 1, "Number of recommendations")
	return cmd
}

func newGenresCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List catalog genres",
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
			genres := catalog.Genres()
			if ctx.jsonOutput() {
				return writeJSON(cmd, genres)
			}
			out := cmd.OutOrStdout()
			for _, genre := range genres {
				fmt.Fprintln(out, genre)
			}
			return nil
		},
	}
}

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List selectable original languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			options := dataset.LanguageOptions(cfg.Dataset.Languages)
			if ctx.jsonOutput() {
				return writeJSON(cmd, options)
			}
			rows := make([][]string, 0, len(options))
			for _, lang := range options {
				rows = append(rows, []string{lang.Code, lang.Name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(languageColumns, rows, ""))
			return nil
		},
	}
}
