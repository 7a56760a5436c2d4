package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podcast-catalog/pkg/catalog"
	"podcast-catalog/pkg/domain"
)

var searchOrder string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search episodes and show ranked, highlighted excerpts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := criteriaFromFlags()
		if err != nil {
			return err
		}
		order, err := domain.ParseSortOrder(searchOrder)
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		results, err := service().SearchEpisodes(cmd.Context(), catalog.SearchRequest{
			Query:    query,
			Criteria: criteria,
			Order:    order,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, results)
		}

		fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf("%d results for %q", len(results), query)))
		if len(results) == 0 {
			fmt.Fprintln(out, noDataStyle.Render("Try a different search term or adjust the filters."))
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(out, "\n%5d  %s  %s\n", r.Episode.ID,
				renderSegments(r.TitleSegments, titleStyle),
				metaStyle.Render(fmt.Sprintf("score %d", r.Score)))
			fmt.Fprintln(out, "       "+metaStyle.Render(episodeMeta(r.Episode)))
			for _, ex := range r.ExcerptSegments {
				fmt.Fprintln(out, excerptStyle.Render(renderSegments(ex, plainStyle)))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	addCriteriaFlags(searchCmd)
	searchCmd.Flags().StringVar(&searchOrder, "order", "relevance", "Result order: relevance, date, title")
}
