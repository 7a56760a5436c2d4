package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"podcast-catalog/pkg/catalog"
	"podcast-catalog/pkg/domain"
	"podcast-catalog/pkg/ranking"
	"podcast-catalog/pkg/textmatch"
)

var criteriaFlags struct {
	guest    string
	company  string
	from     string
	to       string
	duration string
}

// addCriteriaFlags registers the shared filter flags on cmd.
func addCriteriaFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&criteriaFlags.guest, "guest", "", "Only episodes with this exact guest")
	cmd.Flags().StringVar(&criteriaFlags.company, "company", "", "Only episodes with this exact company")
	cmd.Flags().StringVar(&criteriaFlags.from, "from", "", "Earliest publish date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&criteriaFlags.to, "to", "", "Latest publish date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&criteriaFlags.duration, "duration", "", "Duration bucket: short (<30m), medium (30-60m), long (>60m)")
}

func criteriaFromFlags() (domain.FilterCriteria, error) {
	bucket, err := domain.ParseDurationBucket(criteriaFlags.duration)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	c := domain.FilterCriteria{
		Guest:    criteriaFlags.guest,
		Company:  criteriaFlags.company,
		Duration: bucket,
	}
	if c.DateFrom, err = parseDateFlag("from", criteriaFlags.from); err != nil {
		return domain.FilterCriteria{}, err
	}
	if c.DateTo, err = parseDateFlag("to", criteriaFlags.to); err != nil {
		return domain.FilterCriteria{}, err
	}
	return c, nil
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("%w: --%s %q is not a YYYY-MM-DD date", domain.ErrInvalidInput, name, value)
	}
	return &t, nil
}

var (
	listQuery string
	sortField string
	sortDir   string
)

var episodesCmd = &cobra.Command{
	Use:   "episodes",
	Short: "List episodes with optional quick filter, criteria and sorting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := criteriaFromFlags()
		if err != nil {
			return err
		}
		field, dir, err := ranking.ParseEpisodeSort(sortField, sortDir)
		if err != nil {
			return err
		}

		resp, err := service().ListEpisodes(cmd.Context(), catalog.ListRequest{
			Query:     listQuery,
			Criteria:  criteria,
			SortField: field,
			SortDir:   dir,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, resp)
		}

		fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf("%d of %d episodes · %d guests · %d active filters",
			resp.Stats.Filtered, resp.Stats.Total, resp.Stats.UniqueGuests, criteria.ActiveCount())))
		if len(resp.Episodes) == 0 {
			fmt.Fprintln(out, noDataStyle.Render("No episodes match."))
			return nil
		}
		for _, ep := range resp.Episodes {
			title := renderSegments(textmatch.Highlight(ep.Title, listQuery), titleStyle)
			fmt.Fprintf(out, "%5d  %s\n       %s\n", ep.ID, title, metaStyle.Render(episodeMeta(ep)))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <episode-id>",
	Short: "Show one episode with its notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		detail, err := service().EpisodeDetail(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, detail)
		}

		ep := detail.Episode
		fmt.Fprintln(out, titleStyle.Render(ep.Title))
		fmt.Fprintln(out, metaStyle.Render(episodeMeta(ep)))
		if detail.EmbedURL != "" {
			fmt.Fprintln(out, "Video: "+detail.EmbedURL)
		} else if ep.VideoURL != "" {
			fmt.Fprintln(out, "Link: "+ep.VideoURL)
		}
		if ep.Description != "" {
			fmt.Fprintln(out, headerStyle.Render("Description"))
			fmt.Fprintln(out, ep.Description)
		}
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Notes (%d)", len(detail.Notes))))
		for _, n := range detail.Notes {
			fmt.Fprintln(out, noteStyle.Render(fmt.Sprintf("#%d  %s\n%s", n.ID, metaStyle.Render(n.UpdatedAt.Local().Format("2006-01-02 15:04")), n.Content)))
		}
		if ep.Transcript != "" {
			fmt.Fprintln(out, headerStyle.Render("Transcript"))
			fmt.Fprintln(out, ep.Transcript)
		}
		return nil
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not an id", domain.ErrInvalidInput, s)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(episodesCmd, showCmd)
	addCriteriaFlags(episodesCmd)
	episodesCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Quick filter across title, channel, company, transcript and description")
	episodesCmd.Flags().StringVar(&sortField, "sort", "date", "Sort field: title, guest, channel, date")
	episodesCmd.Flags().StringVar(&sortDir, "dir", "desc", "Sort direction: asc, desc")
}
