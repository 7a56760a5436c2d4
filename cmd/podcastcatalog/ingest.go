package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"podcast-catalog/pkg/httpclient"
	"podcast-catalog/pkg/ingest"
)

var (
	ingestMax          int
	listingSelector    string
	listingPathFilter  string
	listingMaxPages    int
	listingBatchLength int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Import episodes from podcast feeds or sitemaps",
}

var ingestFeedCmd = &cobra.Command{
	Use:   "feed <url>",
	Short: "Import episodes from an RSS/Atom feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := ingestService()
		if err != nil {
			return err
		}
		start := time.Now()
		report, err := svc.FromFeed(cmd.Context(), args[0], ingestMax)
		printIngestReport(cmd, report, time.Since(start))
		return err
	},
}

var ingestSitemapCmd = &cobra.Command{
	Use:   "sitemap <url>",
	Short: "Import episode pages listed in a sitemap (or sitemap index)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := ingestService()
		if err != nil {
			return err
		}
		start := time.Now()
		report, err := svc.FromSitemap(cmd.Context(), args[0], ingestMax)
		printIngestReport(cmd, report, time.Since(start))
		return err
	},
}

var ingestListingCmd = &cobra.Command{
	Use:   "listing <pattern>",
	Short: "Import episode pages linked from a paginated archive",
	Long: `Walk a paginated episode archive and import every linked episode page.
The pattern must contain a single %d for the page number, for example
https://example.com/episodes/page/%d. Pagination stops at the first page
without episode links.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := ingestService()
		if err != nil {
			return err
		}
		start := time.Now()
		report, err := svc.FromListing(cmd.Context(), ingest.Listing{
			Pattern:       args[0],
			Selector:      listingSelector,
			PathFilter:    listingPathFilter,
			MaxPages:      listingMaxPages,
			PagesPerBatch: listingBatchLength,
		}, ingestMax)
		printIngestReport(cmd, report, time.Since(start))
		return err
	},
}

func ingestService() (*ingest.Service, error) {
	clientType, err := httpclient.ParseClientType(app.cfg.Ingest.Client)
	if err != nil {
		return nil, err
	}
	client := httpclient.NewClient(clientType, app.cfg.Ingest.Timeout.Duration)
	return ingest.New(app.store.Episodes(), client, app.logger,
		ingest.WithWorkers(app.cfg.Ingest.Workers),
		ingest.WithPageTranscripts(app.cfg.Ingest.PageTranscripts),
	), nil
}

func printIngestReport(cmd *cobra.Command, report ingest.Report, took time.Duration) {
	out := cmd.OutOrStdout()
	if jsonOutput {
		_ = writeJSON(out, map[string]any{
			"discovered": report.Discovered,
			"imported":   report.Imported,
			"skipped":    report.Skipped,
			"failed":     report.Failed,
			"duration":   took.String(),
		})
		return
	}
	fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf("Imported %d of %d (%d already known, %d failed) in %s",
		report.Imported, report.Discovered, report.Skipped, report.Failed, took.Round(time.Millisecond))))
	for _, e := range report.Errors {
		fmt.Fprintln(out, metaStyle.Render("  "+e.Error()))
	}
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.AddCommand(ingestFeedCmd, ingestSitemapCmd, ingestListingCmd)
	ingestCmd.PersistentFlags().IntVar(&ingestMax, "max", 100, "Max items to process (<=0 means no limit)")

	ingestListingCmd.Flags().StringVar(&listingSelector, "selector", "", "CSS selector for episode links (default: detect common archive layouts)")
	ingestListingCmd.Flags().StringVar(&listingPathFilter, "path", "", "Only follow links containing this path segment")
	ingestListingCmd.Flags().IntVar(&listingMaxPages, "max-pages", 0, "Stop after this many archive pages (0 = until an empty page)")
	ingestListingCmd.Flags().IntVar(&listingBatchLength, "pages-per-batch", 5, "Archive pages read per worker batch")
}
