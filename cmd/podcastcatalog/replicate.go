package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podcast-catalog/pkg/config"
	"podcast-catalog/pkg/replication"
)

var (
	replicateTarget  string
	replicateWorkers int
)

var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Copy the catalog from the configured backend to another one",
	Long: `Copy every episode and note from the configured backend into the target
backend. Episodes already present in the target are not duplicated and notes
are re-attached to the target's episode ids.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetCfg := *app.cfg
		targetCfg.Backend = replicateTarget
		if err := targetCfg.Validate(); err != nil {
			return fmt.Errorf("target: %w", err)
		}
		if targetCfg.Backend == app.cfg.Backend {
			return fmt.Errorf("target backend %q is the configured source", targetCfg.Backend)
		}

		target, err := config.OpenStore(cmd.Context(), &targetCfg, app.logger)
		if err != nil {
			return fmt.Errorf("open target: %w", err)
		}
		defer target.Close(cmd.Context())

		r, err := replication.NewReplicator(replication.Config{
			Source:  app.store,
			Target:  target,
			Logger:  app.logger,
			Workers: replicateWorkers,
		})
		if err != nil {
			return err
		}
		res, err := r.Run(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, res)
		}
		fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf(
			"Copied %d/%d episodes and %d/%d notes to %s (%d orphaned notes skipped)",
			res.EpisodesInserted, res.EpisodesProcessed, res.NotesInserted, res.NotesProcessed,
			targetCfg.Backend, res.NotesOrphaned)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replicateCmd)
	replicateCmd.Flags().StringVar(&replicateTarget, "to", "postgres", "Target backend: memory, mongo, postgres, supabase")
	replicateCmd.Flags().IntVar(&replicateWorkers, "workers", 5, "Parallel insert workers")
}
