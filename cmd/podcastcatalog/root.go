package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"podcast-catalog/pkg/catalog"
	"podcast-catalog/pkg/config"
	"podcast-catalog/pkg/db"
)

var (
	configPath string
	verbose    bool
	jsonOutput bool
)

// app holds what PersistentPreRunE opened for the running command.
var app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   db.Store
	cleanup func() error
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "podcastcatalog",
	Short: "Browse, search and annotate a catalog of podcast episodes",
	Long: `podcastcatalog keeps a catalog of podcast episodes with their transcripts,
lets you filter and search it with highlighted excerpts, and attach notes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		level := cfg.LogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		logger, cleanup := config.SetupLogger(cfg.Log.File, level)
		slog.SetDefault(logger)

		app.cfg = cfg
		app.logger = logger
		app.cleanup = cleanup

		if cmd.Annotations["store"] == "none" {
			return nil
		}
		store, err := config.OpenStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		app.store = store
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp(cmd.Context())
	},
}

func closeApp(ctx context.Context) error {
	var err error
	if app.store != nil {
		err = app.store.Close(ctx)
		app.store = nil
	}
	if app.cleanup != nil {
		_ = app.cleanup()
		app.cleanup = nil
	}
	return err
}

func service() *catalog.Service {
	return catalog.New(app.store.Episodes(), app.store.Notes(), app.logger)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_ = closeApp(ctx)
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "podcast-catalog.toml", "Path to the TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}
