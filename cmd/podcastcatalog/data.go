package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"podcast-catalog/pkg/config"
	"podcast-catalog/pkg/importer"
)

var exportFormat string

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import episodes from a CSV or JSON file (stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()
			in = f
		}

		records, err := importer.Parse(in)
		if err != nil {
			return err
		}
		report, err := importer.New(app.store.Episodes(), app.logger).Import(cmd.Context(), records)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, map[string]int{"imported": report.Imported, "failed": report.Failed})
		}
		fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf("Imported %d episodes", report.Imported)))
		if report.Failed > 0 {
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("Failed to import %d episodes", report.Failed)))
			for _, e := range report.Errors {
				fmt.Fprintln(out, metaStyle.Render("  "+e.Error()))
			}
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all episodes as JSON or CSV (stdout when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := importer.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		episodes, err := app.store.Episodes().GetAll(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			out = f
		}
		return importer.Export(out, episodes, format)
	},
}

var initConfigCmd = &cobra.Command{
	Use:         "init-config",
	Short:       "Write a commented sample config file",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"store": "none"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists", configPath)
		}
		if err := os.WriteFile(configPath, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), summaryStyle.Render("Wrote "+configPath))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd, exportCmd, initConfigCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json, csv")
}
