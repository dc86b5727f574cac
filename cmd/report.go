package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/rerun/internal/report"
)

var (
	reportFormat string
	reportOut    string
)

// reportRecentLimit caps the recent-executions table in generated reports.
const reportRecentLimit = 20

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a progress report from execution history",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rep, err := report.Build(cmd.Context(), store, reportRecentLimit)
		if err != nil {
			return err
		}

		var renderer report.Renderer
		ext := ".md"
		if reportFormat == "json" {
			renderer = &report.JSONRenderer{}
			ext = ".json"
		} else {
			renderer = &report.MarkdownRenderer{}
		}

		data, err := renderer.Render(rep)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}

		if reportOut == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		path := reportOut
		if path == "" {
			path = "rerun-report-" + rep.GeneratedAt.Format("2006-01-02-150405") + ext
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		cmd.Printf("Report written: %s\n", path)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "markdown", "output format: markdown or json")
	reportCmd.Flags().StringVarP(&reportOut, "output", "o", "", `output file ("-" for stdout)`)
	rootCmd.AddCommand(reportCmd)
}
