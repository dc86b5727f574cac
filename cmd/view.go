package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/rerun/internal/report"
	"github.com/fakeyudi/rerun/internal/tui"
)

var plainOutput bool

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse execution history in a TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rep, err := report.Build(cmd.Context(), store, cfg.MaxHistoryRecords)
		if err != nil {
			return err
		}

		if plainOutput {
			printReport(cmd, rep)
			return nil
		}
		return tui.Run(rep, cfg.DatabasePath)
	},
}

// printReport writes a plain-text summary to the command's stdout.
func printReport(cmd *cobra.Command, rep *report.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "## Summary")
	fmt.Fprintf(out, "  Generated:  %s\n", rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "  Executions: %d\n", rep.Overall.TotalExecutions)
	fmt.Fprintf(out, "  Successful: %d\n", rep.Overall.SuccessfulExecutions)
	fmt.Fprintf(out, "  Failed:     %d\n", rep.Overall.FailedExecutions)
	if rep.Overall.TotalExecutions > 0 {
		fmt.Fprintf(out, "  Success rate: %.1f%%\n", rep.Overall.SuccessRate()*100)
		fmt.Fprintf(out, "  Avg time:     %.3fs\n", rep.Overall.AverageExecutionTime)
	}
	if rep.Overall.MostExecutedFile != "" {
		fmt.Fprintf(out, "  Most run:   %s\n", rep.Overall.MostExecutedFile)
	}
	if rep.Overall.LastExecution != nil {
		fmt.Fprintf(out, "  Last run:   %s\n", rep.Overall.LastExecution.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Recent Executions")
	if len(rep.Recent) == 0 {
		fmt.Fprintln(out, "  (none)")
	} else {
		for _, rec := range rep.Recent {
			status := "ok"
			if !rec.Success {
				status = "failed"
			}
			fmt.Fprintf(out, "  [%s] %-6s %s (%.3fs) - %s\n",
				rec.Timestamp.Format("2006-01-02 15:04:05"), status, rec.FilePath, rec.ExecutionTime, rec.Section)
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Top Files")
	if len(rep.TopFiles) == 0 {
		fmt.Fprintln(out, "  (none)")
	} else {
		for i, tf := range rep.TopFiles {
			fmt.Fprintf(out, "  %d. %s (%d runs, avg %.3fs)\n", i+1, tf.FilePath, tf.Count, tf.AvgTime)
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Sections")
	if len(rep.Sections) == 0 {
		fmt.Fprintln(out, "  (none)")
	} else {
		for _, sec := range rep.Sections {
			rate := 0.0
			if sec.Count > 0 {
				rate = float64(sec.Successes) / float64(sec.Count) * 100
			}
			fmt.Fprintf(out, "  %s: %d runs, %.1f%% success, avg %.3fs\n", sec.Section, sec.Count, rate, sec.AvgTime)
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Daily Activity")
	if len(rep.Trends) == 0 {
		fmt.Fprintln(out, "  (none)")
	} else {
		for _, day := range rep.Trends {
			fmt.Fprintf(out, "  %s: %d runs, %d ok\n", day.Date, day.Total, day.Successful)
		}
	}
	fmt.Fprintln(out)
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(viewCmd)
}
