package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	statsFile     string
	statsSection  string
	statsTop      int
	statsSections bool
	statsTrends   int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show execution statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d := newDisplay(cmd)

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		switch {
		case statsFile != "":
			s, err := store.FileStats(ctx, statsFile)
			if err != nil {
				return fmt.Errorf("load stats: %w", err)
			}
			d.Stats(fmt.Sprintf("Statistics for %s", statsFile), s)
			return nil
		case statsSection != "":
			s, err := store.SectionStats(ctx, statsSection)
			if err != nil {
				return fmt.Errorf("load stats: %w", err)
			}
			d.Stats(fmt.Sprintf("Statistics for section %s", statsSection), s)
			return nil
		}

		s, err := store.Stats(ctx)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		d.Stats("Execution Statistics", s)

		if statsTop > 0 {
			top, err := store.TopFiles(ctx, statsTop)
			if err != nil {
				return fmt.Errorf("load top files: %w", err)
			}
			d.TopFiles(top)
		}
		if statsSections {
			sums, err := store.SectionSummaries(ctx)
			if err != nil {
				return fmt.Errorf("load section summaries: %w", err)
			}
			d.SectionBreakdown(sums)
		}
		if statsTrends > 0 {
			tr, err := store.Trends(ctx, statsTrends)
			if err != nil {
				return fmt.Errorf("load trends: %w", err)
			}
			d.Trends(statsTrends, tr)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsFile, "file", "", "statistics for one file only")
	statsCmd.Flags().StringVar(&statsSection, "section", "", "statistics for one section only")
	statsCmd.Flags().IntVar(&statsTop, "top", 5, "number of most-executed files to list (0 disables)")
	statsCmd.Flags().BoolVar(&statsSections, "sections", false, "include a per-section breakdown")
	statsCmd.Flags().IntVar(&statsTrends, "trends", 0, "include daily counts for the last N days")
	rootCmd.AddCommand(statsCmd)
}
