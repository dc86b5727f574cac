package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent executions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		recs, err := store.History(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		newDisplay(cmd).History(recs, historyLimit)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum records to show")
	rootCmd.AddCommand(historyCmd)
}
