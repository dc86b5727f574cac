package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all execution history",
	RunE: func(cmd *cobra.Command, args []string) error {
		d := newDisplay(cmd)

		// Confirm only when someone is actually at the keyboard; scripts
		// and pipes behave like --force.
		if !clearForce && term.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprint(cmd.OutOrStdout(), "Are you sure you want to clear all execution history? [y/N]: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return err
			}
			ans := strings.ToLower(strings.TrimSpace(line))
			if ans != "y" && ans != "yes" {
				d.Info("Operation cancelled")
				return nil
			}
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Clear(cmd.Context())
		if err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		d.OK(fmt.Sprintf("Execution history cleared (%d records)", n))
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}
