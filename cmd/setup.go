package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/rerun/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure rerun (re-run anytime to edit settings)",
	// Bypass the normal PersistentPreRunE so setup still works when the
	// existing config file is malformed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup()
	},
}

// runSetup runs the interactive setup wizard and writes the global config.
func runSetup() error {
	existing, err := config.LoadGlobal()
	if err != nil {
		fmt.Printf("  ⚠ Existing config unreadable, starting from defaults: %v\n", err)
		defaults := config.Defaults()
		existing = &defaults
	}

	cfg, err := config.RunSetup(*existing)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	path, err := config.GlobalPath()
	if err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("  ✓ Configuration saved to %s\n", path)
	fmt.Println("  Setup complete. Run 'rerun watch' to start watching.")
	fmt.Println()
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
