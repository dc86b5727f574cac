package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/rerun/internal/executor"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute a single file once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := newDisplay(cmd)

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		res := executor.New(newRegistry(), store, log).Execute(cmd.Context(), args[0])
		d.Result(res)
		if !res.Success {
			return fmt.Errorf("%s failed", filepath.Base(args[0]))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
