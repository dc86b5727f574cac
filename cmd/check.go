package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Syntax-check a file without executing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		d := newDisplay(cmd)

		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		h, ok := newRegistry().Get(ext)
		if !ok {
			return fmt.Errorf("unsupported file type: .%s", ext)
		}

		v, err := h.CheckSyntax(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("check %s: %w", path, err)
		}
		if !v.OK {
			d.Fail(fmt.Sprintf("Syntax errors in %s", path))
			if v.Detail != "" {
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(v.Detail, "\n"))
			}
			return fmt.Errorf("syntax check failed")
		}
		d.OK(fmt.Sprintf("Syntax OK: %s (%s)", path, h.Name()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
