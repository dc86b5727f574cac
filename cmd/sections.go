package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/rerun/internal/display"
	"github.com/fakeyudi/rerun/internal/events"
)

var sectionsDir string

var sectionsCmd = &cobra.Command{
	Use:   "sections [dir]",
	Short: "List sections under the watch directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := resolveDir(sectionsDir, args)
		d := newDisplay(cmd)
		filter := events.NewFilter(log, cfg.Extensions...)

		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read %s: %w", dir, err)
		}

		var infos []display.SectionInfo
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			stats, err := filter.FileStats(filepath.Join(dir, entry.Name()))
			if err != nil {
				log.Warn("skipping unreadable section", "section", entry.Name(), "error", err)
				continue
			}
			infos = append(infos, display.SectionInfo{Name: entry.Name(), Files: stats.Supported})
		}
		d.Sections(dir, infos)

		total, err := filter.FileStats(dir)
		if err != nil {
			return err
		}
		d.FileSummary(total)
		return nil
	},
}

func init() {
	sectionsCmd.Flags().StringVarP(&sectionsDir, "directory", "d", "", "directory to inspect (overrides config)")
	rootCmd.AddCommand(sectionsCmd)
}
