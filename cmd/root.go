package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/rerun/internal/config"
	"github.com/fakeyudi/rerun/internal/display"
	"github.com/fakeyudi/rerun/internal/handler"
	"github.com/fakeyudi/rerun/internal/history"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// log is the root logger. Quiet by default so the styled console output
// stays readable; --verbose lowers it to Debug.
var log *slog.Logger

var (
	verbose bool
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "rerun",
	Short: "Watch source files and re-execute them on every change",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		// Load and merge config files.
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		// Flag overrides beat both config files.
		if dbPath != "" {
			cfg.DatabasePath = dbPath
		}
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore opens the history database at the configured path.
func openStore() (*history.Store, error) {
	store, err := history.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open history database %s: %w", cfg.DatabasePath, err)
	}
	return store, nil
}

// newDisplay builds a Display writing to the command's stdout.
func newDisplay(cmd *cobra.Command) *display.Display {
	return display.New(cmd.OutOrStdout(), cfg.TimingEnabled())
}

// newRegistry returns a Registry with every built-in language handler.
func newRegistry() *handler.Registry {
	reg := handler.NewRegistry()
	for _, h := range []handler.Handler{handler.NewPython(), handler.NewGolang()} {
		reg.Register(h.Extension(), h)
	}
	return reg
}

// resolveDir picks the target directory: a positional argument beats the
// -d flag beats the configured watch directory.
func resolveDir(flagVal string, args []string) string {
	dir := cfg.WatchDirectory
	if flagVal != "" {
		dir = flagVal
	}
	if len(args) == 1 {
		dir = args[0]
	}
	return dir
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "history database path (overrides config)")
}
