package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/rerun/internal/events"
	"github.com/fakeyudi/rerun/internal/executor"
	"github.com/fakeyudi/rerun/internal/watcher"
)

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and execute changed files",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := resolveDir(watchDir, args)
		d := newDisplay(cmd)

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		reg := newRegistry()
		runner := executor.New(reg, store, log)
		filter := events.NewFilter(log, cfg.Extensions...)
		w := watcher.New(log, cfg.Debounce())

		ch := make(chan string, 64)
		if err := w.Start(dir, ch); err != nil {
			return fmt.Errorf("start watching %s: %w", dir, err)
		}

		if term.IsTerminal(os.Stdout.Fd()) {
			d.ClearScreen()
		}
		d.Startup(dir, filter.Extensions())
		if !store.Healthy(cmd.Context()) {
			d.Warning("history database unavailable, executions will not be recorded")
		}
		log.Debug("watch pipeline ready", "dir", dir, "handlers", reg.Extensions())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Stop guarantees no further sends once it returns, so closing the
		// channel here is what ends the Process loop below.
		go func() {
			<-ctx.Done()
			w.Stop()
			close(ch)
		}()

		filter.Process(ctx, ch, func(ctx context.Context, path string) error {
			if cfg.AutoClear() && term.IsTerminal(os.Stdout.Fd()) {
				d.ClearScreen()
			}
			d.FileChange(path)
			res := runner.ExecuteWithTimeout(ctx, path, cfg.Timeout())
			d.Result(res)
			if !res.Success && res.ExitCode < 0 {
				// The pipeline itself failed; a program that ran and exited
				// non-zero is already a displayed result, not an error.
				return errors.New(res.ErrorMessage)
			}
			return nil
		})

		d.OK("Stopped watching")
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "directory", "d", "", "directory to watch (overrides config)")
	rootCmd.AddCommand(watchCmd)
}
