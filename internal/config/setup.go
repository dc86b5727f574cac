package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// RunSetup runs the interactive setup wizard and returns the resulting
// config. existing seeds the default shown for each prompt (edit mode).
func RunSetup(existing Config) (Config, error) {
	r := bufio.NewReader(os.Stdin)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Printf("%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Printf("%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	// Unparseable or non-positive numbers keep the default.
	askInt := func(prompt string, defaultVal int) (int, error) {
		ans, err := ask(prompt, strconv.Itoa(defaultVal))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(ans)
		if err != nil || n <= 0 {
			return defaultVal, nil
		}
		return n, nil
	}

	askBool := func(prompt string, defaultVal bool) (bool, error) {
		def := "n"
		if defaultVal {
			def = "y"
		}
		ans, err := ask(prompt+" (y/n)", def)
		if err != nil {
			return false, err
		}
		ans = strings.ToLower(ans)
		return ans == "y" || ans == "yes", nil
	}

	cfg := existing

	fmt.Println()
	fmt.Println("  ┌─────────────────────────────────┐")
	fmt.Println("  │       rerun configuration       │")
	fmt.Println("  └─────────────────────────────────┘")
	fmt.Println()

	var err error

	cfg.WatchDirectory, err = ask("  Watch directory", cfg.WatchDirectory)
	if err != nil {
		return Config{}, err
	}

	exts, err := ask("  File extensions (comma separated)", strings.Join(cfg.Extensions, ", "))
	if err != nil {
		return Config{}, err
	}
	cfg.Extensions = splitExtensions(exts)

	cfg.DatabasePath, err = ask("  History database path", cfg.DatabasePath)
	if err != nil {
		return Config{}, err
	}

	cfg.MaxHistoryRecords, err = askInt("  Max history records", cfg.MaxHistoryRecords)
	if err != nil {
		return Config{}, err
	}

	cfg.ExecutionTimeoutSecs, err = askInt("  Execution timeout (seconds)", cfg.ExecutionTimeoutSecs)
	if err != nil {
		return Config{}, err
	}

	cfg.DebounceMs, err = askInt("  Debounce (milliseconds)", cfg.DebounceMs)
	if err != nil {
		return Config{}, err
	}

	showTime, err := askBool("  Show execution time", cfg.TimingEnabled())
	if err != nil {
		return Config{}, err
	}
	cfg.ShowExecutionTime = &showTime

	autoClear, err := askBool("  Clear terminal before each result", cfg.AutoClear())
	if err != nil {
		return Config{}, err
	}
	cfg.AutoClearOutput = &autoClear

	fmt.Println()
	return cfg, nil
}

// splitExtensions parses a comma separated extension list, dropping dots
// and empty entries.
func splitExtensions(s string) []string {
	var exts []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), ".")
		if part != "" {
			exts = append(exts, part)
		}
	}
	return exts
}
