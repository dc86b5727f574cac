package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configurable Rerun settings.
type Config struct {
	WatchDirectory       string   `json:"watch_directory"`
	Extensions           []string `json:"extensions"`
	DatabasePath         string   `json:"database_path"`
	MaxHistoryRecords    int      `json:"max_history_records"`
	ShowExecutionTime    *bool    `json:"show_execution_time,omitempty"`
	AutoClearOutput      *bool    `json:"auto_clear_output,omitempty"`
	ExecutionTimeoutSecs int      `json:"execution_timeout_secs"` // 0 means default
	DebounceMs           int      `json:"debounce_ms"`            // 0 means default
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		WatchDirectory:       "./examples",
		Extensions:           []string{"py", "go"},
		DatabasePath:         "./rerun.db",
		MaxHistoryRecords:    1000,
		ExecutionTimeoutSecs: 30,
		DebounceMs:           200,
	}
}

// Timeout returns the per-execution timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.ExecutionTimeoutSecs) * time.Second
}

// Debounce returns the change-coalescing window.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// TimingEnabled reports whether execution durations should be displayed.
// Defaults to true when unset.
func (c Config) TimingEnabled() bool {
	return c.ShowExecutionTime == nil || *c.ShowExecutionTime
}

// AutoClear reports whether the screen is cleared before each execution.
// Defaults to false when unset.
func (c Config) AutoClear() bool {
	return c.AutoClearOutput != nil && *c.AutoClearOutput
}

// GlobalPath returns the location of the per-user config file.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rerun", "config.json"), nil
}

// LoadGlobal reads ~/.config/rerun/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .rerunconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".rerunconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Save writes cfg as indented JSON, creating parent directories as needed.
func Save(cfg Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	overlay(&result, global)
	overlay(&result, project)
	return result
}

func overlay(dst *Config, layer *Config) {
	if layer == nil {
		return
	}
	if layer.WatchDirectory != "" {
		dst.WatchDirectory = layer.WatchDirectory
	}
	if len(layer.Extensions) > 0 {
		dst.Extensions = layer.Extensions
	}
	if layer.DatabasePath != "" {
		dst.DatabasePath = layer.DatabasePath
	}
	if layer.MaxHistoryRecords > 0 {
		dst.MaxHistoryRecords = layer.MaxHistoryRecords
	}
	if layer.ShowExecutionTime != nil {
		dst.ShowExecutionTime = layer.ShowExecutionTime
	}
	if layer.AutoClearOutput != nil {
		dst.AutoClearOutput = layer.AutoClearOutput
	}
	if layer.ExecutionTimeoutSecs > 0 {
		dst.ExecutionTimeoutSecs = layer.ExecutionTimeoutSecs
	}
	if layer.DebounceMs > 0 {
		dst.DebounceMs = layer.DebounceMs
	}
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
