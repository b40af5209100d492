package tui

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sieve/sieve/internal/logging"
)

// Prefs holds user preferences for the TUI that persist across sessions.
type Prefs struct {
	// Filter is the severity filter the list opens with ("all", "high", ...).
	Filter string `json:"filter"`
	// ContextLines is how many lines either side of a finding Enter shows.
	ContextLines int `json:"context_lines"`
}

// DefaultPrefs returns the default preferences.
func DefaultPrefs() Prefs {
	return Prefs{Filter: "all", ContextLines: 2}
}

// prefsPath returns the path to the TUI preferences file.
func prefsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".sieve", "tui_prefs.json"), nil
}

// LoadPrefs loads user preferences from disk, returning defaults if not found.
func LoadPrefs() Prefs {
	prefs := DefaultPrefs()

	path, err := prefsPath()
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		logging.L().Warnw("ignoring unreadable tui preferences", "path", path, "error", err)
		return DefaultPrefs()
	}
	if prefs.ContextLines <= 0 {
		prefs.ContextLines = DefaultPrefs().ContextLines
	}
	return prefs
}

// SavePrefs persists user preferences to disk.
func SavePrefs(prefs Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
