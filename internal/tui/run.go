package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sieve/sieve/internal/types"
)

// Run opens the review UI over findings and blocks until the user quits or
// every finding has been handled. The filter the user ends on is remembered
// for the next session.
func Run(findings []types.Finding, opts Options) (Outcome, error) {
	if opts.Prefs == (Prefs{}) {
		opts.Prefs = LoadPrefs()
	}
	m := NewModel(findings, opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return m.Outcome(), fmt.Errorf("error running TUI: %w", err)
	}
	fm, ok := final.(Model)
	if !ok {
		return m.Outcome(), nil
	}
	prefs := opts.Prefs
	prefs.Filter = strings.ToLower(fm.filter.String())
	if prefs != opts.Prefs {
		_ = SavePrefs(prefs)
	}
	return fm.Outcome(), nil
}
