package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sieve/sieve/internal/files"
	"github.com/sieve/sieve/internal/ignore"
	"github.com/sieve/sieve/internal/logging"
	"github.com/sieve/sieve/internal/redact"
	"github.com/sieve/sieve/internal/types"
)

const ignoreFileName = ignore.FileName

// clipboardWrite is swapped out in tests; headless machines have no clipboard.
var clipboardWrite = clipboard.WriteAll

type statusMsg string

type resolution int

const (
	resolvedFixed resolution = iota + 1
	resolvedBaselined
	resolvedIgnored
)

// resolvedMsg removes the findings match selects from the session.
type resolvedMsg struct {
	kind   resolution
	status string
	match  func(types.Finding) bool
}

func byFingerprint(fp string) func(types.Finding) bool {
	return func(f types.Finding) bool { return f.Fingerprint == fp }
}

func byPath(p string) func(types.Finding) bool {
	return func(f types.Finding) bool { return f.Path == p }
}

// alertText is the summary placed on the clipboard. It carries only the
// redacted preview.
func alertText(f types.Finding) string {
	return fmt.Sprintf("Sieve Alert!\nRule: %s\nFile: %s:%d\nSecret: %s\nWhy: %s",
		f.RuleID, f.Path, f.Line, f.Preview, strings.Join(f.Reasons, ", "))
}

func (m Model) copyAlert() tea.Msg {
	f, ok := m.selected()
	if !ok {
		return nil
	}
	if err := clipboardWrite(alertText(f)); err != nil {
		logging.L().Debugw("clipboard write failed", "error", err)
		return statusMsg(fmt.Sprintf("Copy failed: %v", err))
	}
	return statusMsg("Copied to clipboard!")
}

func (m Model) fixSelected() tea.Msg {
	f, ok := m.selected()
	if !ok {
		return nil
	}
	target := f
	target.Path = m.resolvePath(f.Path)
	res := redact.FixFinding(target, m.opts.Placeholder)
	if !res.Success {
		return statusMsg("Error: " + res.Message)
	}
	return resolvedMsg{kind: resolvedFixed, status: "Fixed!", match: byFingerprint(f.Fingerprint)}
}

func (m Model) baselineSelected() tea.Msg {
	f, ok := m.selected()
	if !ok {
		return nil
	}
	m.opts.Baseline.Add(f)
	if err := m.opts.Baseline.Save(m.opts.BaselinePath); err != nil {
		return statusMsg(fmt.Sprintf("Error writing baseline: %v", err))
	}
	return resolvedMsg{kind: resolvedBaselined, status: "Added to baseline", match: byFingerprint(f.Fingerprint)}
}

// ignoreSelected appends the selected file to the ignore file as an anchored
// pattern and drops every finding in that file.
func (m Model) ignoreSelected() tea.Msg {
	f, ok := m.selected()
	if !ok {
		return nil
	}
	rel := f.Path
	if filepath.IsAbs(rel) && m.opts.Root != "" {
		if r, err := filepath.Rel(m.opts.Root, rel); err == nil {
			rel = r
		}
	}
	pattern := "/" + strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if err := files.AppendIgnore(m.opts.Root, ignoreFileName, pattern); err != nil {
		return statusMsg(fmt.Sprintf("Error writing %s: %v", ignoreFileName, err))
	}
	return resolvedMsg{
		kind:   resolvedIgnored,
		status: fmt.Sprintf("Added %s to %s", rel, ignoreFileName),
		match:  byPath(f.Path),
	}
}
