package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sieve/sieve/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sized(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	return m
}

func TestView_BeforeSize(t *testing.T) {
	m := NewModel(sampleFindings(), Options{})
	assert.Contains(t, m.View(), "Initializing")
}

func TestView_ListAndDetail(t *testing.T) {
	m := sized(t, NewModel(sampleFindings(), Options{}))
	out := m.View()

	assert.Contains(t, out, "Findings (3)")
	assert.Contains(t, out, "AWS_ACCESS_KEY")
	assert.Contains(t, out, "Confidence: 90%")
	assert.Contains(t, out, "AKI...KEY")
	assert.Contains(t, out, "Found AWS Access Key ID")
	assert.Contains(t, out, "Filter: All")
}

func TestView_Help(t *testing.T) {
	m := sized(t, NewModel(sampleFindings(), Options{}))
	m, _ = press(t, m, keyRunes("?"))
	out := m.View()
	assert.Contains(t, out, "toggle strict mode")
	assert.Contains(t, out, ".sieveignore")
}

func TestView_EmptyFilter(t *testing.T) {
	m := sized(t, NewModel(sampleFindings(), Options{}))
	m, _ = press(t, m, keyRunes("4"))
	out := m.View()
	assert.Contains(t, out, "No findings match filter Low")
	assert.Contains(t, out, "Nothing selected.")
}

func TestView_Context(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.env"), []byte("one\ntwo\nthree\n"), 0o644))
	m := sized(t, NewModel(sampleFindings(), Options{Root: dir}))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	out := m.View()
	assert.Contains(t, out, "a.env:1")
	assert.Contains(t, out, "three")
}

func TestView_QuittingIsBlank(t *testing.T) {
	m := sized(t, NewModel(sampleFindings(), Options{}))
	m, _ = press(t, m, keyRunes("q"))
	assert.Equal(t, "", m.View())
}

func TestReadFileContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("1\n2\n3\n4\n5\n6\n7\n"), 0o644))

	lines, start, err := readFileContext(path, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, start)
	assert.Equal(t, []string{"2", "3", "4", "5", "6"}, lines)

	lines, start, err = readFileContext(path, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, start)
	assert.Equal(t, []string{"1", "2", "3"}, lines)

	_, _, err = readFileContext(path, 20, 2)
	assert.Error(t, err)

	_, _, err = readFileContext(filepath.Join(dir, "missing"), 1, 2)
	assert.Error(t, err)
}

func TestRenderContextMarksTarget(t *testing.T) {
	f := types.Finding{Path: "notes.unknownext", Line: 3}
	out := renderContext(f, []string{"a", "b", "c"}, 2)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[2], "   2 │ a")
	assert.Contains(t, lines[3], "b")
	assert.Contains(t, lines[3], "> ")
	assert.Contains(t, lines[4], "   4 │ c")
}

func TestHighlightLine_UnknownTypePassesThrough(t *testing.T) {
	assert.Equal(t, "plain text", highlightLine("plain text", "file.unknownext"))
}
