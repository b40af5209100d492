package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sieve/sieve/internal/redact"
	"github.com/sieve/sieve/internal/report"
	"github.com/sieve/sieve/internal/types"
)

var (
	paneBorderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Underline(true)

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	previewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Background(lipgloss.Color("0"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	emptyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Align(lipgloss.Center)

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)

	sevHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	sevMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sevLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// FilterMode narrows the list to a single severity.
type FilterMode int

const (
	FilterAll FilterMode = iota
	FilterHigh
	FilterMedium
	FilterLow
)

func (f FilterMode) String() string {
	switch f {
	case FilterHigh:
		return "High"
	case FilterMedium:
		return "Medium"
	case FilterLow:
		return "Low"
	default:
		return "All"
	}
}

func (f FilterMode) allows(s types.Severity) bool {
	switch f {
	case FilterHigh:
		return s == types.SevHigh
	case FilterMedium:
		return s == types.SevMed
	case FilterLow:
		return s == types.SevLow
	default:
		return true
	}
}

// ParseFilter maps a stored filter name back to a mode. Unknown names mean All.
func ParseFilter(s string) FilterMode {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return FilterAll
	}
	sev, ok := types.ParseSeverity(s)
	if !ok {
		return FilterAll
	}
	switch sev {
	case types.SevHigh:
		return FilterHigh
	case types.SevMed:
		return FilterMedium
	default:
		return FilterLow
	}
}

// severityText returns plain text for severity (ANSI codes break table truncation).
func severityText(s types.Severity) string {
	switch s {
	case types.SevHigh:
		return "FAIL"
	case types.SevMed:
		return "WARN"
	case types.SevLow:
		return "INFO"
	default:
		return string(s)
	}
}

func severityStyle(s types.Severity) lipgloss.Style {
	switch s {
	case types.SevHigh:
		return sevHighStyle
	case types.SevMed:
		return sevMedStyle
	default:
		return sevLowStyle
	}
}

// Options configures the review session.
type Options struct {
	// Root is the directory finding paths are relative to.
	Root string
	// Baseline receives findings accepted with "g". A fresh one is used when nil.
	Baseline     *report.Baseline
	BaselinePath string
	Placeholder  string
	Strict       bool
	Prefs        Prefs
}

// Outcome summarizes a finished session.
type Outcome struct {
	Remaining []types.Finding
	Strict    bool
	Fixed     int
	Baselined int
	Ignored   int
}

// Model represents the main state of the TUI application.
type Model struct {
	table    table.Model
	viewport viewport.Model
	opts     Options

	all     []types.Finding
	visible []types.Finding
	filter  FilterMode
	strict  bool

	showHelp    bool
	showContext bool
	status      string
	ready       bool
	quitting    bool
	width       int
	height      int

	fixed     int
	baselined int
	ignored   int
}

// NewModel builds a review model over findings. The slice is copied.
func NewModel(findings []types.Finding, opts Options) Model {
	if opts.Placeholder == "" {
		opts.Placeholder = redact.Placeholder
	}
	if opts.Baseline == nil {
		opts.Baseline = report.NewBaseline()
	}
	if opts.BaselinePath == "" {
		opts.BaselinePath = filepath.Join(opts.Root, report.DefaultBaselinePath)
	}
	if opts.Prefs.ContextLines <= 0 {
		opts.Prefs.ContextLines = DefaultPrefs().ContextLines
	}

	all := make([]types.Finding, len(findings))
	copy(all, findings)

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := Model{
		table:    t,
		viewport: viewport.New(80, 10),
		opts:     opts,
		all:      all,
		filter:   ParseFilter(opts.Prefs.Filter),
		strict:   opts.Strict,
	}
	m.refresh()
	return m
}

func columns(width int) []table.Column {
	file := width - 6 - 6 - 20 - 8
	if file < 10 {
		file = 10
	}
	return []table.Column{
		{Title: "SEV", Width: 6},
		{Title: "FILE", Width: file},
		{Title: "LINE", Width: 6},
		{Title: "RULE", Width: 20},
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Outcome reports what is left after the session and the strict setting the
// user ended with.
func (m Model) Outcome() Outcome {
	rem := make([]types.Finding, len(m.all))
	copy(rem, m.all)
	return Outcome{
		Remaining: rem,
		Strict:    m.strict,
		Fixed:     m.fixed,
		Baselined: m.baselined,
		Ignored:   m.ignored,
	}
}

// refresh recomputes the visible rows and keeps the cursor in range.
func (m *Model) refresh() {
	visible := make([]types.Finding, 0, len(m.all))
	for _, f := range m.all {
		if m.filter.allows(f.Severity) {
			visible = append(visible, f)
		}
	}
	m.visible = visible
	rows := make([]table.Row, 0, len(m.visible))
	for _, f := range m.visible {
		rows = append(rows, table.Row{
			severityText(f.Severity),
			f.Path,
			fmt.Sprintf("%d", f.Line),
			f.RuleID,
		})
	}
	cur := m.table.Cursor()
	m.table.SetRows(rows)
	if len(rows) == 0 {
		return
	}
	if cur >= len(rows) {
		cur = len(rows) - 1
	}
	if cur < 0 {
		cur = 0
	}
	m.table.SetCursor(cur)
}

func (m *Model) setFilter(f FilterMode) {
	m.filter = f
	m.refresh()
	if len(m.visible) > 0 {
		m.table.SetCursor(0)
	}
}

// move steps the cursor and wraps around at either end.
func (m *Model) move(delta int) {
	n := len(m.visible)
	if n == 0 {
		return
	}
	i := (m.table.Cursor() + delta + n) % n
	m.table.SetCursor(i)
}

func (m Model) selected() (types.Finding, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return types.Finding{}, false
	}
	return m.visible[i], true
}

func (m Model) resolvePath(p string) string {
	if filepath.IsAbs(p) || m.opts.Root == "" {
		return p
	}
	return filepath.Join(m.opts.Root, filepath.FromSlash(p))
}

func (m *Model) resize() {
	listWidth := m.width/2 - 2
	if listWidth < 30 {
		listWidth = 30
	}
	m.table.SetColumns(columns(listWidth))
	m.table.SetWidth(listWidth)
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)

	vw := m.width - 14
	if vw > 120 {
		vw = 120
	}
	if vw < 20 {
		vw = 20
	}
	vh := m.height - 12
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = vw
	m.viewport.Height = vh
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resize()
		return m, nil
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case resolvedMsg:
		return m.resolve(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch key {
		case "esc", "q", "?":
			m.showHelp = false
		}
		return m, nil
	}

	if m.showContext {
		switch key {
		case "esc", "q", "enter":
			m.showContext = false
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch key {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		m.openContext()
	case "down", "j":
		m.move(1)
	case "up", "k":
		m.move(-1)
	case "s":
		m.strict = !m.strict
	case "?":
		m.showHelp = true
	case "1":
		m.setFilter(FilterAll)
	case "2":
		m.setFilter(FilterHigh)
	case "3":
		m.setFilter(FilterMedium)
	case "4":
		m.setFilter(FilterLow)
	case "c":
		return m.dispatch(m.copyAlert())
	case "r":
		return m.dispatch(m.fixSelected())
	case "g":
		return m.dispatch(m.baselineSelected())
	case "i":
		return m.dispatch(m.ignoreSelected())
	}
	return m, nil
}

func (m Model) dispatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg == nil {
		return m, nil
	}
	return m.Update(msg)
}

// resolve drops every finding the action handled and ends the session once
// nothing is left to review.
func (m Model) resolve(msg resolvedMsg) (tea.Model, tea.Cmd) {
	kept := make([]types.Finding, 0, len(m.all))
	removed := 0
	for _, f := range m.all {
		if msg.match(f) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	m.all = kept
	switch msg.kind {
	case resolvedFixed:
		m.fixed += removed
	case resolvedBaselined:
		m.baselined += removed
	case resolvedIgnored:
		m.ignored += removed
	}
	m.status = msg.status
	m.refresh()
	if len(m.all) == 0 {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) openContext() {
	f, ok := m.selected()
	if !ok {
		return
	}
	lines, start, err := readFileContext(m.resolvePath(f.Path), f.Line, m.opts.Prefs.ContextLines)
	if err != nil {
		m.status = fmt.Sprintf("Error reading context: %v", err)
		return
	}
	m.viewport.SetContent(renderContext(f, lines, start))
	m.viewport.GotoTop()
	m.showContext = true
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showHelp {
		return m.place(popupStyle.Render(helpText()))
	}
	if m.showContext {
		body := m.viewport.View() + "\n\n" + keyStyle.Render("enter/esc") + " close  " +
			keyStyle.Render("↑/↓") + " scroll"
		return m.place(popupStyle.Render(body))
	}

	title := titleStyle.Render(fmt.Sprintf("Findings (%d)", len(m.visible)))
	var list string
	if len(m.visible) == 0 {
		list = emptyTextStyle.Width(m.table.Width()).Render(
			fmt.Sprintf("No findings match filter %s", m.filter))
	} else {
		list = m.table.View()
	}
	left := paneBorderStyle.Render(title + "\n" + list)

	detailWidth := m.width - lipgloss.Width(left) - 2
	if detailWidth < 20 {
		detailWidth = 20
	}
	right := paneBorderStyle.Width(detailWidth).Render(m.detailView())

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar())
}

func (m Model) place(s string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func (m Model) detailView() string {
	f, ok := m.selected()
	if !ok {
		return titleStyle.Render("Detail") + "\n\nNothing selected."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Detail") + "\n\n")
	fmt.Fprintf(&b, "Rule ID:    %s\n", f.RuleID)
	fmt.Fprintf(&b, "Severity:   %s\n", severityStyle(f.Severity).Render(report.SeverityLabel(f.Severity)))
	fmt.Fprintf(&b, "Confidence: %d%%\n", f.Score)
	fmt.Fprintf(&b, "Location:   %s:%d\n\n", m.resolvePath(f.Path), f.Line)
	b.WriteString(labelStyle.Render("Redacted Preview:") + "\n")
	b.WriteString(previewStyle.Render(f.Preview) + "\n\n")
	b.WriteString(labelStyle.Render("Why:") + "\n")
	for _, r := range f.Reasons {
		b.WriteString("  • " + r + "\n")
	}
	return b.String()
}

func (m Model) statusBar() string {
	strict := "OFF"
	if m.strict {
		strict = matchStyle.Render("ON")
	}
	left := fmt.Sprintf(" Filter: %s | Strict: %s | Total: %d ", m.filter, strict, len(m.all))
	if m.status != "" {
		left += "| " + m.status + " "
	}
	help := keyStyle.Render("?") + " help  " + keyStyle.Render("q") + " quit "
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(help)
	if gap < 1 {
		gap = 1
	}
	return statusStyle.Render(left + strings.Repeat(" ", gap) + help)
}

func helpText() string {
	keys := [][2]string{
		{"↑/↓ j/k", "move"},
		{"enter", "show file context"},
		{"1 2 3 4", "filter All / High / Medium / Low"},
		{"c", "copy alert to clipboard"},
		{"r", "redact secret in file"},
		{"g", "add to baseline"},
		{"i", "add file to " + ignoreFileName},
		{"s", "toggle strict mode"},
		{"?", "toggle help"},
		{"q/esc", "quit"},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys") + "\n\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", k[0])), k[1])
	}
	return b.String()
}
