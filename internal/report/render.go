package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/sieve/sieve/internal/types"
)

type PrintOptions struct {
	NoColor      bool
	Verbose      bool
	Duration     time.Duration
	FilesScanned int
	Baselined    int
}

// SortFindings orders findings by severity (high first), then path and line.
func SortFindings(findings []types.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Line < b.Line
	})
}

// SeverityLabel renders a severity as "High", "Medium" or "Low".
func SeverityLabel(s types.Severity) string {
	switch s {
	case types.SevHigh:
		return "High"
	case types.SevMed:
		return "Medium"
	case types.SevLow:
		return "Low"
	default:
		return string(s)
	}
}

// PrintText writes one line per finding:
//
//	[High] path:line - RULE (preview)
//
// followed by the reasons when opts.Verbose is set.
func PrintText(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "Sieve: No secrets found.")
	}
	for _, f := range findings {
		label := "[" + SeverityLabel(f.Severity) + "]"
		if !opts.NoColor {
			label = colorSeverity(f.Severity, label)
		}
		fmt.Fprintf(w, "%s %s:%d - %s (%s)\n", label, f.Path, f.Line, f.RuleID, f.Preview)
		if opts.Verbose && len(f.Reasons) > 0 {
			fmt.Fprintf(w, "    Why: %s\n", strings.Join(f.Reasons, ", "))
		}
	}
	printFooter(w, findings, opts)
}

// PrintTable renders findings as a bordered table.
func PrintTable(w io.Writer, findings []types.Finding, opts PrintOptions) error {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No secrets found ✅")
		printFooter(w, findings, opts)
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("SEVERITY", "SCORE", "RULE", "FILE", "LINE", "PREVIEW")
	for _, f := range findings {
		sev := SeverityLabel(f.Severity)
		if !opts.NoColor {
			sev = colorSeverity(f.Severity, sev)
		}
		row := []string{sev, fmt.Sprint(f.Score), f.RuleID, f.Path, fmt.Sprint(f.Line), f.Preview}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	printFooter(w, findings, opts)
	return nil
}

// WriteJSON writes findings as an indented JSON array ("[]" when empty).
func WriteJSON(w io.Writer, findings []types.Finding) error {
	if findings == nil {
		findings = []types.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}

// Counts tallies findings per severity.
func Counts(findings []types.Finding) (high, med, low int) {
	for _, f := range findings {
		switch f.Severity {
		case types.SevHigh:
			high++
		case types.SevMed:
			med++
		default:
			low++
		}
	}
	return high, med, low
}

func printFooter(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned <= 0 {
		return
	}
	high, med, low := Counts(findings)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (high: %d, medium: %d, low: %d)\n", len(findings), high, med, low)
	if opts.Baselined > 0 {
		fmt.Fprintf(w, "Suppressed by baseline: %d\n", opts.Baselined)
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	}
}

func colorSeverity(s types.Severity, text string) string {
	switch s {
	case types.SevHigh:
		return "\x1b[31m" + text + "\x1b[0m" // red
	case types.SevMed:
		return "\x1b[33m" + text + "\x1b[0m" // yellow
	default:
		return "\x1b[36m" + text + "\x1b[0m" // cyan
	}
}
