package types

import "strings"

// Severity is a coarse-grained risk level for a finding. Levels are ordered
// low < medium < high; use Rank to compare them.
type Severity string

const (
	SevLow  Severity = "low"
	SevMed  Severity = "medium"
	SevHigh Severity = "high"
)

// Rank returns the ordinal of s (low=1, medium=2, high=3) or 0 when unknown.
func (s Severity) Rank() int {
	switch s {
	case SevLow:
		return 1
	case SevMed:
		return 2
	case SevHigh:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s is at or above other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// ParseSeverity maps user input such as "High" or "med" to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SevLow, true
	case "medium", "med":
		return SevMed, true
	case "high":
		return SevHigh, true
	}
	return "", false
}

// Finding describes one scored candidate secret at a path and line.
// StartIndex/EndIndex are byte offsets of the matched value within the line,
// half-open. The raw value is never stored; Preview is the redacted form.
type Finding struct {
	RuleID      string   `json:"rule_id"`
	Severity    Severity `json:"severity"`
	Score       int      `json:"score"`
	Path        string   `json:"file_path"`
	Line        int      `json:"line_number"`
	StartIndex  int      `json:"start_index"`
	EndIndex    int      `json:"end_index"`
	Preview     string   `json:"redacted_preview"`
	Fingerprint string   `json:"fingerprint"`
	Reasons     []string `json:"reason"`
}

// Replacement is a single in-line edit. Line is 1-based; StartCol is
// inclusive and EndCol exclusive, both 1-based character (rune) columns.
type Replacement struct {
	Line     int
	StartCol int
	EndCol   int
	NewText  string
}

// DiffLine is an added line from a unified diff, addressed by its position in
// the new version of the file.
type DiffLine struct {
	Path    string
	LineNum int
	Content string
}
