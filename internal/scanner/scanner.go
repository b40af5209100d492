package scanner

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sieve/sieve/internal/detectors"
	"github.com/sieve/sieve/internal/types"
)

// MaxLineLength is the longest line, in characters, that is scored. Longer
// lines are treated as minified or generated and skipped.
const MaxLineLength = 1000

// Score thresholds for severities.
const (
	HighThreshold   = 80
	MediumThreshold = 60
)

// LineScanner scores a single (path, line, text) triple. Implementations must
// be pure: the same input always yields the same finding.
type LineScanner interface {
	ScanLine(path string, lineNum int, text string) (types.Finding, bool)
}

// Scanner is the default LineScanner backed by a detector catalog.
type Scanner struct {
	catalog *detectors.Catalog
}

// New returns a Scanner over c. A nil catalog selects detectors.Default().
func New(c *detectors.Catalog) *Scanner {
	if c == nil {
		c = detectors.Default()
	}
	return &Scanner{catalog: c}
}

// Catalog returns the registry the scanner evaluates.
func (s *Scanner) Catalog() *detectors.Catalog { return s.catalog }

// ScanLine scores one line and returns a finding when the score reaches the
// medium threshold.
func (s *Scanner) ScanLine(path string, lineNum int, text string) (types.Finding, bool) {
	if utf8.RuneCountInString(text) > MaxLineLength {
		return types.Finding{}, false
	}

	var (
		score   int
		reasons []string
		ruleID  = detectors.RuleUnknown
		value   string
		start   int
		end     int
		matched bool
	)

	if m, ok := s.catalog.FirstMatch(text); ok {
		score = m.Rule.BaseScore
		ruleID = m.Rule.ID
		value = m.Value
		start, end = m.Start, m.End
		reasons = append(reasons, m.Rule.Reason)
		matched = true
	} else if a, ok := s.catalog.MatchAssignment(text); ok {
		value = a.Value
		start, end = a.Start, a.End
		matched = true

		if s.catalog.IsSuspectKey(a.Key) {
			score += 40
			ruleID = detectors.RuleSuspectVariable
			reasons = append(reasons, "Variable '"+a.Key+"' implies secret")
		}
		n := utf8.RuneCountInString(a.Value)
		if n > 16 {
			h := detectors.Entropy(a.Value)
			if h > 4.0 {
				score += 30
				reasons = append(reasons, "Value has high entropy")
			} else if h > 3.0 && n > 20 {
				score += 20
				reasons = append(reasons, "Value has moderate entropy and length")
			}
		} else if n < 8 {
			score -= 20
			reasons = append(reasons, "Value is too short")
		}
		if s.catalog.IsKeyLike(a.Value) {
			score += 30
			reasons = append(reasons, "Value looks like an API key (sk-...)")
		}
	}
	if !matched {
		return types.Finding{}, false
	}

	if detectors.IsTestPath(path) {
		score -= 40
		reasons = append(reasons, "File appears to be a test/mock")
	}
	if s.catalog.IsDummy(value) {
		score -= 50
		reasons = append(reasons, "Value matches known placeholders")
	}

	score = clamp(score, 0, 100)
	sev, ok := SeverityForScore(score)
	if !ok {
		return types.Finding{}, false
	}

	return types.Finding{
		RuleID:      ruleID,
		Severity:    sev,
		Score:       score,
		Path:        path,
		Line:        lineNum,
		StartIndex:  start,
		EndIndex:    end,
		Preview:     detectors.Redact(value),
		Fingerprint: Fingerprint(ruleID, value, path, lineNum),
		Reasons:     reasons,
	}, true
}

// SeverityForScore maps a clamped score to a severity. Scores under the
// medium threshold are discarded, so SevLow is never returned here.
func SeverityForScore(score int) (types.Severity, bool) {
	switch {
	case score >= HighThreshold:
		return types.SevHigh, true
	case score >= MediumThreshold:
		return types.SevMed, true
	default:
		return "", false
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ScanReader scans r line by line, numbering lines from 1, and calls emit for
// every finding. Both "\n" and "\r\n" terminators are accepted.
func ScanReader(ls LineScanner, path string, r io.Reader, emit func(types.Finding)) error {
	br := bufio.NewReader(r)
	line := 0
	for {
		text, err := br.ReadString('\n')
		if len(text) > 0 {
			line++
			text = strings.TrimSuffix(text, "\n")
			text = strings.TrimSuffix(text, "\r")
			if f, ok := ls.ScanLine(path, line, text); ok {
				emit(f)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// ScanDiffLines scores every added line produced by the diff parser.
func ScanDiffLines(ls LineScanner, lines []types.DiffLine) []types.Finding {
	var out []types.Finding
	for _, l := range lines {
		if f, ok := ls.ScanLine(l.Path, l.LineNum, l.Content); ok {
			out = append(out, f)
		}
	}
	return out
}
