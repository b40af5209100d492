package redact

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/sieve/sieve/internal/detectors"
	"github.com/sieve/sieve/internal/types"
)

// ReplacementFor converts the byte range of f within lineText into a
// character-column Replacement that substitutes placeholder. It reports false
// when the range no longer fits the line or no longer holds the secret the
// finding was reported for, for example after the file changed.
func ReplacementFor(f types.Finding, lineText, placeholder string) (types.Replacement, bool) {
	if f.Line < 1 || f.StartIndex < 0 || f.StartIndex > f.EndIndex || f.EndIndex > len(lineText) {
		return types.Replacement{}, false
	}
	if !utf8.ValidString(lineText[:f.StartIndex]) || !utf8.ValidString(lineText[f.StartIndex:f.EndIndex]) {
		return types.Replacement{}, false
	}
	if !stillHolds(f, lineText[f.StartIndex:f.EndIndex]) {
		return types.Replacement{}, false
	}
	startCol := utf8.RuneCountInString(lineText[:f.StartIndex]) + 1
	endCol := startCol + utf8.RuneCountInString(lineText[f.StartIndex:f.EndIndex])
	return types.Replacement{
		Line:     f.Line,
		StartCol: startCol,
		EndCol:   endCol,
		NewText:  placeholder,
	}, true
}

// stillHolds reports whether text is still the value f was reported for.
// Private keys carry a constant value, so the header itself is checked.
func stillHolds(f types.Finding, text string) bool {
	if f.RuleID == detectors.RulePrivateKey {
		return detectors.IsPrivateKeyHeader(text)
	}
	return detectors.Redact(text) == f.Preview
}

// FixFindings redacts every finding that belongs to path in a single Apply
// call. Line text is read from the current file contents.
func FixFindings(path string, findings []types.Finding, placeholder string) Result {
	if placeholder == "" {
		placeholder = Placeholder
	}
	lines, err := readLines(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Message: fmt.Sprintf("File not found: %s", path)}
		}
		return Result{Message: fmt.Sprintf("Failed to read %s: %v", path, err)}
	}
	reps := make([]types.Replacement, 0, len(findings))
	stale := 0
	for _, f := range findings {
		if f.Line < 1 || f.Line > len(lines) {
			stale++
			continue
		}
		r, ok := ReplacementFor(f, lines[f.Line-1], placeholder)
		if !ok {
			stale++
			continue
		}
		reps = append(reps, r)
	}
	if len(reps) == 0 {
		return Result{Message: fmt.Sprintf("No applicable findings for %s", path), Skipped: stale}
	}
	res := Apply(path, reps)
	res.Skipped += stale
	return res
}

// FixFinding redacts a single finding in its file.
func FixFinding(f types.Finding, placeholder string) Result {
	return FixFindings(f.Path, []types.Finding{f}, placeholder)
}

// FixAll groups findings by file and redacts each file once. The returned map
// holds one Result per path.
func FixAll(findings []types.Finding, placeholder string) map[string]Result {
	byPath := make(map[string][]types.Finding)
	var order []string
	for _, f := range findings {
		if _, ok := byPath[f.Path]; !ok {
			order = append(order, f.Path)
		}
		byPath[f.Path] = append(byPath[f.Path], f)
	}
	out := make(map[string]Result, len(order))
	for _, p := range order {
		out[p] = FixFindings(p, byPath[p], placeholder)
	}
	return out
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}
