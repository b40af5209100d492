// Package redact rewrites files in place to remove secrets. Apply splices
// column-addressed replacements into a file; ApplyRules performs regex
// redaction for the fix command. Both write through the same atomic writer.
package redact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/sieve/sieve/internal/logging"
	"github.com/sieve/sieve/internal/types"
)

// Placeholder is the default text substituted for a redacted secret.
const Placeholder = "REDACTED_SECRET"

// Result reports the outcome of Apply. Applied and Skipped count the
// replacements that were spliced in or dropped as out of range.
type Result struct {
	Success bool
	Message string
	Applied int
	Skipped int
}

// Apply splices reps into the file at path and writes it back atomically.
// Replacements are applied bottom-up and right-to-left so the columns of the
// remaining edits stay valid whatever order the caller passes them in.
// Replacements that fall outside the file are skipped; the rest still apply.
// The newline convention and trailing newline of the file are preserved.
// Apply never panics and reports failures through Result.
func Apply(path string, reps []types.Replacement) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Message: fmt.Sprintf("File not found: %s", path)}
		}
		return Result{Message: fmt.Sprintf("Failed to stat %s: %v", path, err)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Message: fmt.Sprintf("Failed to read %s: %v", path, err)}
	}

	out, applied := splice(string(data), reps)
	skipped := len(reps) - applied
	if skipped > 0 {
		logging.L().Debugw("skipped out-of-range replacements", "path", path, "skipped", skipped)
	}
	if err := writeAtomic(path, []byte(out), info.Mode().Perm()); err != nil {
		return Result{Message: fmt.Sprintf("Failed to write %s: %v", path, err), Applied: applied, Skipped: skipped}
	}
	return Result{
		Success: true,
		Message: "File fixed successfully",
		Applied: applied,
		Skipped: skipped,
	}
}

// splice applies reps to content and returns the new content and the number
// of replacements that were applied.
func splice(content string, reps []types.Replacement) (string, int) {
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}
	endsWithNewline := strings.HasSuffix(content, "\n")
	lines := splitLines(content)

	sorted := make([]types.Replacement, len(reps))
	copy(sorted, reps)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line > sorted[j].Line
		}
		return sorted[i].StartCol > sorted[j].StartCol
	})

	applied := 0
	for _, r := range sorted {
		idx := r.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		runes := []rune(lines[idx])
		start := max(r.StartCol-1, 0)
		end := max(r.EndCol-1, 0)
		if start > len(runes) || end > len(runes) || start > end {
			continue
		}
		lines[idx] = string(runes[:start]) + r.NewText + string(runes[end:])
		applied++
	}

	out := strings.Join(lines, newline)
	if endsWithNewline {
		out += newline
	}
	return out, applied
}

// splitLines splits content into lines without their terminators. A final
// terminator does not start an extra empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
