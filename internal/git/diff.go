package git

import (
	"strconv"
	"strings"

	"github.com/sieve/sieve/internal/types"
)

// ParseDiff extracts the added lines of a unified diff (as produced by
// `git diff --unified=0`), addressed by their line number in the new file.
// It never fails: lines it cannot attribute to a file and hunk are dropped.
func ParseDiff(diff string) []types.DiffLine {
	var out []types.DiffLine
	currentFile := ""
	lineNum := 0

	for _, line := range splitLines(diff) {
		switch {
		case strings.HasPrefix(line, "diff --git"):
			currentFile = ""
		case strings.HasPrefix(line, "+++ b/"):
			currentFile = strings.TrimPrefix(line, "+++ b/")
		case strings.HasPrefix(line, "--- a/"):
		case strings.HasPrefix(line, "@@"):
			lineNum = hunkNewStart(line)
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			if currentFile != "" && lineNum > 0 {
				out = append(out, types.DiffLine{
					Path:    currentFile,
					LineNum: lineNum,
					Content: line[1:],
				})
				lineNum++
			}
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, `\`):
			// removals and "\ No newline at end of file" do not move the new-file counter
		case strings.HasPrefix(line, " "):
			if currentFile != "" && lineNum > 0 {
				lineNum++
			}
		}
	}
	return out
}

// hunkNewStart returns the start line of the "+start[,count]" range in a hunk
// header such as "@@ -14,0 +15,2 @@", or 0 when it cannot be read.
func hunkNewStart(header string) int {
	fields := strings.Fields(header)
	if len(fields) < 3 || !strings.HasPrefix(fields[2], "+") {
		return 0
	}
	start, _, _ := strings.Cut(strings.TrimPrefix(fields[2], "+"), ",")
	n, err := strconv.Atoi(start)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// splitLines splits on "\n" and strips a trailing "\r" from each line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
