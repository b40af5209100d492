package tui

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/sieve/sieve/internal/types"
)

// readFileContext returns up to contextLines lines either side of targetLine
// and the 1-based number of the first returned line.
func readFileContext(path string, targetLine int, contextLines int) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	startLine := targetLine - contextLines
	if startLine < 1 {
		startLine = 1
	}
	endLine := targetLine + contextLines

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}
	if lineNum < targetLine && scanner.Err() == nil {
		return nil, 0, fmt.Errorf("line %d is past end of %s", targetLine, path)
	}
	return lines, startLine, scanner.Err()
}

func renderContext(f types.Finding, lines []string, start int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s:%d", f.Path, f.Line)) + "\n\n")
	for i, l := range lines {
		n := start + i
		marker := "  "
		num := fmt.Sprintf("%4d", n)
		if n == f.Line {
			marker = matchStyle.Render("> ")
			num = matchStyle.Render(num)
		}
		b.WriteString(marker + num + " │ " + highlightLine(l, f.Path) + "\n")
	}
	return b.String()
}

// highlightLine colors a single source line for the terminal. Files with no
// matching lexer are returned unchanged.
func highlightLine(line string, filename string) string {
	lexer := lexers.Match(filepath.Base(filename))
	if lexer == nil {
		ext := filepath.Ext(filename)
		if ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer == nil {
		return line
	}

	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return line
	}

	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return line
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
