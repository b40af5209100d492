// Package files edits the ignore files a scan honors.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// generated lists build outputs that never hold hand-written secrets.
var generated = []string{
	"**/*.pb.go",
	"**/*.gen.*",
	"**/*.min.js",
	"**/*.min.css",
	"**/*.map",
}

// AppendIgnore adds pattern as its own line to the ignore file name under
// root (".sieveignore", ".gitignore"), creating the file when needed. A
// pattern already present is left alone.
func AppendIgnore(root, name, pattern string) error {
	pattern = strings.TrimSpace(filepath.ToSlash(pattern))
	if pattern == "" {
		return errors.New("empty ignore pattern")
	}
	p := filepath.Join(root, name)

	current, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", name, err)
	}
	lines := strings.Split(strings.ReplaceAll(string(current), "\r\n", "\n"), "\n")
	if slices.ContainsFunc(lines, func(l string) bool { return strings.TrimSpace(l) == pattern }) {
		return nil
	}

	var add strings.Builder
	if len(current) > 0 && current[len(current)-1] != '\n' {
		add.WriteByte('\n')
	}
	add.WriteString(pattern)
	add.WriteByte('\n')

	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	if _, err := f.WriteString(add.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("append to %s: %w", name, err)
	}
	return f.Close()
}

// DefaultGeneratedIgnores returns doublestar patterns for generated files.
func DefaultGeneratedIgnores() []string {
	return slices.Clone(generated)
}
