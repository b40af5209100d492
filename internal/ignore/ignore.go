// Package ignore matches repository-relative paths against gitignore-style
// pattern files (.sieveignore, .gitignore).
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the tool-specific ignore file read from the scan root.
const FileName = ".sieveignore"

type rule struct {
	glob    string
	negate  bool
	dirOnly bool
}

// Matcher holds compiled ignore rules. The zero value matches nothing.
// Later rules override earlier ones, so "!keep.pem" after "*.pem" re-includes.
type Matcher struct {
	rules []rule
}

// New compiles patterns written in gitignore syntax. Blank lines and
// comments are skipped; invalid globs are reported.
func New(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		if err := m.add(p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Matcher) add(line string) error {
	p := strings.TrimSpace(line)
	if p == "" || strings.HasPrefix(p, "#") {
		return nil
	}
	r := rule{}
	if strings.HasPrefix(p, "!") {
		r.negate = true
		p = p[1:]
	}
	if strings.HasSuffix(p, "/") {
		r.dirOnly = true
		p = strings.TrimRight(p, "/")
	}
	anchored := strings.Contains(p, "/")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	if !anchored && !strings.HasPrefix(p, "**/") {
		p = "**/" + p
	}
	if !doublestar.ValidatePattern(p) {
		return fmt.Errorf("invalid ignore pattern %q", line)
	}
	r.glob = p
	m.rules = append(m.rules, r)
	return nil
}

// Load reads patterns from a single file. A missing file yields an empty
// matcher.
func Load(path string) (*Matcher, error) {
	m := &Matcher{}
	if err := m.loadFile(path); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadDir reads .gitignore and then .sieveignore from root.
func LoadDir(root string) (*Matcher, error) {
	m := &Matcher{}
	for _, name := range []string{".gitignore", FileName} {
		if err := m.loadFile(filepath.Join(root, name)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Matcher) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if err := m.add(sc.Text()); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return sc.Err()
}

// Match reports whether the file at rel (slash-separated, relative to the
// root) is ignored, either directly or through an ignored parent directory.
func (m *Matcher) Match(rel string) bool {
	return m.match(filepath.ToSlash(rel), false)
}

// MatchDir reports whether the directory rel is ignored, so a walker can
// skip it entirely.
func (m *Matcher) MatchDir(rel string) bool {
	return m.match(filepath.ToSlash(rel), true)
}

// Len returns the number of active rules.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

func (m *Matcher) match(rel string, isDir bool) bool {
	if m == nil {
		return false
	}
	ignored := false
	for _, r := range m.rules {
		if r.matches(rel, isDir) {
			ignored = !r.negate
		}
	}
	return ignored
}

func (r rule) matches(rel string, isDir bool) bool {
	if (isDir || !r.dirOnly) && globMatch(r.glob, rel) {
		return true
	}
	return globMatch(r.glob+"/**", rel)
}

func globMatch(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
