package redact

import (
	"fmt"
	"os"
	"regexp"
)

// Rule is a regex redaction: every match of Pattern is replaced with Replace,
// which may reference submatches ($1, ${name}).
type Rule struct {
	Pattern *regexp.Regexp
	Replace string
}

func applyRules(content []byte, rules []Rule) []byte {
	out := content
	for _, r := range rules {
		if r.Pattern == nil {
			continue
		}
		out = r.Pattern.ReplaceAll(out, []byte(r.Replace))
	}
	return out
}

// WouldChange reports whether ApplyRules would modify the file.
func WouldChange(path string, rules []Rule) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return string(applyRules(b, rules)) != string(b), nil
}

// ApplyRules rewrites path with every rule applied and reports whether the
// contents changed. An unchanged file is not rewritten.
func ApplyRules(path string, rules []Rule) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	out := applyRules(b, rules)
	if string(out) == string(b) {
		return false, nil
	}
	if err := writeAtomic(path, out, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
