package engine

import (
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/sieve/sieve/internal/audit"
	"github.com/sieve/sieve/internal/cache"
	"github.com/sieve/sieve/internal/files"
	"github.com/sieve/sieve/internal/report"
)

// Built-in excludes, applied when Config.DefaultExcludes is set.
var (
	excludedDirs = set(
		"node_modules", "vendor", "target", "dist", "build", "out",
		".venv", "venv", "__pycache__", "coverage", "bin", "obj",
	)

	excludedSuffixes = []string{
		".lock",
		".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico",
		".pdf", ".zip", ".gz", ".tar", ".tgz", ".7z",
		".jar", ".class", ".exe", ".dll", ".so", ".dylib",
		".wasm", ".pyc",
	}

	// lowercase base names; includes the files sieve itself writes
	excludedNames = set(
		"package-lock.json", "pnpm-lock.yaml", "go.sum", ".ds_store",
		cache.ResultsFile, cache.FileName, audit.FileName, report.DefaultBaselinePath,
	)
)

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[strings.ToLower(it)] = struct{}{}
	}
	return m
}

func isDefaultDirExcluded(name string) bool {
	_, ok := excludedDirs[name]
	return ok
}

func isDefaultFileExcluded(lowerRel string) bool {
	if _, ok := excludedNames[path.Base(lowerRel)]; ok {
		return true
	}
	for _, s := range excludedSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	for _, g := range files.DefaultGeneratedIgnores() {
		if ok, _ := doublestar.Match(g, lowerRel); ok {
			return true
		}
	}
	return false
}
