package engine

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/sieve/sieve/internal/cache"
	"github.com/sieve/sieve/internal/git"
	"github.com/sieve/sieve/internal/ignore"
	"github.com/sieve/sieve/internal/logging"
	"github.com/sieve/sieve/internal/scanner"
	"github.com/sieve/sieve/internal/types"
)

// DefaultMaxBytes is the default size limit for scanned files.
const DefaultMaxBytes int64 = 1 << 20

// Suppressor reports whether a fingerprint has already been accepted.
// *report.Baseline satisfies it.
type Suppressor interface {
	Contains(fingerprint string) bool
}

// Config controls scanning behavior including scope and filters.
type Config struct {
	Root            string
	IncludeGlobs    string
	ExcludeGlobs    string
	MaxBytes        int64
	ScanStaged      bool
	Since           string
	IncludeHidden   bool
	DefaultExcludes bool
	DisableRules    string
	NoCache         bool
	DryRun          bool

	// Baseline, when set, removes accepted findings from Result.Findings.
	Baseline Suppressor
	// Scanner scores each line. Callers build it once and share it; when nil
	// a scanner over the lazily built default catalog is used.
	Scanner  scanner.LineScanner
	Progress func()
}

// Result contains findings and basic scan statistics.
type Result struct {
	Findings     []types.Finding
	Baselined    int
	FilesScanned int
	LinesScanned int
	CacheHits    int
	Duration     time.Duration
}

// Stats returns the counters as a map for machine-readable output.
func (r Result) Stats() map[string]int {
	return map[string]int{
		"filesScanned": r.FilesScanned,
		"linesScanned": r.LinesScanned,
		"cacheHits":    r.CacheHits,
		"baselined":    r.Baselined,
	}
}

// Scan runs a scan and returns only findings (without stats).
func Scan(ctx context.Context, cfg Config) ([]types.Finding, error) {
	res, err := ScanWithStats(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return res.Findings, nil
}

// ScanWithStats runs a scan and returns findings along with timing and
// counts. With ScanStaged or Since set only the added lines of the
// corresponding git diff are scanned; otherwise the tree under Root is
// walked.
func ScanWithStats(ctx context.Context, cfg Config) (Result, error) {
	var result Result
	if cfg.Root == "" {
		cfg.Root = "."
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return result, fmt.Errorf("resolve root: %w", err)
	}
	cfg.Root = root
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.Scanner == nil {
		cfg.Scanner = scanner.New(nil)
	}

	ign, err := ignore.LoadDir(cfg.Root)
	if err != nil {
		logging.L().Warnw("ignoring unreadable ignore file", "root", cfg.Root, "error", err)
		ign = &ignore.Matcher{}
	}

	started := time.Now()
	var out []types.Finding
	emit := func(f types.Finding) { out = append(out, f) }

	switch {
	case cfg.ScanStaged:
		lines, err := git.StagedDiff(ctx, cfg.Root)
		if err != nil {
			return result, err
		}
		scanDiffLines(cfg, ign, lines, emit, &result)
	case cfg.Since != "":
		lines, err := git.SinceDiff(ctx, cfg.Root, cfg.Since)
		if err != nil {
			return result, err
		}
		scanDiffLines(cfg, ign, lines, emit, &result)
	default:
		if err := scanFilesystem(ctx, cfg, ign, emit, &result); err != nil {
			return result, err
		}
	}

	out = filterByIDs(out, cfg.DisableRules)
	if cfg.Baseline != nil {
		kept := out[:0]
		for _, f := range out {
			if cfg.Baseline.Contains(f.Fingerprint) {
				result.Baselined++
				continue
			}
			kept = append(kept, f)
		}
		out = kept
	}
	result.Findings = out
	result.Duration = time.Since(started)
	return result, nil
}

func scanFilesystem(ctx context.Context, cfg Config, ign *ignore.Matcher, emit func(types.Finding), result *Result) error {
	db := cache.New()
	if !cfg.NoCache {
		loaded, err := cache.Load(cfg.Root)
		if err != nil {
			logging.L().Warnw("discarding scan cache", "error", err)
		}
		db = loaded
	}
	seen := map[string]bool{}

	err := Walk(ctx, cfg, ign, func(rel string, data []byte) {
		result.FilesScanned++
		if cfg.Progress != nil {
			cfg.Progress()
		}
		if cfg.DryRun {
			return
		}
		seen[rel] = true
		h := cache.HashContent(data)
		if !cfg.NoCache {
			if cached, ok := db.Lookup(rel, h); ok {
				result.CacheHits++
				for _, f := range cached {
					emit(f)
				}
				return
			}
		}
		var found []types.Finding
		readErr := scanner.ScanReader(cfg.Scanner, rel, bytes.NewReader(data), func(f types.Finding) {
			found = append(found, f)
		})
		result.LinesScanned += countLines(data)
		for _, f := range found {
			emit(f)
		}
		if readErr != nil {
			// partial results are reported but never cached
			logging.L().Debugw("scan read error", "path", rel, "error", readErr)
			return
		}
		db.Store(rel, h, found)
	})
	if err != nil {
		return err
	}
	if cfg.NoCache || cfg.DryRun {
		return nil
	}
	// Entries outside the include/exclude selection are kept for later runs.
	if cfg.IncludeGlobs == "" && cfg.ExcludeGlobs == "" {
		if n := db.Prune(seen); n > 0 {
			logging.L().Debugw("pruned scan cache", "removed", n)
		}
	}
	if err := cache.Save(cfg.Root, db); err != nil {
		logging.L().Warnw("failed to save scan cache", "error", err)
	}
	return nil
}

// scanDiffLines scores added diff lines. Diff paths are relative to the
// repository top level and are rebased onto cfg.Root so fingerprints match
// those of a tree scan of the same root; lines outside Root are skipped.
func scanDiffLines(cfg Config, ign *ignore.Matcher, lines []types.DiffLine, emit func(types.Finding), result *Result) {
	top, err := git.TopLevel(cfg.Root)
	if err != nil {
		top = cfg.Root
	}
	files := map[string]bool{}
	for _, l := range lines {
		rel, ok := rebase(top, cfg.Root, l.Path)
		if !ok {
			continue
		}
		if !allowedByGlobs(rel, cfg) || ign.Match(rel) {
			continue
		}
		if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
			continue
		}
		if !files[rel] {
			files[rel] = true
			result.FilesScanned++
			if cfg.Progress != nil {
				cfg.Progress()
			}
		}
		if cfg.DryRun {
			continue
		}
		result.LinesScanned++
		if f, ok := cfg.Scanner.ScanLine(rel, l.LineNum, l.Content); ok {
			emit(f)
		}
	}
}

func countLines(b []byte) int {
	n := bytes.Count(b, []byte{'\n'})
	if len(b) > 0 && b[len(b)-1] != '\n' {
		n++
	}
	return n
}

func rebase(top, root, p string) (string, bool) {
	evalTop, err := filepath.EvalSymlinks(top)
	if err == nil {
		top = evalTop
	}
	evalRoot, err := filepath.EvalSymlinks(root)
	if err == nil {
		root = evalRoot
	}
	rel, err := filepath.Rel(root, filepath.Join(top, filepath.FromSlash(p)))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// ListTargets returns the files a tree scan of cfg would read, sorted.
func ListTargets(ctx context.Context, cfg Config) ([]string, error) {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	ign, err := ignore.LoadDir(cfg.Root)
	if err != nil {
		return nil, err
	}
	var out []string
	err = Walk(ctx, cfg, ign, func(rel string, _ []byte) {
		out = append(out, rel)
	})
	sort.Strings(out)
	return out, err
}

func filterByIDs(fs []types.Finding, disable string) []types.Finding {
	if strings.TrimSpace(disable) == "" {
		return fs
	}
	blocked := map[string]bool{}
	for _, id := range strings.Split(disable, ",") {
		blocked[strings.ToUpper(strings.TrimSpace(id))] = true
	}
	var out []types.Finding
	for _, f := range fs {
		if blocked[f.RuleID] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// allowedByGlobs returns true if the given path is allowed by the include/exclude
// glob configuration. Include globs are comma-separated and, if provided, act as
// a positive filter. Exclude globs are subtracted last.
func allowedByGlobs(relPath string, cfg Config) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	includes := parseGlobsList(cfg.IncludeGlobs)
	excludes := parseGlobsList(cfg.ExcludeGlobs)
	if len(includes) > 0 {
		matched := matchAnyGlob(rp, includes)
		if !matched {
			return false
		}
	}
	if len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
			out = append(out, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
