package core

import (
	"context"

	"github.com/sieve/sieve/internal/detectors"
	"github.com/sieve/sieve/internal/engine"
	"github.com/sieve/sieve/internal/git"
	"github.com/sieve/sieve/internal/redact"
	"github.com/sieve/sieve/internal/scanner"
	"github.com/sieve/sieve/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type Config = engine.Config
type Result = engine.Result
type Finding = types.Finding
type Replacement = types.Replacement
type DiffLine = types.DiffLine
type FixResult = redact.Result

// Placeholder is the default text written over a redacted secret.
const Placeholder = redact.Placeholder

// lineScanner owns the catalog used when a Config does not bring its own
// Scanner.
var lineScanner = scanner.New(detectors.NewCatalog())

// Scan is the stable entrypoint for other programs.
func Scan(ctx context.Context, cfg Config) ([]Finding, error) {
	return engine.Scan(ctx, withScanner(cfg))
}

// ScanWithStats runs a scan and also reports counters and duration.
func ScanWithStats(ctx context.Context, cfg Config) (Result, error) {
	return engine.ScanWithStats(ctx, withScanner(cfg))
}

func withScanner(cfg Config) Config {
	if cfg.Scanner == nil {
		cfg.Scanner = lineScanner
	}
	return cfg
}

// ScanLine scores a single line. ok is false when nothing reportable was found.
func ScanLine(path string, lineNum int, text string) (Finding, bool) {
	return lineScanner.ScanLine(path, lineNum, text)
}

// ParseDiff extracts the added lines of a unified diff.
func ParseDiff(diff string) []DiffLine {
	return git.ParseDiff(diff)
}

// Fix applies replacements to the file at path in a single atomic write.
func Fix(path string, reps []Replacement) FixResult {
	return redact.Apply(path, reps)
}

// FixFinding redacts one finding in place with the given placeholder.
func FixFinding(f Finding, placeholder string) FixResult {
	return redact.FixFinding(f, placeholder)
}

// DetectorIDs lists every rule ID a finding can carry.
func DetectorIDs() []string { return lineScanner.Catalog().IDs() }
