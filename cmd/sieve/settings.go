package sieve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sieve/sieve/internal/config"
	"github.com/sieve/sieve/internal/engine"
	"github.com/sieve/sieve/internal/redact"
	"github.com/sieve/sieve/internal/report"
	"github.com/sieve/sieve/internal/types"
)

// Scope flags are shared by every command that scans.
var (
	flagInclude         string
	flagExclude         string
	flagMaxBytes        int64
	flagDisable         string
	flagDefaultExcludes bool
)

func addScopeFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	c.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	c.Flags().Int64Var(&flagMaxBytes, "max-bytes", engine.DefaultMaxBytes, "skip files larger than this")
	c.Flags().StringVar(&flagDisable, "disable", "", "drop findings for these rule IDs (comma-separated)")
	c.Flags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "apply built-in exclude list (node_modules, dist, images, lock files)")
}

// settings is the effective configuration of a run: CLI flags over the
// repo-local config over the global config.
type settings struct {
	root            string
	format          string
	failOn          types.Severity
	strict          bool
	verbose         bool
	noColor         bool
	noCache         bool
	noTUI           bool
	baselinePath    string
	placeholder     string
	include         string
	exclude         string
	disable         string
	maxBytes        int64
	defaultExcludes bool
}

// pick returns the flag value when the user set it, else the config value
// when present, else the flag default.
func pick[T any](cmd *cobra.Command, name string, cli T, file *T) T {
	if cmd.Flags().Changed(name) || file == nil {
		return cli
	}
	return *file
}

func loadSettings(cmd *cobra.Command, root string) (settings, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return settings{}, fmt.Errorf("resolve %s: %w", root, err)
	}
	fc, err := config.Discover(abs)
	if err != nil {
		return settings{}, fmt.Errorf("load config: %w", err)
	}
	format, err := resolveFormat()
	if err != nil {
		return settings{}, err
	}
	failOnRaw := pick(cmd, "fail-on", flagFailOn, fc.FailOn)
	failOn, ok := types.ParseSeverity(failOnRaw)
	if !ok {
		return settings{}, fmt.Errorf("invalid fail-on %q (want low, medium or high)", failOnRaw)
	}

	s := settings{
		root:            abs,
		format:          format,
		failOn:          failOn,
		strict:          pick(cmd, "strict", flagStrict, fc.Strict),
		verbose:         pick(cmd, "verbose", flagVerbose, fc.Verbose),
		noColor:         pick(cmd, "no-color", flagNoColor, fc.NoColor) || os.Getenv("NO_COLOR") != "",
		noCache:         flagNoCache || !config.Bool(fc.Cache, true),
		noTUI:           flagNoTUI,
		baselinePath:    config.String(fc.Baseline, report.DefaultBaselinePath),
		placeholder:     config.String(fc.Placeholder, redact.Placeholder),
		include:         pick(cmd, "include", flagInclude, fc.Include),
		exclude:         pick(cmd, "exclude", flagExclude, fc.Exclude),
		disable:         pick(cmd, "disable", flagDisable, fc.Disable),
		maxBytes:        pick(cmd, "max-bytes", flagMaxBytes, fc.MaxBytes),
		defaultExcludes: pick(cmd, "default-excludes", flagDefaultExcludes, fc.DefaultExcludes),
	}
	if !filepath.IsAbs(s.baselinePath) {
		s.baselinePath = filepath.Join(abs, s.baselinePath)
	}
	return s, nil
}

func resolveFormat() (string, error) {
	switch {
	case flagSARIF:
		return "sarif", nil
	case flagJSON:
		return "json", nil
	}
	switch f := strings.ToLower(strings.TrimSpace(flagFormat)); f {
	case "", "human", "text":
		return "human", nil
	case "json", "sarif", "table":
		return f, nil
	default:
		return "", fmt.Errorf("unknown --format %q (want human, json, sarif or table)", flagFormat)
	}
}

// engineConfig builds the scan scope shared by every scanning command.
func (s settings) engineConfig() engine.Config {
	return engine.Config{
		Root:            s.root,
		IncludeGlobs:    s.include,
		ExcludeGlobs:    s.exclude,
		MaxBytes:        s.maxBytes,
		DefaultExcludes: s.defaultExcludes,
		DisableRules:    s.disable,
		NoCache:         s.noCache,
		Scanner:         lineScanner,
	}
}

// resolve maps a root-relative finding path to a path the process can open.
func (s settings) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.root, filepath.FromSlash(p))
}
