package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for Sieve. Every field
// is a pointer so an unset key can be told apart from a zero value when
// layering files under CLI flags.
type FileConfig struct {
	Include         *string `yaml:"include,omitempty"`
	Exclude         *string `yaml:"exclude,omitempty"`
	MaxBytes        *int64  `yaml:"max_bytes,omitempty"`
	NoColor         *bool   `yaml:"no_color,omitempty"`
	DefaultExcludes *bool   `yaml:"default_excludes,omitempty"`
	Disable         *string `yaml:"disable,omitempty"`
	FailOn          *string `yaml:"fail_on,omitempty"`
	Strict          *bool   `yaml:"strict,omitempty"`
	Baseline        *string `yaml:"baseline,omitempty"`
	Placeholder     *string `yaml:"placeholder,omitempty"`
	Verbose         *bool   `yaml:"verbose,omitempty"`
	Cache           *bool   `yaml:"cache,omitempty"`
}

// LocalNames are the repo-local config file names, in search order.
var LocalNames = []string{".sieve.yml", ".sieve.yaml", "sieve.yml", "sieve.yaml"}

// ErrNoConfig is returned when no config file is found.
var ErrNoConfig = errors.New("no config file")

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, ErrNoConfig
}

// GlobalPath returns $XDG_CONFIG_HOME/sieve/config.yml, falling back to
// ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "sieve", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	p, err := GlobalPath()
	if err != nil {
		return FileConfig{}, ErrNoConfig
	}
	if _, err := os.Stat(p); err != nil {
		return FileConfig{}, ErrNoConfig
	}
	return LoadFile(p)
}

// Merge layers configs: for each key the first config that sets it wins.
// Pass them highest precedence first (local, then global).
func Merge(layers ...FileConfig) FileConfig {
	var out FileConfig
	for _, c := range layers {
		out.Include = firstSet(out.Include, c.Include)
		out.Exclude = firstSet(out.Exclude, c.Exclude)
		out.MaxBytes = firstSet(out.MaxBytes, c.MaxBytes)
		out.NoColor = firstSet(out.NoColor, c.NoColor)
		out.DefaultExcludes = firstSet(out.DefaultExcludes, c.DefaultExcludes)
		out.Disable = firstSet(out.Disable, c.Disable)
		out.FailOn = firstSet(out.FailOn, c.FailOn)
		out.Strict = firstSet(out.Strict, c.Strict)
		out.Baseline = firstSet(out.Baseline, c.Baseline)
		out.Placeholder = firstSet(out.Placeholder, c.Placeholder)
		out.Verbose = firstSet(out.Verbose, c.Verbose)
		out.Cache = firstSet(out.Cache, c.Cache)
	}
	return out
}

// Discover loads the local config under repoRoot and the global config and
// merges them. Missing files are skipped; parse errors are returned.
func Discover(repoRoot string) (FileConfig, error) {
	local, err := LoadLocal(repoRoot)
	if err != nil && !errors.Is(err, ErrNoConfig) {
		return FileConfig{}, err
	}
	global, err := LoadGlobal()
	if err != nil && !errors.Is(err, ErrNoConfig) {
		return FileConfig{}, err
	}
	return Merge(local, global), nil
}

func firstSet[T any](cur, next *T) *T {
	if cur != nil {
		return cur
	}
	return next
}

// String returns the value of p or def when unset.
func String(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// Bool returns the value of p or def when unset.
func Bool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Int64 returns the value of p or def when unset.
func Int64(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}
