package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sieve/sieve/internal/types"
)

// ResultsFile holds the findings of the last check run as a JSON array so a
// later `fix finding N` can address them by index.
const ResultsFile = ".sieve_cache.json"

// ErrNoResults is returned by LoadResults when no check has been run yet.
var ErrNoResults = errors.New("cache file not found; run 'sieve check --full' first")

func resultsPath(root string) string {
	return filepath.Join(root, ResultsFile)
}

// SaveResults saves the findings of a check run.
func SaveResults(root string, findings []types.Finding) error {
	if findings == nil {
		findings = []types.Finding{}
	}
	b, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(resultsPath(root), b, 0o644)
}

// LoadResults loads the findings of the last check run.
func LoadResults(root string) ([]types.Finding, error) {
	p := resultsPath(root)
	f, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoResults
		}
		return nil, err
	}
	var findings []types.Finding
	if err := json.Unmarshal(f, &findings); err != nil {
		return nil, fmt.Errorf("corrupt results cache %s: %w", p, err)
	}
	return findings, nil
}

// ResultAt returns finding i from the last check run.
func ResultAt(root string, i int) (types.Finding, error) {
	findings, err := LoadResults(root)
	if err != nil {
		return types.Finding{}, err
	}
	if i < 0 || i >= len(findings) {
		return types.Finding{}, fmt.Errorf("invalid index %d; cache has %d findings", i, len(findings))
	}
	return findings[i], nil
}
