package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/sieve/sieve/internal/logging"
	"github.com/sieve/sieve/internal/types"
)

// DefaultBaselinePath is where baselines are read from and written to unless
// configured otherwise.
const DefaultBaselinePath = ".sieve.baseline.json"

// BaselineEntry is informational metadata kept next to a fingerprint so a
// reviewer can tell what was accepted. Only the fingerprint is matched.
type BaselineEntry struct {
	File    string `json:"file"`
	Rule    string `json:"rule"`
	Preview string `json:"preview"`
}

// Baseline is a set of accepted finding fingerprints.
type Baseline struct {
	GeneratedAt  *time.Time
	Fingerprints map[string]struct{}
	Metadata     map[string]BaselineEntry
}

type baselineFile struct {
	GeneratedAt  *time.Time               `json:"generated_at"`
	Fingerprints []string                 `json:"fingerprints"`
	Metadata     map[string]BaselineEntry `json:"metadata,omitempty"`
}

// NewBaseline returns an empty baseline.
func NewBaseline() *Baseline {
	return &Baseline{
		Fingerprints: map[string]struct{}{},
		Metadata:     map[string]BaselineEntry{},
	}
}

// MarshalJSON writes fingerprints as a sorted array so the file diffs cleanly.
func (b *Baseline) MarshalJSON() ([]byte, error) {
	fps := make([]string, 0, len(b.Fingerprints))
	for fp := range b.Fingerprints {
		fps = append(fps, fp)
	}
	sort.Strings(fps)
	return json.Marshal(baselineFile{
		GeneratedAt:  b.GeneratedAt,
		Fingerprints: fps,
		Metadata:     b.Metadata,
	})
}

func (b *Baseline) UnmarshalJSON(data []byte) error {
	var f baselineFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	b.GeneratedAt = f.GeneratedAt
	b.Fingerprints = make(map[string]struct{}, len(f.Fingerprints))
	for _, fp := range f.Fingerprints {
		b.Fingerprints[fp] = struct{}{}
	}
	b.Metadata = f.Metadata
	if b.Metadata == nil {
		b.Metadata = map[string]BaselineEntry{}
	}
	return nil
}

// LoadBaseline reads the baseline at path. A missing or corrupt file yields
// an empty baseline; only other read failures are returned.
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewBaseline(), nil
		}
		return NewBaseline(), fmt.Errorf("read baseline: %w", err)
	}
	b := NewBaseline()
	if err := json.Unmarshal(data, b); err != nil {
		logging.L().Warnw("ignoring unreadable baseline", "path", path, "error", err)
		return NewBaseline(), nil
	}
	return b, nil
}

// Save stamps the generation time and writes the baseline to path.
func (b *Baseline) Save(path string) error {
	now := time.Now().UTC()
	b.GeneratedAt = &now
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(buf, '\n'), 0o644)
}

// Add records f as accepted. It reports false if the fingerprint was
// already present, in which case the existing metadata is kept.
func (b *Baseline) Add(f types.Finding) bool {
	if b.Fingerprints == nil {
		b.Fingerprints = map[string]struct{}{}
	}
	if b.Metadata == nil {
		b.Metadata = map[string]BaselineEntry{}
	}
	if _, ok := b.Fingerprints[f.Fingerprint]; ok {
		return false
	}
	b.Fingerprints[f.Fingerprint] = struct{}{}
	b.Metadata[f.Fingerprint] = BaselineEntry{File: f.Path, Rule: f.RuleID, Preview: f.Preview}
	return true
}

// Contains reports whether fingerprint is in the baseline.
func (b *Baseline) Contains(fingerprint string) bool {
	if b == nil {
		return false
	}
	_, ok := b.Fingerprints[fingerprint]
	return ok
}

// Len returns the number of accepted fingerprints.
func (b *Baseline) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Fingerprints)
}

// FilterNew returns the findings whose fingerprints are not in the baseline.
func (b *Baseline) FilterNew(findings []types.Finding) []types.Finding {
	var out []types.Finding
	for _, f := range findings {
		if !b.Contains(f.Fingerprint) {
			out = append(out, f)
		}
	}
	return out
}

// ShouldFail reports whether findings should fail the run: any finding at or
// above failOn, or any finding at all when strict is set.
func ShouldFail(findings []types.Finding, failOn types.Severity, strict bool) bool {
	if strict && len(findings) > 0 {
		return true
	}
	if failOn.Rank() == 0 {
		failOn = types.SevHigh
	}
	for _, f := range findings {
		if f.Severity.AtLeast(failOn) {
			return true
		}
	}
	return false
}
