package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sieve/sieve/internal/report"
)

// MarshalFindings writes findings as the indented JSON array the CLI prints.
func MarshalFindings(w io.Writer, findings []Finding) error {
	return report.WriteJSON(w, findings)
}

// UnmarshalFindings reads a JSON array of findings, such as the output of
// `sieve scan --json`.
func UnmarshalFindings(r io.Reader) ([]Finding, error) {
	var out []Finding
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}
	return out, nil
}
