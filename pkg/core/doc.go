// Package core provides a small, stable facade over Sieve's internal
// packages for external integrations: tree and diff scans, single-line
// scoring, diff parsing and in-place redaction.
//
// Example:
//
//	findings, err := core.Scan(ctx, core.Config{Root: "."})
//	if err != nil { /* handle */ }
//	_ = core.MarshalFindings(os.Stdout, findings)
package core
