// Package engine drives a scan: it walks the tree under a root (or takes
// the added lines of a staged or ref-range git diff), feeds each line to the
// line scanner, reuses cached results for unchanged files and drops findings
// accepted by a baseline. This package is internal; external consumers
// should use the stable facade in pkg/core.
package engine
