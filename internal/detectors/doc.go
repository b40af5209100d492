// Package detectors holds the pattern catalog used by the line scanner: the
// ordered high-signal rules (private keys, cloud and service tokens) and the
// generic assignment heuristics with their supporting vocabularies.
//
// A Catalog is immutable once built. Create one with NewCatalog, or use
// Default for a shared instance, and pass it to scanner.New.
package detectors
