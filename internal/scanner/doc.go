// Package scanner scores source lines for likely hard-coded secrets.
//
// A line is first checked against the catalog's high-signal rules (first
// match wins); failing that, a generic key/value assignment is scored on its
// key name, value entropy and shape. Path and placeholder penalties apply to
// both. Lines scoring below 60 are dropped; the rest become findings with a
// redacted preview and a SHA-256 fingerprint.
package scanner
