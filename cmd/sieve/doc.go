// Package sieve provides the command-line interface for the Sieve secret
// scanner. It wires the scan, check, baseline and fix subcommands to the
// engine, resolves flags against the YAML config files and decides the
// process exit status.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/sieve/sieve/cmd/sieve"
//	func main() { sieve.Execute() }
package sieve
