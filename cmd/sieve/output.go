package sieve

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sieve/sieve/internal/audit"
	"github.com/sieve/sieve/internal/engine"
	"github.com/sieve/sieve/internal/git"
	"github.com/sieve/sieve/internal/logging"
	"github.com/sieve/sieve/internal/report"
	"github.com/sieve/sieve/internal/tui"
	"github.com/sieve/sieve/internal/types"
)

// interactive reports whether w is a terminal the review UI can take over.
func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// render prints findings in the selected format, or opens the review UI for
// human output on a terminal. It returns errFindings when what is left after
// review trips the fail threshold.
func render(cmd *cobra.Command, s settings, findings []types.Finding, res engine.Result, base *report.Baseline) error {
	report.SortFindings(findings)
	w := cmd.OutOrStdout()
	opts := report.PrintOptions{
		NoColor:      s.noColor,
		Verbose:      s.verbose,
		Duration:     res.Duration,
		FilesScanned: res.FilesScanned,
		Baselined:    res.Baselined,
	}
	strict := s.strict

	switch s.format {
	case "json":
		if err := report.WriteJSON(w, findings); err != nil {
			return err
		}
	case "sarif":
		if err := report.WriteSARIFWithStats(w, findings, version, res.Stats()); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case "table":
		if err := report.PrintTable(w, findings, opts); err != nil {
			return err
		}
	default:
		if len(findings) == 0 || s.noTUI || !interactive(w) {
			report.PrintText(w, findings, opts)
			break
		}
		out, err := tui.Run(findings, tui.Options{
			Root:         s.root,
			Baseline:     base,
			BaselinePath: s.baselinePath,
			Placeholder:  s.placeholder,
			Strict:       s.strict,
		})
		if err != nil {
			return err
		}
		findings, strict = out.Remaining, out.Strict
		fmt.Fprintf(w, "Reviewed: %d fixed, %d baselined, %d ignored, %d remaining\n",
			out.Fixed, out.Baselined, out.Ignored, len(out.Remaining))
	}

	if report.ShouldFail(findings, s.failOn, strict) {
		return errFindings
	}
	return nil
}

// filterBaseline drops accepted findings and records how many it dropped.
func filterBaseline(base *report.Baseline, res *engine.Result) []types.Finding {
	fresh := base.FilterNew(res.Findings)
	res.Baselined += len(res.Findings) - len(fresh)
	if fresh == nil {
		fresh = []types.Finding{}
	}
	return fresh
}

// recordScan appends the scan to the audit log. Failures are logged and never
// change the outcome of the command.
func recordScan(s settings, mode string, res engine.Result, fresh []types.Finding) {
	meta, err := git.RepoMetadata(s.root)
	if err != nil {
		logging.L().Debugw("no repository metadata for audit record", "root", s.root, "error", err)
	}
	rec := audit.NewRecord(audit.Scan{
		Root:     s.root,
		Mode:     mode,
		Repo:     meta,
		All:      res.Findings,
		Reported: fresh,
		Files:    res.FilesScanned,
		Duration: res.Duration,
		Baseline: s.baselinePath,
	})
	if err := audit.Open(s.root).Append(rec); err != nil {
		logging.L().Warnw("could not write audit log", "error", err)
	}
}

// loadBaseline never fails: a missing or corrupt file is an empty baseline.
func loadBaseline(s settings) *report.Baseline {
	base, err := report.LoadBaseline(s.baselinePath)
	if err != nil || base == nil {
		logging.L().Warnw("starting from an empty baseline", "path", s.baselinePath, "error", err)
		return report.NewBaseline()
	}
	return base
}
