package sieve

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sieve/sieve/internal/cache"
	"github.com/sieve/sieve/internal/engine"
	"github.com/sieve/sieve/internal/redact"
	"github.com/sieve/sieve/internal/report"
	"github.com/sieve/sieve/internal/types"
)

type checkOptions struct {
	full   bool
	repair bool
	fix    int
	fixSet bool
}

func init() {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the working tree or staged changes and cache the results",
		Long: `Without --full, check scans the lines added in the index. With --full it walks
the current directory, hidden files included. Results are written to .sieve_cache.json
so a later "check --fix N" or "fix finding N" can redact them by index.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.fixSet = cmd.Flags().Changed("fix")
			return runCheck(cmd, opts)
		},
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().BoolVar(&opts.full, "full", false, "recursively scan the current directory including hidden files")
	cmd.Flags().BoolVar(&opts.repair, "repair", false, "redact every finding in place with the placeholder")
	cmd.Flags().IntVar(&opts.fix, "fix", 0, "redact finding N from the last cached check")
	addScopeFlags(cmd)
}

func runCheck(cmd *cobra.Command, opts checkOptions) error {
	s, err := loadSettings(cmd, ".")
	if err != nil {
		return err
	}
	if opts.fixSet {
		return fixCached(cmd, s, opts.fix)
	}

	cfg := s.engineConfig()
	mode := "full"
	if opts.full {
		cfg.IncludeHidden = true
	} else {
		mode = "staged"
		cfg.ScanStaged = true
		fmt.Fprintln(cmd.ErrOrStderr(), "Running quick check (staged files)... use --full for full scan.")
	}

	res, err := engine.ScanWithStats(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	base := loadBaseline(s)
	fresh := filterBaseline(base, &res)
	recordScan(s, mode, res, fresh)

	// cache in display order so "--fix N" addresses what the user saw
	report.SortFindings(fresh)
	if err := cache.SaveResults(s.root, fresh); err != nil {
		return fmt.Errorf("write results cache: %w", err)
	}

	if opts.repair {
		return repairAll(cmd, s, fresh)
	}
	return render(cmd, s, fresh, res, base)
}

// repairAll redacts every finding, one atomic write per file.
func repairAll(cmd *cobra.Command, s settings, findings []types.Finding) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Repairing %d findings...\n", len(findings))
	resolved := make([]types.Finding, len(findings))
	for i, f := range findings {
		f.Path = s.resolve(f.Path)
		resolved[i] = f
	}
	results := redact.FixAll(resolved, s.placeholder)
	failed := 0
	for _, f := range resolved {
		res, ok := results[f.Path]
		if !ok {
			continue
		}
		delete(results, f.Path)
		if res.Success {
			fmt.Fprintf(w, "Fixed %s\n", f.Path)
		} else {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to fix %s: %s\n", f.Path, res.Message)
		}
	}
	if failed > 0 {
		return exitError{code: 1}
	}
	return nil
}

// fixCached redacts finding n of the results cache written by the last check.
func fixCached(cmd *cobra.Command, s settings, n int) error {
	f, err := cache.ResultAt(s.root, n)
	if err != nil {
		if errors.Is(err, cache.ErrNoResults) {
			return exitError{code: 1, msg: "Error: Cache file not found. Run 'sieve check --full' first."}
		}
		return exitError{code: 1, msg: "Error: " + err.Error()}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Fixing finding #%d in %s:%d\n", n, f.Path, f.Line)
	f.Path = s.resolve(f.Path)
	res := redact.FixFinding(f, s.placeholder)
	if !res.Success {
		return exitError{code: 1, msg: "Error fixing file: " + res.Message}
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}
