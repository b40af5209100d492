package sieve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sieve/sieve/internal/engine"
	"github.com/sieve/sieve/internal/git"
)

func init() {
	var generate, check bool
	var path string
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Accept current findings or report only new ones",
		Long: `baseline --generate records the fingerprint of every current finding in
.sieve.baseline.json so later scans stay quiet about them. baseline --check
reports only findings that are not in the baseline. Staged changes are scanned
unless --path is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if generate == check {
				return fmt.Errorf("specify exactly one of --generate or --check")
			}
			return runBaseline(cmd, generate, path)
		},
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().BoolVar(&generate, "generate", false, "add current findings to the baseline and save it")
	cmd.Flags().BoolVar(&check, "check", false, "report findings that are not in the baseline")
	cmd.Flags().StringVarP(&path, "path", "p", "", "scan this directory instead of staged changes")
	addScopeFlags(cmd)
}

func runBaseline(cmd *cobra.Command, generate bool, path string) error {
	root := "."
	if path != "" {
		root = path
	}
	s, err := loadSettings(cmd, root)
	if err != nil {
		return err
	}
	cfg := s.engineConfig()
	if path == "" {
		if err := git.CheckInstalled(cmd.Context()); err != nil {
			return err
		}
		cfg.ScanStaged = true
	}

	res, err := engine.ScanWithStats(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	base := loadBaseline(s)

	if generate {
		added := 0
		for _, f := range res.Findings {
			if base.Add(f) {
				added++
			}
		}
		if err := base.Save(s.baselinePath); err != nil {
			return fmt.Errorf("write baseline: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Baseline generated/updated at %s (%d new, %d total)\n",
			s.baselinePath, added, base.Len())
		return nil
	}

	fresh := filterBaseline(base, &res)
	recordScan(s, "baseline check", res, fresh)
	return render(cmd, s, fresh, res, base)
}
