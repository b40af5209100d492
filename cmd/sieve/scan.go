package sieve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sieve/sieve/internal/engine"
	"github.com/sieve/sieve/internal/git"
)

var (
	flagPath   string
	flagStaged bool
	flagSince  string
	flagDryRun bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan staged changes, a commit range or a directory tree",
		Example: `  sieve scan --staged
  sieve scan --since origin/main --no-tui
  sieve scan --path ./services --format table`,
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", "", "recursively scan this directory")
	cmd.Flags().BoolVar(&flagStaged, "staged", false, "scan lines added in the index (git diff --cached)")
	cmd.Flags().StringVar(&flagSince, "since", "", "scan lines added between <ref> and HEAD")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "list the files a tree scan would read, then exit")
	cmd.MarkFlagsMutuallyExclusive("path", "staged", "since")
	addScopeFlags(cmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	if flagPath == "" && !flagStaged && flagSince == "" {
		return exitError{code: 2, msg: "Please specify --staged, --path <path>, or --since <ref>"}
	}
	if flagStaged {
		if err := git.CheckInstalled(cmd.Context()); err != nil {
			return err
		}
	}

	root := "."
	if flagPath != "" {
		root = flagPath
	}
	s, err := loadSettings(cmd, root)
	if err != nil {
		return err
	}
	cfg := s.engineConfig()
	cfg.ScanStaged = flagStaged
	cfg.Since = flagSince

	if flagDryRun {
		if cfg.ScanStaged || cfg.Since != "" {
			return fmt.Errorf("--dry-run only applies to --path scans")
		}
		targets, err := engine.ListTargets(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, t := range targets {
			fmt.Fprintln(w, t)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d files would be scanned\n", len(targets))
		return nil
	}

	res, err := engine.ScanWithStats(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	base := loadBaseline(s)
	fresh := filterBaseline(base, &res)
	recordScan(s, scanMode(cfg), res, fresh)
	return render(cmd, s, fresh, res, base)
}

func scanMode(cfg engine.Config) string {
	switch {
	case cfg.ScanStaged:
		return "staged"
	case cfg.Since != "":
		return "since " + cfg.Since
	default:
		return "path"
	}
}
