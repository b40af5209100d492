package sieve

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sieve/sieve/internal/cache"
	"github.com/sieve/sieve/internal/redact"
)

func init() {
	fix := &cobra.Command{Use: "fix", Short: "Redact secrets in place"}
	rootCmd.AddCommand(fix)

	findingCmd := &cobra.Command{
		Use:   "finding <index>",
		Short: "Redact one finding from the last cached check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			s, err := loadSettings(cmd, ".")
			if err != nil {
				return err
			}
			return fixCached(cmd, s, n)
		},
	}
	fix.AddCommand(findingCmd)

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Redact every finding from the last cached check",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd, ".")
			if err != nil {
				return err
			}
			findings, err := cache.LoadResults(s.root)
			if err != nil {
				return exitError{code: 1, msg: "Error: Cache file not found. Run 'sieve check --full' first."}
			}
			return repairAll(cmd, s, findings)
		},
	}
	fix.AddCommand(allCmd)

	var pattern, replace string
	var dryRunRedact bool
	var summaryRedact string
	redactCmd := &cobra.Command{
		Use:   "redact --file <path> --pattern <regex> [--replace <text>]",
		Short: "Redact every match of a regex in a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" || pattern == "" {
				return fmt.Errorf("--file and --pattern are required")
			}
			rx, err := regexp.Compile(pattern)
			if err != nil {
				return err
			}
			rules := []redact.Rule{{Pattern: rx, Replace: replace}}
			w := cmd.OutOrStdout()
			changed := false
			if dryRunRedact {
				changed, err = redact.WouldChange(file, rules)
				if err != nil {
					return err
				}
				if changed {
					fmt.Fprintln(w, "(dry-run) would redact matches in", file)
				} else {
					fmt.Fprintln(w, "(dry-run) no changes needed")
				}
			} else {
				changed, err = redact.ApplyRules(file, rules)
				if err != nil {
					return err
				}
				if changed {
					fmt.Fprintln(w, "Redacted matches in", file)
				} else {
					fmt.Fprintln(w, "No changes needed")
				}
			}
			if summaryRedact != "" {
				return writeFixSummary(summaryRedact, map[string]any{
					"action":    "fix.redact",
					"file":      file,
					"pattern":   pattern,
					"changed":   changed,
					"dry_run":   dryRunRedact,
					"timestamp": time.Now().Format(time.RFC3339),
				})
			}
			return nil
		},
	}
	redactCmd.Flags().String("file", "", "file to redact in place")
	redactCmd.Flags().StringVar(&pattern, "pattern", "", "regex matching the secret content")
	redactCmd.Flags().StringVar(&replace, "replace", redact.Placeholder, "replacement text ($1 expands submatches)")
	redactCmd.Flags().BoolVar(&dryRunRedact, "dry-run", false, "report whether the file would change without writing it")
	redactCmd.Flags().StringVar(&summaryRedact, "summary", "", "write remediation summary JSON to this path")
	fix.AddCommand(redactCmd)
}

// writeFixSummary writes a JSON summary file for fix actions.
func writeFixSummary(path string, data map[string]any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
