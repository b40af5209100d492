package sieve

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sieve/sieve/internal/audit"
)

func init() {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scans from the audit log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd, ".")
			if err != nil {
				return err
			}
			log := audit.Open(s.root)
			records, err := log.History(limit)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintln(cmd.OutOrStdout(), "No scans recorded yet.")
					return nil
				}
				return err
			}
			w := cmd.OutOrStdout()
			if s.format == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			table := tablewriter.NewWriter(w)
			table.Header("TIME", "MODE", "BRANCH", "COMMIT", "FILES", "FINDINGS", "REPORTED", "BASELINED", "DURATION")
			for _, r := range records {
				commit := r.Commit
				if len(commit) > 8 {
					commit = commit[:8]
				}
				row := []string{
					r.Time.Local().Format("2006-01-02 15:04:05"),
					r.Mode,
					r.Branch,
					commit,
					strconv.Itoa(r.Files),
					strconv.Itoa(r.Total),
					strconv.Itoa(r.Reported),
					strconv.Itoa(r.Baselined),
					r.Duration().String(),
				}
				if err := table.Append(row); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}
			where := log.Path()
			if rel, err := filepath.Rel(s.root, where); err == nil {
				where = rel
			}
			fmt.Fprintf(w, "%d scans in %s\n", len(records), where)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most N scans (0 = all)")
	rootCmd.AddCommand(cmd)
}
