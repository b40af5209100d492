package sieve

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sieve/sieve/internal/detectors"
	"github.com/sieve/sieve/internal/report"
	"github.com/sieve/sieve/internal/scanner"
	"github.com/sieve/sieve/internal/types"
)

type ruleInfo struct {
	ID        string `json:"id"`
	BaseScore int    `json:"base_score"`
	Reason    string `json:"reason"`
}

// heuristicRules describes the IDs the assignment heuristic can report.
var heuristicRules = []ruleInfo{
	{ID: detectors.RuleSuspectVariable, Reason: "Secret-like variable name assigned a quoted value"},
	{ID: detectors.RuleUnknown, Reason: "Quoted value that looks like a key under a neutral name"},
}

func catalogRules() []ruleInfo {
	var out []ruleInfo
	for _, r := range lineScanner.Catalog().Rules() {
		out = append(out, ruleInfo{ID: r.ID, BaseScore: r.BaseScore, Reason: r.Reason})
	}
	return append(out, heuristicRules...)
}

func init() {
	cmd := &cobra.Command{
		Use:   "detectors",
		Short: "List the rules Sieve can report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules := catalogRules()
			w := cmd.OutOrStdout()
			if flagJSON || strings.EqualFold(flagFormat, "json") {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(rules)
			}
			table := tablewriter.NewWriter(w)
			table.Header("RULE", "BASE SCORE", "DESCRIPTION")
			for _, r := range rules {
				score := "-"
				if r.BaseScore > 0 {
					score = strconv.Itoa(r.BaseScore)
				}
				if err := table.Append([]string{r.ID, score, r.Reason}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	rootCmd.AddCommand(cmd)

	var path string
	explain := &cobra.Command{
		Use:   "explain [text]",
		Short: "Score text (an argument or stdin lines) and show why it would be reported",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				in = strings.NewReader(args[0])
			}
			return explainLines(cmd.OutOrStdout(), lineScanner, path, in)
		},
	}
	explain.Flags().StringVar(&path, "path", "input.txt", "path the text is attributed to (test paths score lower)")
	rootCmd.AddCommand(explain)
}

func explainLines(w io.Writer, ls scanner.LineScanner, path string, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	n := 0
	for sc.Scan() {
		n++
		f, ok := ls.ScanLine(path, n, sc.Text())
		if !ok {
			fmt.Fprintf(w, "line %d: no finding\n", n)
			continue
		}
		writeExplanation(w, f)
	}
	return sc.Err()
}

func writeExplanation(w io.Writer, f types.Finding) {
	fmt.Fprintf(w, "line %d: %s %s score=%d preview=%s\n",
		f.Line, report.SeverityLabel(f.Severity), f.RuleID, f.Score, f.Preview)
	for _, r := range f.Reasons {
		fmt.Fprintf(w, "    - %s\n", r)
	}
}
