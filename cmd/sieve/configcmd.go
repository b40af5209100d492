package sieve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sieve/sieve/internal/config"
	"github.com/sieve/sieve/internal/engine"
	"github.com/sieve/sieve/internal/redact"
	"github.com/sieve/sieve/internal/report"
	"github.com/sieve/sieve/internal/types"
)

var (
	cfgOutput          string
	cfgForce           bool
	cfgFailOn          string
	cfgStrict          bool
	cfgPlaceholder     string
	cfgBaseline        string
	cfgDisable         string
	cfgMaxBytes        int64
	cfgNoColor         bool
	cfgDefaultExcludes bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .sieve.yml with the selected options",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	initCmd.Flags().StringVar(&cfgFailOn, "fail-on", "high", "fail on low|medium|high")
	initCmd.Flags().BoolVar(&cfgStrict, "strict", false, "fail on any finding")
	initCmd.Flags().StringVar(&cfgPlaceholder, "placeholder", redact.Placeholder, "text substituted for redacted secrets")
	initCmd.Flags().StringVar(&cfgBaseline, "baseline", report.DefaultBaselinePath, "baseline file path")
	initCmd.Flags().StringVar(&cfgDisable, "disable", "", "comma-separated rule IDs to drop")
	initCmd.Flags().Int64Var(&cfgMaxBytes, "max-bytes", engine.DefaultMaxBytes, "skip files larger than this")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().BoolVar(&cfgDefaultExcludes, "default-excludes", true, "enable default ignore patterns")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged local and global configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, _ := filepath.Abs(".")
			fc, err := config.Discover(root)
			if err != nil {
				return err
			}
			b, err := yaml.Marshal(&fc)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cfgCmd.AddCommand(showCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	sev, ok := types.ParseSeverity(cfgFailOn)
	if !ok {
		return fmt.Errorf("invalid --fail-on %q", cfgFailOn)
	}
	if _, err := os.Stat(cfgOutput); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
	}

	fc := config.FileConfig{
		MaxBytes:        int64Ptr(cfgMaxBytes),
		NoColor:         boolPtr(cfgNoColor),
		DefaultExcludes: boolPtr(cfgDefaultExcludes),
		Disable:         optStrPtr(cfgDisable),
		FailOn:          strPtr(string(sev)),
		Strict:          boolPtr(cfgStrict),
		Baseline:        strPtr(cfgBaseline),
		Placeholder:     strPtr(cfgPlaceholder),
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

func strPtr(s string) *string { return &s }
func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool     { return &v }
