package sieve

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sieve/sieve/internal/detectors"
	"github.com/sieve/sieve/internal/logging"
	"github.com/sieve/sieve/internal/scanner"
)

var (
	flagJSON    bool
	flagSARIF   bool
	flagFormat  string
	flagNoTUI   bool
	flagStrict  bool
	flagVerbose bool
	flagFailOn  string
	flagNoColor bool
	flagDebug   bool
	flagNoCache bool

	version = "0.1.0"
)

// lineScanner is built once per process; every command that scores lines
// shares it through engine.Config.Scanner.
var lineScanner = scanner.New(detectors.NewCatalog())

// rootCmd is the base Cobra command for the Sieve CLI. Run without a
// subcommand it performs a full check of the working directory.
var rootCmd = &cobra.Command{
	Use:           "sieve",
	Short:         "Catch secrets before they leave your machine",
	Long:          "Sieve scores every added or existing line for credentials, reports what it finds and can redact secrets in place.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return logging.Init(flagDebug)
	},
}

// exitError ends the process with code. A non-empty msg is printed to stderr
// first; findings that trip the fail threshold use an empty one.
type exitError struct {
	code int
	msg  string
}

func (e exitError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("exit status %d", e.code)
}

var errFindings = exitError{code: 1}

// Execute runs the Sieve CLI. It should be called by the main package.
func Execute() {
	err := rootCmd.Execute()
	logging.Sync()
	if err == nil {
		return
	}
	var ee exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(os.Stderr, ee.msg)
		}
		os.Exit(ee.code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(2)
}

func init() {
	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runCheck(cmd, checkOptions{full: true})
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flagJSON, "json", false, "emit JSON (same as --format json)")
	pf.BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0 (same as --format sarif)")
	pf.StringVar(&flagFormat, "format", "human", "output format: human | json | sarif | table")
	pf.BoolVar(&flagNoTUI, "no-tui", false, "print findings instead of opening the review UI")
	pf.BoolVar(&flagStrict, "strict", false, "fail on any finding, not only high severity")
	pf.BoolVar(&flagVerbose, "verbose", false, "print why each finding was reported")
	pf.StringVar(&flagFailOn, "fail-on", "high", "fail on low|medium|high")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging on stderr")
	pf.BoolVar(&flagNoCache, "no-cache", false, "disable incremental scan cache")
}
