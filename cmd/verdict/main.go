// Command verdict decides the satisfiability of propositional formulas.
//
// With no argument it reads a problem in the named clause format from its
// standard input and prints the verdict on its standard output. Each argument
// is solved as a separate problem, concurrently when there are several.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Exit codes: solved problems exit 0 whatever the verdict. Only failures to
// reach a verdict use nonzero codes.
const (
	exitOK           = 0
	exitFailure      = 1 // I/O failure, invalid flags
	exitParseError   = 2 // malformed input
	exitInconclusive = 3 // the configured budget ran out
)

func main() {
	opts := defaultOptions()
	var configPath string
	cmd := &cobra.Command{
		Use:   "verdict [flags] [FILE ...]",
		Short: "A CDCL SAT solver",
		Long: `verdict decides whether propositional formulas are satisfiable.

Each FILE holds one problem; with no FILE, a problem in the named clause
format is read from standard input. The format is guessed from the file
extension: .cnf for DIMACS, .bf for generic boolean formulas, anything
else for the named clause format.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.Format, "format", "auto", "input format: auto, cnf, dimacs or bf")
	flags.DurationVar(&opts.Timeout, "timeout", 0, "give up after this delay (0: none)")
	flags.Int64Var(&opts.MaxConflicts, "max-conflicts", 0, "give up after this many conflicts (0: no limit)")
	flags.BoolVar(&opts.Count, "count", false, "print the number of models instead of one model")
	flags.BoolVar(&opts.Stats, "stats", false, "log solver statistics after each run")
	flags.BoolVar(&opts.Verbose, "verbose", false, "log search progress")
	flags.BoolVar(&opts.SelfCheck, "self-check", false, "verify each model against the input clauses before printing it")
	flags.StringVar(&configPath, "config", "", "JSON file holding default option values")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			if err := loadConfig(configPath, flags, &opts); err != nil {
				newLogger(false).Error(err)
				os.Exit(exitFailure)
			}
		}
		os.Exit(run(cmd.OutOrStdout(), newLogger(opts.Verbose), opts, args))
		return nil
	}
	if err := cmd.Execute(); err != nil {
		logrus.New().Error(err)
		os.Exit(exitFailure)
	}
}

// newLogger builds the CLI logger. It writes to stderr so that verdicts on
// stdout stay machine-readable.
func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
