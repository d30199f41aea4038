package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/specialistvlad/argcegar/internal/app"
	"github.com/specialistvlad/argcegar/internal/cegar"
	"github.com/specialistvlad/argcegar/internal/config"
)

// Process exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
	ExitUnsafe  = 3
	ExitUnknown = 4
)

// Version is set at build time.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	var cfg *app.Config
	root := newRootCmd(output, &cfg)
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if cfg == nil {
		slog.Debug("No verification requested, exiting.")
		return nil, true, nil
	}
	slog.Debug("CLI parser finished successfully.", "paths", cfg.Paths)
	return cfg, false, nil
}

// VerdictError maps a result to the process outcome: nil for SAFE and an
// ExitError for UNSAFE and UNKNOWN.
func VerdictError(res *cegar.Result) error {
	if res == nil {
		return nil
	}
	switch res.Verdict {
	case cegar.Unsafe:
		return &ExitError{Code: ExitUnsafe, Message: "verdict: UNSAFE"}
	case cegar.Unknown:
		return &ExitError{Code: ExitUnknown, Message: "verdict: UNKNOWN: " + res.Reason}
	default:
		return nil
	}
}

func newRootCmd(output io.Writer, out **app.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "argcegar",
		Short: "Counterexample-guided verification of HCL programs",
		Long: `argcegar checks that no error location of a program is reachable.

It explores an abstract reachability graph with an explicit-value domain and
refines the abstraction with interpolants whenever an error path turns out
to be infeasible.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVerifyCmd(out), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(output, "argcegar version %s\n", Version)
		},
	})
	return root
}

func newVerifyCmd(out **app.Config) *cobra.Command {
	var (
		cfg       app.Config
		order     string
		strategy  string
		restart   string
		waitlist  string
		scope     string
		maxRounds int
		timeout   time.Duration
		verifyItp bool
	)

	cmd := &cobra.Command{
		Use:   "verify [flags] PATH...",
		Short: "Verify the program in the given files",
		Long: `Verify loads every .hcl file named by PATH (a file, a directory searched
recursively, or a glob pattern with ** support) and reports SAFE, UNSAFE or
UNKNOWN. Flags override the options of an analysis block.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args
			cfg.LogFormat = strings.ToLower(cfg.LogFormat)
			cfg.LogLevel = strings.ToLower(cfg.LogLevel)

			flags := cmd.Flags()
			ov := &cfg.Overrides
			if flags.Changed("interpolation-order") {
				ov.InterpolationOrder = &order
			}
			if flags.Changed("strategy") {
				ov.InterpolationStrategy = &strategy
			}
			if flags.Changed("restart") {
				ov.RestartStrategy = &restart
			}
			if flags.Changed("waitlist") {
				ov.WaitlistOrder = &waitlist
			}
			if flags.Changed("precision-scope") {
				ov.PrecisionScope = &scope
			}
			if flags.Changed("max-refinements") {
				ov.MaxRefinements = &maxRounds
			}
			if flags.Changed("verify-interpolants") {
				ov.VerifyInterpolants = &verifyItp
			}
			if flags.Changed("round-timeout") {
				ov.RoundTimeout = &timeout
			}

			c, err := app.NewConfig(cfg)
			if err != nil {
				return err
			}
			*out = c
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.LogFormat, "log-format", "auto", "Log output format: text, json or auto.")
	f.StringVar(&cfg.LogLevel, "log-level", "info", "Logging level: debug, info, warn or error.")
	f.IntVar(&cfg.HealthcheckPort, "healthcheck-port", 0, "Port for the /health and /metrics server. 0 is disabled.")
	f.StringVarP(&cfg.ReportFormat, "format", "o", "yaml", "Report format: yaml or json.")
	f.BoolVarP(&cfg.Watch, "watch", "w", false, "Verify again whenever a program file changes.")
	f.StringVar(&order, "interpolation-order", config.OrderTopDown, "Interpolation tree order: top-down or bottom-up.")
	f.StringVar(&strategy, "strategy", config.StrategyInductive, "Interpolation strategy: sequential, inductive or nested.")
	f.StringVar(&restart, "restart", config.RestartRoot, "Restart after refinement: root or strengthen.")
	f.StringVar(&waitlist, "waitlist", config.WaitlistDFS, "Exploration order: bfs or dfs.")
	f.StringVar(&scope, "precision-scope", config.ScopeLocation, "Precision scope: location or global.")
	f.IntVar(&maxRounds, "max-refinements", 50, "Maximum refinement rounds. 0 is unlimited.")
	f.DurationVar(&timeout, "round-timeout", 0, "Time limit for the interpolation of one round, e.g. 30s. 0 is none.")
	f.BoolVar(&verifyItp, "verify-interpolants", false, "Check every interpolant sequence.")
	return cmd
}
