// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kmertax/internal/config"
	"kmertax/internal/logging"
	"kmertax/internal/version"
	"kmertax/internal/writers"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitFailure  = 3
	ExitCanceled = 130
)

// usageError marks bad flags, arguments, or configuration.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, a ...any) error { return usageError{fmt.Errorf(format, a...)} }

// runtimeError marks failures after the inputs were accepted.
type runtimeError struct{ err error }

func (e runtimeError) Error() string { return e.err.Error() }
func (e runtimeError) Unwrap() error { return e.err }

func failed(err error) error {
	if err == nil {
		return nil
	}
	return runtimeError{err}
}

// env is shared by every subcommand of one invocation.
type env struct {
	stdout, stderr io.Writer
	configPath     string
	cfg            *config.Config
	log            *zap.Logger
}

// setup loads configuration and builds the logger. Flags registered by
// registerCommon override file and environment values.
func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return usageError{err}
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return usageError{err}
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}
	log, err := logging.New(e.stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return usageError{err}
	}
	e.cfg = cfg
	e.log = log
	return nil
}

func newRoot(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "kmertax",
		Short: "Classify sequences against labeled references by k-mer window matching",
		Long: `kmertax assigns query sequences to taxonomically labeled reference
sequences. It indexes the references by k-mer, finds for each query the
reference window sharing the most k-mers, and turns the match counts into
confidence scores.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return e.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })
	root.PersistentFlags().StringVar(&e.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().String("log-level", "", "log level: debug|info|warn|error")
	root.PersistentFlags().String("log-format", "", "log format: console|json")

	root.AddCommand(
		newIndexCmd(e),
		newClassifyCmd(e),
		newOrientCmd(e),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "kmertax version %s\n", version.Version)
				return failed(err)
			},
		},
	)
	return root
}

// RunContext executes one command line and returns the process exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	e := &env{stdout: stdout, stderr: stderr}
	root := newRoot(e)
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(parent)
	return exitCode(err, parent, stderr)
}

func exitCode(err error, ctx context.Context, stderr io.Writer) int {
	var rt runtimeError
	switch {
	case err == nil:
		if ctx.Err() != nil {
			return ExitCanceled
		}
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case writers.IsBrokenPipe(err):
		return ExitOK
	case errors.As(err, &rt):
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return ExitFailure
	default:
		// Flag, argument, command and configuration errors.
		_, _ = fmt.Fprintln(stderr, "error:", err)
		_, _ = fmt.Fprintln(stderr, "Run 'kmertax --help' for usage.")
		return ExitUsage
	}
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
