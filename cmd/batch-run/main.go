// batch-run invokes a command once per batch of arguments, keeping the
// summed argument length of every invocation under a budget.
//
//	batch-run <external-command> [--budget=<N>] [--fail-fast] [--dry-run] [args...]
//
// Arguments are taken from the command line, or one per line from stdin when
// none are given. Use -- before arguments that start with a dash.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"github.com/svrvt/vc-ranger/internal/batch"
	"github.com/svrvt/vc-ranger/internal/batchrun"
	"github.com/svrvt/vc-ranger/internal/environment"
	"github.com/svrvt/vc-ranger/internal/executor"
	"github.com/svrvt/vc-ranger/internal/styles"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
)

var BUILD_VERSION = "dev"

const binaryName = "batch-run"

// usageError marks bad invocations; they exit with status 2.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }
func (e usageError) ExitCode() int { return 2 }

func main() {
	logger, _, err := environment.InitializeLogger(binaryName, BUILD_VERSION, expand.ListEnviron(os.Environ()...))
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new batch-run invocation --------", zap.Int("argc", len(os.Args)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, logger)
	os.Exit(exitCode(err, os.Stderr, logger))
}

// exitCode reports err on stderr and picks the process exit status.
func exitCode(err error, stderr io.Writer, logger *zap.Logger) int {
	if err == nil {
		return 0
	}

	var failure *batchrun.FailureError
	if errors.As(err, &failure) {
		for _, f := range failure.Failures {
			fmt.Fprintln(stderr, styles.ERROR("batch-run: "+f.Error()))
		}
		return failure.ExitCode()
	}

	fmt.Fprintln(stderr, styles.ERROR("batch-run: "+err.Error()))
	logger.Error("batch-run failed", zap.Error(err))

	if coder, ok := err.(interface{ ExitCode() int }); ok {
		return coder.ExitCode()
	}
	if errors.Is(err, batch.ErrInvalidBudget) {
		return 2
	}
	return 1
}

func run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer, logger *zap.Logger) error {
	var (
		budget   int
		failFast bool
		dryRun   bool
		version  bool
	)

	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.IntVar(&budget, "budget", batch.DefaultBudget, "maximum summed argument length per invocation")
	flagSet.BoolVar(&failFast, "fail-fast", false, "stop after the first failing invocation")
	flagSet.BoolVar(&dryRun, "dry-run", false, "print the invocations instead of running them")
	flagSet.BoolVar(&version, "version", false, "display build version")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s <external-command> [flags] [args...]\n\n", binaryName)
		fmt.Fprintln(stderr, "Arguments are read from stdin, one per line, when none are given.")
		fmt.Fprintln(stderr)
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return usageError{err}
	}

	if version {
		fmt.Fprintln(stdout, BUILD_VERSION)
		return nil
	}

	positional := flagSet.Args()
	if len(positional) == 0 {
		flagSet.Usage()
		return usageError{errors.New("missing external command")}
	}
	if budget <= 0 {
		return usageError{fmt.Errorf("%w: --budget must be positive, got %d", batch.ErrInvalidBudget, budget)}
	}

	command := positional[:1]
	args := positional[1:]
	childStdin := stdin
	if len(args) == 0 {
		var err error
		args, err = readLines(stdin)
		if err != nil {
			return fmt.Errorf("failed to read arguments from stdin: %w", err)
		}
		childStdin = strings.NewReader("")
	}

	exec, err := executor.NewExecutor(executor.Options{
		Stdin:  childStdin,
		Stdout: stdout,
		Stderr: stderr,
	}, logger, executor.NewLoggingMiddleware(logger))
	if err != nil {
		return err
	}

	runner, err := batchrun.NewRunner(batchrun.Options{
		Command:  command,
		Budget:   budget,
		FailFast: failFast,
		DryRun:   dryRun,
		Stdout:   stdout,
	}, exec, logger)
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx, args)
	if report != nil {
		logger.Info("batch-run finished",
			zap.Int("batches", report.Batches),
			zap.Int("executed", report.Executed),
			zap.Int("failed", len(report.Failures)),
		)
	}
	return err
}

// readLines returns one argument per input line. A trailing carriage
// return is dropped; a missing final newline is tolerated.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
