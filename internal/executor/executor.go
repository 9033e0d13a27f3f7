// Package executor runs external programs on behalf of the vc-ranger
// commands. Everything goes through a mvdan/sh interpreter, so argv
// invocations and short shell pipelines share one environment, one set of
// exec middlewares and one exit-code convention.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/svrvt/vc-ranger/internal/bash"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// killTimeout is how long a cancelled child gets between SIGINT and SIGKILL.
const killTimeout = 2 * time.Second

// ExecMiddleware is a function that wraps an ExecHandlerFunc to provide
// additional functionality (e.g., command interception, logging).
type ExecMiddleware = func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc

// Options configures a new Executor. Zero values mean the process's own
// stdio, environment and working directory.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    []string
	Dir    string
}

// Executor runs commands through a single interpreter.
type Executor struct {
	runner *interp.Runner
	stderr io.Writer
	logger *zap.Logger
}

// NewExecutor creates a new Executor.
// The logger is optional (can be nil).
// The execHandlers are optional middleware for intercepting command
// execution; external programs are finally started by the process-group
// exec handler.
func NewExecutor(opts Options, logger *zap.Logger, execHandlers ...ExecMiddleware) (*Executor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}

	handlers := append([]ExecMiddleware{}, execHandlers...)
	handlers = append(handlers, func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return bash.NewProcessGroupExecHandler(killTimeout)
	})

	runnerOpts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(opts.Env...)),
		interp.StdIO(opts.Stdin, opts.Stdout, opts.Stderr),
		interp.ExecHandlers(handlers...),
	}
	if opts.Dir != "" {
		runnerOpts = append(runnerOpts, interp.Dir(opts.Dir))
	}

	runner, err := interp.New(runnerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bash runner: %w", err)
	}

	return &Executor{
		runner: runner,
		stderr: opts.Stderr,
		logger: logger,
	}, nil
}

// ExecuteArgs runs argv as a single program invocation with the executor's
// stdio. Returns the exit code and any execution error.
//
// A program found on PATH wins over an interpreter builtin of the same name
// (echo, printf, test, kill); only names with no program behind them fall
// back to the builtin.
func (e *Executor) ExecuteArgs(ctx context.Context, argv []string) (int, error) {
	line, err := bash.QuoteArgs(e.externalArgv(argv))
	if err != nil {
		return 1, err
	}
	return e.ExecuteBash(ctx, line)
}

// externalArgv points argv[0] at the program PATH resolves it to.
func (e *Executor) externalArgv(argv []string) []string {
	if len(argv) == 0 || strings.ContainsRune(argv[0], '/') {
		return argv
	}
	path, err := interp.LookPathDir(e.runner.Dir, e.runner.Env, argv[0])
	if err != nil {
		return argv
	}
	return append([]string{path}, argv[1:]...)
}

// ExecuteBash runs a bash command with output going to the executor's
// stdout/stderr. Returns the exit code and any execution error.
func (e *Executor) ExecuteBash(ctx context.Context, command string) (int, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return 1, fmt.Errorf("failed to parse bash command: %w", err)
	}

	subShell := e.runner.Subshell()
	err = subShell.Run(ctx, prog)
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return int(exitStatus), nil
		}
		return 1, err
	}

	return 0, nil
}

// Capture runs a bash command in dir (the executor's directory when empty)
// with the given stdin, returning its stdout and exit code. Stderr is left
// attached to the executor's stderr so interactive programs stay usable.
func (e *Executor) Capture(ctx context.Context, dir string, command string, stdin io.Reader) (string, int, error) {
	stdout, exitCode, err := bash.RunInSubShell(ctx, e.runner, dir, command, stdin, e.stderr)
	if err != nil {
		e.logger.Debug("captured command failed", zap.String("command", command), zap.Error(err))
	}
	return stdout, exitCode, err
}

// CaptureArgs is Capture for a single argv invocation.
func (e *Executor) CaptureArgs(ctx context.Context, dir string, argv []string, stdin io.Reader) (string, int, error) {
	line, err := bash.QuoteArgs(argv)
	if err != nil {
		return "", 1, err
	}
	return e.Capture(ctx, dir, line, stdin)
}

// GetPwd returns the current working directory.
func (e *Executor) GetPwd() string {
	return e.runner.Dir
}
