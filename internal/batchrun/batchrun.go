// Package batchrun invokes an external command once per argument batch.
//
// Batches run sequentially in input order. A failing invocation does not
// stop the remaining batches unless FailFast is set; failures are collected
// and reported together once every batch has been attempted.
package batchrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/svrvt/vc-ranger/internal/bash"
	"github.com/svrvt/vc-ranger/internal/batch"
	"go.uber.org/zap"
)

// Executor starts one program invocation and waits for it.
type Executor interface {
	ExecuteArgs(ctx context.Context, argv []string) (int, error)
}

type Options struct {
	// Command is the program and any leading arguments; each batch is
	// appended to it.
	Command []string
	Budget  int
	// FailFast skips the remaining batches after the first failure.
	FailFast bool
	// DryRun prints the planned invocations to Stdout instead of running them.
	DryRun bool
	Stdout io.Writer
}

// ExternalProcessFailure describes one invocation that exited non-zero.
type ExternalProcessFailure struct {
	Batch    int
	ExitCode int
	Args     int
}

func (f ExternalProcessFailure) Error() string {
	return fmt.Sprintf("batch %d (%d args) exited with status %d", f.Batch+1, f.Args, f.ExitCode)
}

// FailureError aggregates every failed invocation of a run.
type FailureError struct {
	Failures []ExternalProcessFailure
}

func (e *FailureError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return strings.Join(msgs, "\n")
}

// ExitCode is the exit code of the first failing invocation.
func (e *FailureError) ExitCode() int {
	if len(e.Failures) == 0 {
		return 1
	}
	return e.Failures[0].ExitCode
}

// Report summarizes a run.
type Report struct {
	Batches  int
	Executed int
	Failures []ExternalProcessFailure
}

type Runner struct {
	opts   Options
	exec   Executor
	logger *zap.Logger
}

func NewRunner(opts Options, exec Executor, logger *zap.Logger) (*Runner, error) {
	if len(opts.Command) == 0 {
		return nil, errors.New("no command given")
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{opts: opts, exec: exec, logger: logger}, nil
}

// Run splits args into batches and invokes the command for each of them.
// An invalid budget is reported before anything is started. When at least
// one invocation fails the returned error is a *FailureError.
func (r *Runner) Run(ctx context.Context, args []string) (*Report, error) {
	batches, err := batch.Split(args, r.opts.Budget)
	if err != nil {
		return nil, err
	}

	report := &Report{Batches: len(batches)}
	r.logger.Info("running batches",
		zap.Strings("command", r.opts.Command),
		zap.Int("args", len(args)),
		zap.Int("batches", len(batches)),
		zap.Int("budget", r.opts.Budget),
	)

	for i, b := range batches {
		argv := make([]string, 0, len(r.opts.Command)+len(b))
		argv = append(argv, r.opts.Command...)
		argv = append(argv, b...)

		if r.opts.DryRun {
			if err := r.printPlan(i, len(batches), b, argv); err != nil {
				return report, err
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("batch %d not started: %w", i+1, err)
		}

		exitCode, err := r.exec.ExecuteArgs(ctx, argv)
		if err != nil {
			return report, fmt.Errorf("batch %d: %w", i+1, err)
		}
		report.Executed++

		if exitCode == 0 {
			r.logger.Debug("batch succeeded", zap.Int("batch", i+1), zap.Int("args", len(b)))
			continue
		}

		failure := ExternalProcessFailure{Batch: i, ExitCode: exitCode, Args: len(b)}
		report.Failures = append(report.Failures, failure)
		r.logger.Warn("batch failed",
			zap.Int("batch", i+1),
			zap.Int("args", len(b)),
			zap.Int("exit_code", exitCode),
		)
		if r.opts.FailFast {
			break
		}
	}

	if len(report.Failures) > 0 {
		return report, &FailureError{Failures: report.Failures}
	}
	return report, nil
}

func (r *Runner) printPlan(i, n int, b []string, argv []string) error {
	line, err := bash.QuoteArgs(argv)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.opts.Stdout, "# batch %d/%d: %d args, %s\n%s\n",
		i+1, n, len(b), humanize.Bytes(uint64(batch.Size(b))), line)
	return err
}
