// Package bash wraps mvdan.cc/sh so external programs and short shell
// pipelines run without depending on a system shell.
package bash

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// threadSafeBuffer collects output written concurrently by pipeline stages.
type threadSafeBuffer struct {
	buffer bytes.Buffer
	mutex  sync.Mutex
}

func (b *threadSafeBuffer) Write(p []byte) (n int, err error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buffer.Write(p)
}

func (b *threadSafeBuffer) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buffer.String()
}

// QuoteArgs renders argv as a single shell command line in which every
// argument survives word splitting and expansion unchanged.
func QuoteArgs(argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("empty command")
	}

	quoted := make([]string, 0, len(argv))
	for _, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("cannot quote argument %q: %w", arg, err)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " "), nil
}

// ExitCode converts the error returned by interp.Runner.Run into an exit
// code. A non-zero exit status is not an execution error; anything else is
// returned as is.
func ExitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitStatus interp.ExitStatus
	if errors.As(err, &exitStatus) {
		return int(exitStatus), nil
	}
	return 1, err
}

// RunInSubShell runs a bash command in a subshell of runner with the given
// stdin, capturing stdout. Stderr goes to the supplied writer so interactive
// tools can still draw on it. A non-zero exit code is NOT treated as an
// error - check the exit code separately.
func RunInSubShell(ctx context.Context, runner *interp.Runner, dir string, command string, stdin io.Reader, stderr io.Writer) (string, int, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return "", 1, fmt.Errorf("failed to parse bash command: %w", err)
	}

	subShell := runner.Subshell()
	outBuf := &threadSafeBuffer{}
	interp.StdIO(stdin, outBuf, stderr)(subShell) //nolint:errcheck

	if dir != "" {
		if err := changeDir(ctx, subShell, dir); err != nil {
			return "", 1, err
		}
	}

	exitCode, err := ExitCode(subShell.Run(ctx, prog))
	return outBuf.String(), exitCode, err
}

// changeDir runs `cd` in runner so both the working directory of spawned
// programs and $PWD follow dir.
func changeDir(ctx context.Context, runner *interp.Runner, dir string) error {
	// The cd builtin takes a single operand and no "--"; a leading dash
	// would read as an option or as OLDPWD.
	if strings.HasPrefix(dir, "-") {
		dir = "./" + dir
	}
	quoted, err := syntax.Quote(dir, syntax.LangBash)
	if err != nil {
		return fmt.Errorf("cannot quote directory %q: %w", dir, err)
	}
	prog, err := syntax.NewParser().Parse(strings.NewReader("cd "+quoted), "")
	if err != nil {
		return fmt.Errorf("failed to parse cd command: %w", err)
	}

	code, err := ExitCode(runner.Run(ctx, prog))
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("cannot change directory to %s", dir)
	}
	return nil
}
