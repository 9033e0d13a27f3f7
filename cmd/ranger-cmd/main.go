// ranger-cmd provides ranger commands backed by external tools: frecency
// jumps, fuzzy file selection, mkcd and batched trashing. Results are printed
// as ranger console commands, one per line, for a commands.py shim to
// execute.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/svrvt/vc-ranger/internal/environment"
	"github.com/svrvt/vc-ranger/internal/styles"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
)

var BUILD_VERSION = "dev"

const binaryName = "ranger-cmd"

func main() {
	logger, _, err := environment.InitializeLogger(binaryName, BUILD_VERSION, expand.ListEnviron(os.Environ()...))
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new ranger-cmd invocation --------", zap.Strings("args", os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd(logger)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, styles.ERROR(binaryName+": "+err.Error()))

		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}
