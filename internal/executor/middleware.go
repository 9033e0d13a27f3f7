package executor

import (
	"context"
	"time"

	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
)

// NewLoggingMiddleware logs every external program the interpreter starts,
// with its argument count and outcome. Arguments themselves are only logged
// at debug level since they can be long file lists.
func NewLoggingMiddleware(logger *zap.Logger) ExecMiddleware {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			start := time.Now()
			logger.Debug("exec", zap.Strings("argv", args))

			err := next(ctx, args)

			fields := []zap.Field{
				zap.String("program", args[0]),
				zap.Int("args", len(args)-1),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Info("exec finished with error", append(fields, zap.Error(err))...)
			} else {
				logger.Info("exec finished", fields...)
			}
			return err
		}
	}
}
