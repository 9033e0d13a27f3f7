// Package environment reads the process environment knobs shared by the
// vc-ranger binaries and builds their loggers.
package environment

import (
	"os"
	"strings"

	"github.com/svrvt/vc-ranger/internal/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"mvdan.cc/sh/v3/expand"
)

const (
	LogLevelVar      = "VC_RANGER_LOG_LEVEL"
	CleanLogFileVar  = "VC_RANGER_CLEAN_LOG_FILE"
	defaultLogLevel  = zapcore.InfoLevel
	developmentBuild = "dev"
)

// GetLogLevel returns the level configured through VC_RANGER_LOG_LEVEL,
// falling back to info for unset or unparsable values.
func GetLogLevel(env expand.Environ) zap.AtomicLevel {
	value := strings.TrimSpace(env.Get(LogLevelVar).String())
	if value == "" {
		return zap.NewAtomicLevelAt(defaultLogLevel)
	}

	level, err := zap.ParseAtomicLevel(strings.ToLower(value))
	if err != nil {
		return zap.NewAtomicLevelAt(defaultLogLevel)
	}
	return level
}

// ShouldCleanLogFile reports whether the log file should be truncated at
// startup.
func ShouldCleanLogFile(env expand.Environ) bool {
	switch strings.ToLower(strings.TrimSpace(env.Get(CleanLogFileVar).String())) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// InitializeLogger builds the file logger for the named binary. Dev builds
// always log at debug level.
func InitializeLogger(binary string, buildVersion string, env expand.Environ) (*zap.Logger, zap.AtomicLevel, error) {
	logLevel := GetLogLevel(env)
	if buildVersion == developmentBuild {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logFile := core.LogFile(binary)
	if ShouldCleanLogFile(env) {
		os.Remove(logFile)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		logFile,
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}

	return logger, logLevel, nil
}
