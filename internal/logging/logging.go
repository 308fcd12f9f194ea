// Package logging builds the logr.Logger used throughout cpurun.
package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a zap-backed logger. format is "json" or "console"; level is
// one of debug, info, warn, error. logr's V(1) maps to zap's debug level.
func New(level, format string) (logr.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return logr.Discard(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zapConfig zap.Config
	switch format {
	case "json":
		zapConfig = zap.NewProductionConfig()
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	default:
		return logr.Discard(), fmt.Errorf("invalid log format %q", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)

	zapLog, err := zapConfig.Build()
	if err != nil {
		return logr.Discard(), fmt.Errorf("failed to build logger: %w", err)
	}
	return zapr.NewLogger(zapLog), nil
}
