package gsmerge

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logLevels maps the level names used on the command line to zap levels.
// CRITICAL leaves only the message that ends the program.
var logLevels = map[string]zapcore.Level{
	"DEBUG":    zapcore.DebugLevel,
	"INFO":     zapcore.InfoLevel,
	"WARNING":  zapcore.WarnLevel,
	"WARN":     zapcore.WarnLevel,
	"ERROR":    zapcore.ErrorLevel,
	"CRITICAL": zapcore.FatalLevel,
}

// ParseLogLevel accepts DEBUG, INFO, WARNING, ERROR or CRITICAL, in any case.
func ParseLogLevel(name string) (zapcore.Level, error) {
	level, ok := logLevels[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return zapcore.InfoLevel, fmt.Errorf("%w: unknown log level %q", ErrConfig, name)
	}

	return level, nil
}

// NewLogger builds a human readable logger that writes to stderr.
func NewLogger(levelName string) (*zap.Logger, error) {
	level, err := ParseLogLevel(levelName)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.DisableStacktrace = true
	config.Sampling = nil

	return config.Build()
}
