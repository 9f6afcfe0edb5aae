package logger

import (
	"fmt"
	"os"
)

// packageDepth accounts for the extra frame added by the package-level helpers below.
const packageDepth = 2

var logger Logger = &GlogLogger{depth: packageDepth, level: LevelInfo}

// Backends accepted by New.
const (
	TypeGlog   = "glog"
	TypeLogrus = "logrus"
)

// Level is the lowest severity a logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps debug, info, warn or error to a Level. An empty level is info.
func ParseLevel(level string) (Level, error) {
	switch level {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown logger level %q", level)
	}
}

// New builds the logger named by kind. An empty kind selects glog.
func New(kind, level string) (Logger, error) {
	parsed, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "", TypeGlog:
		return &GlogLogger{depth: packageDepth, level: parsed}, nil
	case TypeLogrus:
		return NewLogrusLogger(os.Stderr, level), nil
	default:
		return nil, fmt.Errorf("unknown logger type %q", kind)
	}
}

// SetLogger replaces the logger behind the package-level helpers.
func SetLogger(l Logger) {
	logger = l
}

// Debug level logging
func Debugf(msg string, args ...any) {
	logger.Debugf(msg, args...)
}

// Info level logging
func Infof(msg string, args ...any) {
	logger.Infof(msg, args...)
}

// Warn level logging
func Warnf(msg string, args ...any) {
	logger.Warnf(msg, args...)
}

// Error level logging
func Errorf(msg string, args ...any) {
	logger.Errorf(msg, args...)
}
