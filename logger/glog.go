package logger

import (
	"github.com/golang/glog"
)

// debugVerbosity is the glog -v level at which Debugf output is emitted.
const debugVerbosity glog.Level = 2

// GlogLogger implements the Logger interface on top of glog with a configurable call depth,
// so that file:line in the output points at the caller rather than this package.
type GlogLogger struct {
	depth int
	level Level
}

// Debugf logs at glog verbosity 2, or always when the logger level is debug.
func (logger *GlogLogger) Debugf(msg string, args ...any) {
	if logger.level == LevelDebug || glog.V(debugVerbosity) {
		glog.InfoDepthf(logger.depth, msg, args...)
	}
}

func (logger *GlogLogger) Infof(msg string, args ...any) {
	if logger.level <= LevelInfo {
		glog.InfoDepthf(logger.depth, msg, args...)
	}
}

func (logger *GlogLogger) Warnf(msg string, args ...any) {
	if logger.level <= LevelWarn {
		glog.WarningDepthf(logger.depth, msg, args...)
	}
}

func (logger *GlogLogger) Errorf(msg string, args ...any) {
	glog.ErrorDepthf(logger.depth, msg, args...)
}
