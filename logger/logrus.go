package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LogrusLogger implements the Logger interface with structured JSON output.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger writes JSON lines to out. Unknown levels fall back to info.
func NewLogrusLogger(out io.Writer, level string) Logger {
	base := logrus.New()
	base.SetOutput(out)
	base.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	base.SetLevel(parsed)

	return &LogrusLogger{entry: logrus.NewEntry(base).WithField("app", "prebid-eplanning")}
}

func (logger *LogrusLogger) Debugf(msg string, args ...any) {
	logger.entry.Debugf(msg, args...)
}

func (logger *LogrusLogger) Infof(msg string, args ...any) {
	logger.entry.Infof(msg, args...)
}

func (logger *LogrusLogger) Warnf(msg string, args ...any) {
	logger.entry.Warnf(msg, args...)
}

func (logger *LogrusLogger) Errorf(msg string, args ...any) {
	logger.entry.Errorf(msg, args...)
}
