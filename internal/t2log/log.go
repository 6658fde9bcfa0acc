// Package t2log provides the structured logger T2FS's layers log through:
// a thin wrapper around a logrus.Entry so callers never reach for the
// package-global logrus.StandardLogger() directly, and tests or embedders
// can swap in their own logger.
package t2log

import "github.com/sirupsen/logrus"

// Logger wraps a logrus.Entry; With attaches further structured fields.
type Logger struct {
	entry *logrus.Entry
}

// Default returns a Logger backed by a new logrus.Logger at Info level.
func Default() *Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return &Logger{entry: logrus.NewEntry(l)}
}

// New wraps an existing logrus.Entry, letting a caller supply their own
// logrus.Logger (formatter, output, hooks) instead.
func New(entry *logrus.Entry) *Logger {
	return &Logger{entry: entry}
}

// With returns a Logger with an additional structured field attached.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}
