// Package logger wraps logrus with a component convention so every log line
// carries the subsystem that emitted it.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is re-exported so callers don't import logrus directly.
type Fields = logrus.Fields

var root = newRoot()

func newRoot() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// SetVerbose switches the global level between info and debug.
func SetVerbose(verbose bool) {
	if verbose {
		root.SetLevel(logrus.DebugLevel)
	} else {
		root.SetLevel(logrus.InfoLevel)
	}
}

// SetJSONFormat switches the output to JSON, for server deployments.
func SetJSONFormat() {
	root.SetFormatter(&logrus.JSONFormatter{})
}

// WithComponent returns an entry tagged with the given component name.
func WithComponent(component string) *logrus.Entry {
	return root.WithField("component", component)
}
