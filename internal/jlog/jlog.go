// Package jlog wraps github.com/sirupsen/logrus the way a virtual machine
// threads a *strings.Builder/*bufio.Writer pair through itself for debug
// output, populated only when debug mode is on: one configured logger,
// injected into whatever owns it, instead of a package-level global reached
// for ad hoc.
package jlog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger configured for CLI use: text formatting, no
// timestamp (the CLI's own report printer handles wall-clock reporting),
// writing to out. verbose raises the level to Debug; otherwise Info.
func New(out io.Writer, verbose bool) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		FullTimestamp:    false,
	})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

// Discard returns a logger that drops everything, for tests that need a
// Decompiler but don't care about its log output.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
