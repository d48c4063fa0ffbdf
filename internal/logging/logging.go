// Package logging builds the leveled debug logger used across chore.
package logging

import (
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// EnvLevel names the environment variable consulted when no level flag is set.
const EnvLevel = "CHORE_LOG_LEVEL"

const defaultLevel = log.WarnLevel

// New returns a logger writing text entries to w. An empty level selects the
// default; an unparsable one falls back to it with a warning entry.
func New(w io.Writer, level string) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	l.SetLevel(defaultLevel)

	level = strings.TrimSpace(level)
	if level == "" {
		return l
	}
	if lv, err := log.ParseLevel(level); err == nil {
		l.SetLevel(lv)
	} else {
		l.Warnf("invalid log level %s, defaulting to %s", level, defaultLevel)
	}
	return l
}

// Discard returns a logger that drops everything; handy for tests.
func Discard() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}
