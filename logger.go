package lsm

import (
	"log"
	"os"

	"github.com/cockroachdb/redact"
)

// Logger is the engine's diagnostic sink. It mirrors the shape of the
// teacher's (cockroachdb/pebble) internal base.Logger: a small
// Infof/Errorf/Fatalf surface threaded through Options, never a global.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// defaultLogger wraps the standard log package. Every argument is passed
// through redact.Sprintf before formatting, since callers may log raw
// keys/values that this package cannot assume are safe to print
// verbatim.
type defaultLogger struct{}

func (defaultLogger) Infof(format string, args ...interface{}) {
	log.Print(redact.Sprintf(format, args...))
}

func (defaultLogger) Errorf(format string, args ...interface{}) {
	log.Print(redact.Sprintf(format, args...))
}

func (defaultLogger) Fatalf(format string, args ...interface{}) {
	log.Print(redact.Sprintf(format, args...))
	os.Exit(1)
}
