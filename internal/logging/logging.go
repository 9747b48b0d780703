// Package logging provides the shared zerolog setup used by every internal
// package, mirroring the structured-logging convention seen in
// leemwalker-thousand-worlds and jhkimqd-chaos-utils.
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	base zerolog.Logger
)

func initBase() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// For returns a component-scoped logger, e.g. For("tensorkernel").
func For(component string) zerolog.Logger {
	once.Do(initBase)
	return base.With().Str("component", component).Logger()
}

// SetLevel adjusts the global minimum log level (used by cmd/evosim's
// --log-level flag).
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}
