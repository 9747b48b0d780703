package main

import (
	"errors"

	"github.com/GoCodeAlone/evosim/internal/engine"
)

// Exit codes from spec.md §6 "Exit / error codes".
const (
	exitSuccess             = 0
	exitInvalidRequest      = 1
	exitInvariantViolation  = 2
	exitDependencyUnavailable = 3
)

// exitCodeFor maps a returned error to the process exit code a caller can
// script against, falling back to exitInvalidRequest for anything cobra
// itself rejects (bad flags, unknown subcommands).
func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	var cfgErr *engine.ConfigError
	var invErr *engine.InvariantError
	var transErr *engine.TransientError
	switch {
	case errors.As(err, &invErr):
		return exitInvariantViolation
	case errors.As(err, &transErr):
		return exitDependencyUnavailable
	case errors.As(err, &cfgErr):
		return exitInvalidRequest
	default:
		return exitInvalidRequest
	}
}
