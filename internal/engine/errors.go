// Package engine orchestrates one simulation turn end to end: pressure
// overlay application, the five tensor kernel stages, tectonic motion,
// speciation services and food-web maintenance, in that order (spec.md §5
// "Per-turn pipeline"). It is the seam where the typed error classes from
// spec.md §7 are raised, since it is the only component positioned to tell
// a malformed request apart from a violated invariant or a transient
// dependency failure.
package engine

import "fmt"

// ConfigError means the run request or balance configuration itself is
// invalid: the caller should fix the request and retry, not rerun as is
// (spec.md §7, exit code 1).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("engine: config error: %s", e.Reason) }

// InvariantError means a structural guarantee the engine depends on (tensor
// shape agreement, plate tile-count coverage, population non-negativity)
// was violated mid-run. These are never expected in a correctly wired
// engine and are never safe to silently continue past (spec.md §7, exit
// code 2).
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("engine: invariant violated (%s): %s", e.Invariant, e.Detail)
}

// TransientError wraps a failure in an external dependency (the model
// router's transport, a save backend) that a caller may reasonably retry
// (spec.md §7, exit code 3).
type TransientError struct {
	Dependency string
	Err        error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("engine: transient failure in %s: %v", e.Dependency, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// SoftFailure records a degraded-but-continuable condition (a species row
// whose adaptation step fell back to defaults, a router dispatch that
// exhausted retries and returned a degraded response). Soft failures are
// collected onto TurnReport.DegradedSpecies / TurnReport.Warnings rather
// than aborting the turn (spec.md §7 "degraded_species").
type SoftFailure struct {
	Component string
	Detail    string
}

func (s SoftFailure) String() string {
	return fmt.Sprintf("%s: %s", s.Component, s.Detail)
}
