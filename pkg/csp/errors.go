package csp

import "errors"

// Solver errors. Domain wipeouts during search are ordinary
// backtracking signals and never surface as errors; only the final
// unsatisfiable verdict (and context cancellation) cross the Solve
// boundary.
var (
	// ErrUnsatisfiable reports that the search exhausted the root
	// variable's alternatives without finding a complete assignment.
	// This is a definitive negative result, not a failure of the
	// solver.
	ErrUnsatisfiable = errors.New("csp: no satisfying assignment exists")
)
