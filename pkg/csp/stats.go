package csp

import "time"

// Stats holds counters describing one Solve call. The operation count
// is the number of backtrack entries, which is the standard yardstick
// for comparing heuristic configurations on the same problem.
type Stats struct {
	// Operations counts entries into the recursive search step.
	Operations int
	// Assignments counts trial values actually assigned.
	Assignments int
	// Backtracks counts undone trial assignments.
	Backtracks int
	// SolutionsFound counts complete assignments reached. Under the
	// FirstSolution objective this is at most 1; under BestWeight the
	// search keeps going and counts every complete assignment.
	SolutionsFound int
	// FirstSolutionOps records the operation count at the moment the
	// first complete assignment was found, or 0 if none was.
	FirstSolutionOps int
	// BestWeight is the aggregate factor weight of the returned
	// assignment (product of all satisfied factor weights).
	BestWeight float64
	// PeakTrailSize is the high-water mark of the store's undo trail.
	PeakTrailSize int
	// SearchTime is wall-clock time spent inside Solve.
	SearchTime time.Duration
}
