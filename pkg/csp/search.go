package csp

import (
	"context"
	"time"
)

// Objective selects what the search is after.
type Objective int

const (
	// FirstSolution stops at the first complete assignment whose
	// aggregate weight is strictly positive. This is the satisfaction
	// mode and the default.
	FirstSolution Objective = iota
	// BestWeight explores the whole search space and keeps the
	// complete assignment with the largest aggregate weight. Only
	// meaningful for weighted problems; on boolean problems it visits
	// every solution just to return one of them.
	BestWeight
)

// Config controls the search heuristics. The zero value disables
// everything; DefaultConfig is the recommended starting point.
type Config struct {
	// UseMCV picks the unassigned variable with the fewest viable
	// values at each step, so contradictions are hit early.
	UseMCV bool
	// UseAC3 re-establishes arc consistency after every trial
	// assignment, pruning consequences before descending. When off,
	// the search falls back to direct checks against already-assigned
	// neighbors.
	UseAC3 bool
	// Objective selects satisfaction or best-weight search.
	Objective Objective
}

// DefaultConfig enables both heuristics with the satisfaction
// objective.
func DefaultConfig() Config {
	return Config{UseMCV: true, UseAC3: true, Objective: FirstSolution}
}

// Assignment maps each variable to its chosen value. A Solve result
// covers every variable of the graph.
type Assignment map[Variable]int

// Solver runs backtracking search over a factor graph. A Solver is
// reusable but not safe for concurrent use: each Solve call owns its
// store exclusively for the duration (there is one logical writer and
// no parallel branch exploration).
type Solver struct {
	cfg   Config
	stats Stats

	// per-solve state
	g          *Graph
	store      *Store
	asg        []int // value per variable, 0 = unassigned
	unassigned int
	best       Assignment
	bestWeight float64
}

// NewSolver returns a solver with the given configuration.
func NewSolver(cfg Config) *Solver {
	return &Solver{cfg: cfg}
}

// Stats returns the counters of the most recent Solve call.
func (s *Solver) Stats() Stats { return s.stats }

// Solve searches the graph for a complete assignment. It returns
// ErrUnsatisfiable when no assignment exists, or the context's error
// if the deadline expires mid-search. The result is deterministic:
// identical inputs and configuration always produce the identical
// assignment, because variable and value tie-breaks are fixed.
func (s *Solver) Solve(ctx context.Context, g *Graph) (Assignment, error) {
	start := time.Now()
	s.g = g
	s.store = NewStore(g)
	s.asg = make([]int, g.NumVariables())
	s.unassigned = g.NumVariables()
	s.best = nil
	s.bestWeight = 0
	s.stats = Stats{}
	defer func() { s.stats.SearchTime = time.Since(start) }()

	// A variable whose unary factors reject every value can never be
	// assigned, no matter what the rest of the graph does.
	for v := 0; v < g.NumVariables(); v++ {
		if s.store.Count(Variable(v)) == 0 {
			return nil, ErrUnsatisfiable
		}
	}

	if s.cfg.UseAC3 {
		if !EnforceArcConsistency(g, s.store) {
			return nil, ErrUnsatisfiable
		}
	}

	if _, err := s.backtrack(ctx, 1); err != nil {
		return nil, err
	}
	if s.best == nil {
		return nil, ErrUnsatisfiable
	}
	s.stats.BestWeight = s.bestWeight
	return s.best, nil
}

// backtrack is one step of the depth-first search: pick a variable,
// try each of its viable values, propagate, recurse, undo. The bool
// result means "stop searching" - under FirstSolution a found
// assignment propagates success straight up every frame; under
// BestWeight the search always continues until the space is exhausted.
func (s *Solver) backtrack(ctx context.Context, weight float64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.stats.Operations++

	if s.unassigned == 0 {
		s.recordSolution(weight)
		return s.cfg.Objective == FirstSolution, nil
	}

	v := s.nextVariable()
	for _, val := range s.store.Values(v).Values() {
		dw := s.deltaWeight(v, val)
		if dw == 0 {
			continue
		}
		s.asg[v] = val
		s.unassigned--
		s.stats.Assignments++

		mark := s.store.Checkpoint()
		s.store.Restrict(v, val)
		consistent := true
		if s.cfg.UseAC3 {
			consistent = PropagateAssignment(s.g, s.store, v)
		}
		if t := s.store.TrailLen(); t > s.stats.PeakTrailSize {
			s.stats.PeakTrailSize = t
		}

		if consistent {
			done, err := s.backtrack(ctx, weight*dw)
			if err != nil {
				return false, err
			}
			if done {
				return true, nil
			}
		}

		s.store.Restore(mark)
		s.asg[v] = 0
		s.unassigned++
		s.stats.Backtracks++
	}
	return false, nil
}

// recordSolution captures a complete assignment if it beats the best
// one seen so far.
func (s *Solver) recordSolution(weight float64) {
	s.stats.SolutionsFound++
	if s.stats.FirstSolutionOps == 0 {
		s.stats.FirstSolutionOps = s.stats.Operations
	}
	if s.best != nil && weight <= s.bestWeight {
		return
	}
	s.best = make(Assignment, len(s.asg))
	for v, val := range s.asg {
		s.best[Variable(v)] = val
	}
	s.bestWeight = weight
}

// deltaWeight is the marginal weight of extending the current partial
// assignment with v=val: the unary weight of val times the binary
// weight against every already-assigned neighbor. A zero means the
// extension violates some constraint outright. This is also the
// consistency check the search relies on when AC-3 is disabled.
func (s *Solver) deltaWeight(v Variable, val int) float64 {
	w := s.g.UnaryWeight(v, val)
	if w == 0 {
		return 0
	}
	for _, u := range s.g.Neighbors(v) {
		uval := s.asg[u]
		if uval == 0 {
			continue
		}
		w *= s.g.Weight(v, u, val, uval)
		if w == 0 {
			return 0
		}
	}
	return w
}
