package csp

// Arc consistency enforcement (AC-3). A worklist of arcs is drained by
// revising the tail variable of each arc against the head: any value
// with no surviving support in the head's domain is pruned. Pruning a
// domain re-enqueues the arcs that could newly be violated, so the
// restriction spreads across the graph until a fixed point or a
// wiped-out domain.
//
// Arc consistency is necessary but not sufficient for global
// consistency - an arc-consistent graph can still have no solution -
// so the search still has to assign and recurse. What propagation buys
// is discovering dead branches without descending into them.

// EnforceArcConsistency makes every arc in the graph consistent,
// pruning store domains as needed. This is the full preprocessing pass
// run once before search starts. Returns false if some domain was
// emptied, in which case the problem is unsatisfiable as given.
func EnforceArcConsistency(g *Graph, s *Store) bool {
	return runAC3(g, s, g.Arcs())
}

// PropagateAssignment restores arc consistency after variable v's
// domain was restricted, seeding the worklist with only the arcs into
// v. This is the incremental pass run after each trial assignment
// during search. Returns false if propagation emptied some domain,
// meaning the current partial assignment cannot be extended.
func PropagateAssignment(g *Graph, s *Store, v Variable) bool {
	return runAC3(g, s, g.ArcsInto(v))
}

// runAC3 drains the arc worklist FIFO. Processing order affects only
// performance, never the resulting domains.
func runAC3(g *Graph, s *Store, queue []Arc) bool {
	for len(queue) > 0 {
		arc := queue[0]
		queue = queue[1:]
		if !revise(g, s, arc) {
			continue
		}
		if s.Count(arc.From) == 0 {
			return false
		}
		// arc.From shrank, so every neighbor's consistency with it
		// must be re-checked - except across the arc we just used,
		// whose support was the reason for the pruning.
		for _, k := range g.Neighbors(arc.From) {
			if k != arc.To {
				queue = append(queue, Arc{From: k, To: arc.From})
			}
		}
	}
	return true
}

// revise prunes from the arc's tail every value with no supporting
// value in the head's domain. Returns true if anything was pruned.
func revise(g *Graph, s *Store, arc Arc) bool {
	revised := false
	head := s.Values(arc.To)
	s.Values(arc.From).Iterate(func(a int) {
		supported := false
		head.Iterate(func(b int) {
			if !supported && g.Weight(arc.From, arc.To, a, b) != 0 {
				supported = true
			}
		})
		if !supported {
			s.Prune(arc.From, a)
			revised = true
		}
	})
	return revised
}
