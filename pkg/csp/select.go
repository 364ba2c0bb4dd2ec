package csp

// Variable selection. With MCV enabled the search assigns the
// most-constrained variable first: the one with the fewest values
// still compatible with the current partial assignment. Tight
// variables fail fast, so dead subtrees are abandoned before the
// search has invested anything in them. Ties break toward the lowest
// variable id and the fallback order is declaration order, which keeps
// runs reproducible.

func (s *Solver) nextVariable() Variable {
	if s.cfg.UseMCV {
		return s.mostConstrained()
	}
	return s.firstUnassigned()
}

// mostConstrained returns the unassigned variable with the fewest
// viable values. Viability is checked against the current assignment
// (marginal weight nonzero), not just domain membership, so the
// heuristic stays sharp even when AC-3 is disabled and domains carry
// stale values.
func (s *Solver) mostConstrained() Variable {
	best := Variable(-1)
	bestCount := 0
	for i := range s.asg {
		if s.asg[i] != 0 {
			continue
		}
		v := Variable(i)
		count := 0
		s.store.Values(v).Iterate(func(val int) {
			if s.deltaWeight(v, val) != 0 {
				count++
			}
		})
		if best == -1 || count < bestCount {
			best, bestCount = v, count
		}
	}
	return best
}

// firstUnassigned returns the lowest-id unassigned variable.
func (s *Solver) firstUnassigned() Variable {
	for i := range s.asg {
		if s.asg[i] == 0 {
			return Variable(i)
		}
	}
	return -1
}
