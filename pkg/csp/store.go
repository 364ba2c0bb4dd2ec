package csp

// Mark is an opaque checkpoint token for a Store. Restoring to a mark
// undoes every prune performed after the checkpoint was taken.
type Mark int

// prune records one removed value so Restore can put it back.
type prune struct {
	v   Variable
	val int
}

// Store holds the current domain of every variable during search. It
// is the only mutable shared state of a solve: the constraint graph is
// read-only once built, and the search path owns the store
// exclusively.
//
// Every removal is recorded on an undo trail. Checkpoint captures the
// trail position and Restore replays the trail backwards to that
// position, so backtracking costs exactly the values pruned since the
// checkpoint rather than a full domain copy per node.
type Store struct {
	sets  []ValueSet
	trail []prune
}

// NewStore builds a store whose domains are the graph's declared
// domains narrowed by unary factors: values with zero unary weight are
// ruled out before search begins, which is how pre-filled cells enter
// the search already bound.
func NewStore(g *Graph) *Store {
	s := &Store{
		sets:  make([]ValueSet, g.NumVariables()),
		trail: make([]prune, 0, 1024),
	}
	for i := range s.sets {
		v := Variable(i)
		s.sets[i] = g.InitialValues(v)
		s.sets[i].Iterate(func(val int) {
			if g.UnaryWeight(v, val) == 0 {
				s.sets[i].clear(val)
			}
		})
	}
	return s
}

// Values returns the current domain of v. The returned set aliases
// store state and is invalidated by the next Prune, Restrict, or
// Restore; Clone it to keep a snapshot.
func (s *Store) Values(v Variable) ValueSet { return s.sets[v] }

// Count returns the current domain size of v.
func (s *Store) Count(v Variable) int { return s.sets[v].Count() }

// Prune removes one value from v's domain and returns the remaining
// domain size. A result of zero is not an error: it tells the caller
// (AC-3 or the search) that this branch is a dead end.
func (s *Store) Prune(v Variable, val int) int {
	if s.sets[v].Has(val) {
		s.sets[v].clear(val)
		s.trail = append(s.trail, prune{v: v, val: val})
	}
	return s.sets[v].Count()
}

// Restrict removes every value but val from v's domain, making val the
// sole candidate. Returns the remaining domain size: 1 on success, 0
// when val was not in the domain to begin with.
func (s *Store) Restrict(v Variable, val int) int {
	s.sets[v].Iterate(func(other int) {
		if other != val {
			s.sets[v].clear(other)
			s.trail = append(s.trail, prune{v: v, val: other})
		}
	})
	return s.sets[v].Count()
}

// Checkpoint returns a token for the current trail position.
func (s *Store) Checkpoint() Mark { return Mark(len(s.trail)) }

// Restore undoes every prune performed since the mark was taken, in
// reverse order of application.
func (s *Store) Restore(m Mark) {
	for i := len(s.trail) - 1; i >= int(m); i-- {
		p := s.trail[i]
		s.sets[p.v].set(p.val)
	}
	s.trail = s.trail[:m]
}

// TrailLen returns the current undo-trail length. Useful for peak
// memory statistics.
func (s *Store) TrailLen() int { return len(s.trail) }
