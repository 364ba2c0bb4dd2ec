// Package csp provides a weighted constraint satisfaction solver over
// factor graphs. Problems are modeled as variables with finite integer
// domains connected by unary and binary weighted factors; the solver
// finds satisfying assignments by backtracking search accelerated by
// arc-consistency propagation (AC-3) and the most-constrained-variable
// heuristic (MCV).
package csp

import (
	"fmt"
	"math/bits"
	"strings"
)

// ValueSet is a compact set of candidate values drawn from [1, bound].
// Each value is one bit in a uint64 word array, giving O(1) membership
// tests and hardware-popcount cardinality.
//
// ValueSet operations are pure - they return new sets rather than
// modifying in place. The only mutation path is through a Store, which
// records every change on its undo trail.
type ValueSet struct {
	bound int
	words []uint64
}

// FullValueSet returns the set {1, ..., bound}.
func FullValueSet(bound int) ValueSet {
	if bound <= 0 {
		return ValueSet{}
	}
	vs := ValueSet{bound: bound, words: make([]uint64, (bound+63)/64)}
	for i := 0; i < bound; i++ {
		vs.words[i/64] |= 1 << uint(i%64)
	}
	return vs
}

// ValueSetOf returns the set containing exactly the given values.
// Values outside [1, bound] are ignored.
func ValueSetOf(bound int, values ...int) ValueSet {
	if bound <= 0 {
		return ValueSet{}
	}
	vs := ValueSet{bound: bound, words: make([]uint64, (bound+63)/64)}
	for _, v := range values {
		if v >= 1 && v <= bound {
			vs.words[(v-1)/64] |= 1 << uint((v-1)%64)
		}
	}
	return vs
}

// Clone returns an independent copy of the set.
func (vs ValueSet) Clone() ValueSet {
	words := make([]uint64, len(vs.words))
	copy(words, vs.words)
	return ValueSet{bound: vs.bound, words: words}
}

// Bound returns the upper end of the value range [1, bound].
func (vs ValueSet) Bound() int { return vs.bound }

// Has returns true if the set contains v.
func (vs ValueSet) Has(v int) bool {
	if v < 1 || v > vs.bound {
		return false
	}
	return (vs.words[(v-1)/64]>>uint((v-1)%64))&1 == 1
}

// Count returns the number of values in the set.
func (vs ValueSet) Count() int {
	n := 0
	for _, w := range vs.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty returns true if the set contains no values.
func (vs ValueSet) IsEmpty() bool {
	for _, w := range vs.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// IsSingleton returns true if the set contains exactly one value.
func (vs ValueSet) IsSingleton() bool { return vs.Count() == 1 }

// SingletonValue returns the sole value of a singleton set, or the
// smallest value of a larger set. Returns 0 for an empty set.
func (vs ValueSet) SingletonValue() int { return vs.Min() }

// Min returns the smallest value in the set, or 0 if the set is empty.
func (vs ValueSet) Min() int {
	for i, w := range vs.words {
		if w != 0 {
			return i*64 + bits.TrailingZeros64(w) + 1
		}
	}
	return 0
}

// Without returns a copy of the set with v removed.
func (vs ValueSet) Without(v int) ValueSet {
	nv := vs.Clone()
	if v >= 1 && v <= vs.bound {
		nv.words[(v-1)/64] &^= 1 << uint((v-1)%64)
	}
	return nv
}

// With returns a copy of the set with v added.
func (vs ValueSet) With(v int) ValueSet {
	nv := vs.Clone()
	if v >= 1 && v <= vs.bound {
		nv.words[(v-1)/64] |= 1 << uint((v-1)%64)
	}
	return nv
}

// Iterate calls f for each value in the set in ascending order.
func (vs ValueSet) Iterate(f func(v int)) {
	for i, w := range vs.words {
		for w != 0 {
			low := w & -w
			f(i*64 + bits.TrailingZeros64(w) + 1)
			w &^= low
		}
	}
}

// Values returns the members of the set in ascending order.
func (vs ValueSet) Values() []int {
	out := make([]int, 0, vs.Count())
	vs.Iterate(func(v int) { out = append(out, v) })
	return out
}

// Equal returns true if both sets contain exactly the same values.
func (vs ValueSet) Equal(other ValueSet) bool {
	if vs.bound != other.bound {
		return false
	}
	for i := range vs.words {
		if vs.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// String renders the set as "{v1,v2,...}".
func (vs ValueSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	vs.Iterate(func(v int) {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&sb, "%d", v)
	})
	sb.WriteByte('}')
	return sb.String()
}

// clear removes v in place. Only the Store may call this, so every
// mutation lands on the undo trail.
func (vs *ValueSet) clear(v int) {
	vs.words[(v-1)/64] &^= 1 << uint((v-1)%64)
}

// set re-adds v in place. Used by Store.Restore to undo prunes.
func (vs *ValueSet) set(v int) {
	vs.words[(v-1)/64] |= 1 << uint((v-1)%64)
}
