package csp

import (
	"fmt"
	"sort"
)

// Variable identifies one unknown in a constraint graph. Variables are
// dense integer ids handed out by Graph.AddVariable in declaration
// order.
type Variable int

// Arc is a directed pair of constrained variables. AC-3 works on a
// queue of arcs rather than on constraints, because consistency must
// be re-checked in both directions whenever either endpoint's domain
// shrinks.
type Arc struct {
	From Variable
	To   Variable
}

// UnaryFactor scores a single value for one variable. A zero weight
// rules the value out; in boolean problems weights are just 0 or 1.
type UnaryFactor func(v int) float64

// BinaryFactor scores a pair of values for two variables. A zero
// weight marks the combination as forbidden.
type BinaryFactor func(a, b int) float64

// NotEqual is the pairwise all-different factor: weight 1 when the
// values differ, 0 when they collide.
func NotEqual(a, b int) float64 {
	if a != b {
		return 1
	}
	return 0
}

type varNode struct {
	domain ValueSet
	bound  int
	// unary holds the merged unary weights indexed by value-1, or nil
	// when no unary factor was added.
	unary []float64
	// tables holds the merged binary weight table toward each
	// neighbor, flattened as [(selfValue-1)*neighborBound + (neighborValue-1)].
	tables map[Variable][]float64
	// nbrs caches the sorted neighbor list; rebuilt lazily after
	// factors are added.
	nbrs []Variable
}

// Graph is a weighted factor graph: variables with finite domains,
// unary factors, and binary factors between variable pairs. Factors
// added between the same operands merge by element-wise
// multiplication, so stacking constraints only ever narrows what is
// allowed.
//
// A Graph is built once, before solving, and is read-only during
// search. All mutable search state lives in a Store.
type Graph struct {
	vars []varNode
}

// NewGraph returns an empty factor graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddVariable declares a new variable whose domain is the given set of
// candidate values. All values must be positive. Returns the new
// variable's id.
func (g *Graph) AddVariable(values []int) Variable {
	if len(values) == 0 {
		panic("csp: AddVariable with empty domain")
	}
	bound := 0
	for _, v := range values {
		if v < 1 {
			panic(fmt.Sprintf("csp: domain value %d out of range, values are 1-based", v))
		}
		if v > bound {
			bound = v
		}
	}
	g.vars = append(g.vars, varNode{
		domain: ValueSetOf(bound, values...),
		bound:  bound,
		tables: make(map[Variable][]float64),
	})
	return Variable(len(g.vars) - 1)
}

// NumVariables returns the number of declared variables.
func (g *Graph) NumVariables() int { return len(g.vars) }

// InitialValues returns the declared domain of v, before any unary
// factors are taken into account.
func (g *Graph) InitialValues(v Variable) ValueSet {
	return g.vars[v].domain.Clone()
}

// Bound returns the largest candidate value of v.
func (g *Graph) Bound(v Variable) int { return g.vars[v].bound }

// AddUnaryFactor attaches f to variable v. The factor is tabulated
// over v's domain at call time; a second unary factor on the same
// variable merges with the first by element-wise multiplication.
func (g *Graph) AddUnaryFactor(v Variable, f UnaryFactor) {
	node := &g.vars[v]
	if node.unary == nil {
		node.unary = make([]float64, node.bound)
		for i := range node.unary {
			node.unary[i] = 1
		}
	}
	node.domain.Iterate(func(val int) {
		node.unary[val-1] *= f(val)
	})
}

// AddBinaryFactor attaches f to the variable pair (a, b). The factor
// is tabulated in both directions so arc revision can look up weights
// from either endpoint. Adding another factor over the same pair
// merges by element-wise multiplication. Self-factors are a modeling
// bug and panic.
func (g *Graph) AddBinaryFactor(a, b Variable, f BinaryFactor) {
	if a == b {
		panic(fmt.Sprintf("csp: binary factor with identical endpoints %d", a))
	}
	g.mergeTable(a, b, f)
	g.mergeTable(b, a, func(x, y int) float64 { return f(y, x) })
	g.vars[a].nbrs = nil
	g.vars[b].nbrs = nil
}

func (g *Graph) mergeTable(from, to Variable, f BinaryFactor) {
	fn, tn := &g.vars[from], &g.vars[to]
	table, ok := fn.tables[to]
	if !ok {
		table = make([]float64, fn.bound*tn.bound)
		for i := range table {
			table[i] = 1
		}
		fn.tables[to] = table
	}
	fn.domain.Iterate(func(a int) {
		tn.domain.Iterate(func(b int) {
			table[(a-1)*tn.bound+(b-1)] *= f(a, b)
		})
	})
}

// Weight returns the merged binary weight of assigning value va to a
// and vb to b. Returns 1 when no factor connects the pair, since an
// absent constraint permits everything.
func (g *Graph) Weight(a, b Variable, va, vb int) float64 {
	table, ok := g.vars[a].tables[b]
	if !ok {
		return 1
	}
	return table[(va-1)*g.vars[b].bound+(vb-1)]
}

// UnaryWeight returns the merged unary weight of value v for variable
// x, or 1 when x has no unary factor.
func (g *Graph) UnaryWeight(x Variable, v int) float64 {
	u := g.vars[x].unary
	if u == nil {
		return 1
	}
	return u[v-1]
}

// Neighbors returns the variables sharing a binary factor with v, in
// ascending id order for deterministic traversal.
func (g *Graph) Neighbors(v Variable) []Variable {
	node := &g.vars[v]
	if node.nbrs == nil {
		node.nbrs = make([]Variable, 0, len(node.tables))
		for u := range node.tables {
			node.nbrs = append(node.nbrs, u)
		}
		sort.Slice(node.nbrs, func(i, j int) bool { return node.nbrs[i] < node.nbrs[j] })
	}
	return node.nbrs
}

// ArcsInto returns every arc (u, v) for neighbors u of v. These are
// exactly the arcs whose consistency can break when v's domain
// shrinks.
func (g *Graph) ArcsInto(v Variable) []Arc {
	nbrs := g.Neighbors(v)
	arcs := make([]Arc, len(nbrs))
	for i, u := range nbrs {
		arcs[i] = Arc{From: u, To: v}
	}
	return arcs
}

// Arcs returns every directed arc in the graph, for full-graph
// preprocessing.
func (g *Graph) Arcs() []Arc {
	var arcs []Arc
	for v := range g.vars {
		for _, u := range g.Neighbors(Variable(v)) {
			arcs = append(arcs, Arc{From: u, To: Variable(v)})
		}
	}
	return arcs
}
