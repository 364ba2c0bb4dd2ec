// Package sudoku models Sudoku puzzles as weighted constraint graphs
// for the csp solver. A puzzle of size N (N a perfect square) becomes
// N*N variables with domain [1, N]; the row, column, and box
// all-different rules decompose into pairwise not-equal factors, and
// each given cell becomes a unary factor that rejects every value but
// the given one.
package sudoku

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gitrdm/gofactor/pkg/csp"
)

// Validation errors. All of them are detected while constructing a
// Puzzle, before any solver is invoked.
var (
	ErrBadSize          = errors.New("sudoku: grid size must be a positive perfect square")
	ErrBadCoordinate    = errors.New("sudoku: cell coordinate out of range")
	ErrBadValue         = errors.New("sudoku: cell value out of range")
	ErrConflictingGiven = errors.New("sudoku: conflicting values for the same cell")
)

// Cell is one pre-filled grid position. Coordinates and value are
// 1-based.
type Cell struct {
	Row, Col, Value int
}

// Puzzle is a validated Sudoku instance: a grid size and its given
// cells. Construct one with New or Read.
type Puzzle struct {
	Size   int
	Givens []Cell
}

// New validates a grid size and given cells and returns the puzzle.
// The size must be a positive perfect square (4, 9, 16, ...) so the
// box constraints are well defined. Givens must lie inside the grid,
// and two givens for the same cell must agree.
func New(size int, givens []Cell) (*Puzzle, error) {
	root := int(math.Sqrt(float64(size)))
	if size < 1 || root*root != size {
		return nil, fmt.Errorf("%w: got %d", ErrBadSize, size)
	}
	seen := make(map[[2]int]int, len(givens))
	for _, c := range givens {
		if c.Row < 1 || c.Row > size || c.Col < 1 || c.Col > size {
			return nil, fmt.Errorf("%w: (%d,%d) on a %dx%d grid", ErrBadCoordinate, c.Row, c.Col, size, size)
		}
		if c.Value < 1 || c.Value > size {
			return nil, fmt.Errorf("%w: %d at (%d,%d), want 1..%d", ErrBadValue, c.Value, c.Row, c.Col, size)
		}
		if prev, ok := seen[[2]int{c.Row, c.Col}]; ok && prev != c.Value {
			return nil, fmt.Errorf("%w: (%d,%d) given both %d and %d", ErrConflictingGiven, c.Row, c.Col, prev, c.Value)
		}
		seen[[2]int{c.Row, c.Col}] = c.Value
	}
	return &Puzzle{Size: size, Givens: givens}, nil
}

// Model couples a built constraint graph with the puzzle's cell
// layout, so callers can translate between grid coordinates and
// solver variables.
type Model struct {
	Size  int
	Graph *csp.Graph
	cells []csp.Variable // row-major
}

// Model builds the puzzle's constraint graph: one variable per cell in
// reading order, unary factors for the givens, and pairwise not-equal
// factors over every row, column, and box. Overlapping pairs (same
// row and box, say) merge harmlessly since the factors are boolean.
func (p *Puzzle) Model() *Model {
	m := &Model{
		Size:  p.Size,
		Graph: csp.NewGraph(),
		cells: make([]csp.Variable, p.Size*p.Size),
	}
	domain := make([]int, p.Size)
	for i := range domain {
		domain[i] = i + 1
	}
	for i := range m.cells {
		m.cells[i] = m.Graph.AddVariable(domain)
	}

	for _, c := range p.Givens {
		want := c.Value
		m.Graph.AddUnaryFactor(m.Cell(c.Row, c.Col), func(v int) float64 {
			if v == want {
				return 1
			}
			return 0
		})
	}

	// Row, column, and box all-different rules, decomposed into the
	// pairwise arcs AC-3 operates on.
	for row := 1; row <= p.Size; row++ {
		group := make([]csp.Variable, 0, p.Size)
		for col := 1; col <= p.Size; col++ {
			group = append(group, m.Cell(row, col))
		}
		m.allDifferent(group)
	}
	for col := 1; col <= p.Size; col++ {
		group := make([]csp.Variable, 0, p.Size)
		for row := 1; row <= p.Size; row++ {
			group = append(group, m.Cell(row, col))
		}
		m.allDifferent(group)
	}
	box := int(math.Sqrt(float64(p.Size)))
	for bi := 0; bi < box; bi++ {
		for bj := 0; bj < box; bj++ {
			group := make([]csp.Variable, 0, p.Size)
			for r := bi*box + 1; r <= (bi+1)*box; r++ {
				for c := bj*box + 1; c <= (bj+1)*box; c++ {
					group = append(group, m.Cell(r, c))
				}
			}
			m.allDifferent(group)
		}
	}
	return m
}

func (m *Model) allDifferent(group []csp.Variable) {
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			m.Graph.AddBinaryFactor(group[i], group[j], csp.NotEqual)
		}
	}
}

// Cell returns the solver variable for the 1-based grid coordinate.
func (m *Model) Cell(row, col int) csp.Variable {
	return m.cells[(row-1)*m.Size+(col-1)]
}

// Grid lays an assignment out as a Size x Size matrix in reading
// order. Cells missing from the assignment come out as 0.
func (m *Model) Grid(a csp.Assignment) [][]int {
	grid := make([][]int, m.Size)
	for r := range grid {
		grid[r] = make([]int, m.Size)
		for c := range grid[r] {
			grid[r][c] = a[m.Cell(r+1, c+1)]
		}
	}
	return grid
}

// Render formats an assignment as a printable grid, one row per line,
// unassigned cells as dots.
func (m *Model) Render(a csp.Assignment) string {
	return renderGrid(m.Grid(a))
}

// RenderGivens formats the initial puzzle the same way Render formats
// a solution.
func (p *Puzzle) RenderGivens() string {
	grid := make([][]int, p.Size)
	for r := range grid {
		grid[r] = make([]int, p.Size)
	}
	for _, c := range p.Givens {
		grid[c.Row-1][c.Col-1] = c.Value
	}
	return renderGrid(grid)
}

func renderGrid(grid [][]int) string {
	width := 1
	if len(grid) > 9 {
		width = 2
	}
	var sb strings.Builder
	for _, row := range grid {
		for c, v := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			if v == 0 {
				fmt.Fprintf(&sb, "%*s", width, ".")
			} else {
				fmt.Fprintf(&sb, "%*d", width, v)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
