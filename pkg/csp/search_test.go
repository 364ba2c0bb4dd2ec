package csp

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

// sudokuGraph builds an n x n Sudoku factor graph directly, without
// going through the sudoku package, so the engine tests stand alone.
// givens maps row-major cell index (0-based) to value.
func sudokuGraph(n int, givens map[int]int) (*Graph, []Variable) {
	g := NewGraph()
	domain := make([]int, n)
	for i := range domain {
		domain[i] = i + 1
	}
	cells := make([]Variable, n*n)
	for i := range cells {
		cells[i] = g.AddVariable(domain)
	}
	for idx, val := range givens {
		want := val
		g.AddUnaryFactor(cells[idx], func(v int) float64 {
			if v == want {
				return 1
			}
			return 0
		})
	}
	pairwise := func(group []Variable) {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				g.AddBinaryFactor(group[i], group[j], NotEqual)
			}
		}
	}
	for r := 0; r < n; r++ {
		row := make([]Variable, n)
		for c := 0; c < n; c++ {
			row[c] = cells[r*n+c]
		}
		pairwise(row)
	}
	for c := 0; c < n; c++ {
		col := make([]Variable, n)
		for r := 0; r < n; r++ {
			col[r] = cells[r*n+c]
		}
		pairwise(col)
	}
	box := int(math.Sqrt(float64(n)))
	for bi := 0; bi < box; bi++ {
		for bj := 0; bj < box; bj++ {
			group := make([]Variable, 0, n)
			for r := bi * box; r < (bi+1)*box; r++ {
				for c := bj * box; c < (bj+1)*box; c++ {
					group = append(group, cells[r*n+c])
				}
			}
			pairwise(group)
		}
	}
	return g, cells
}

// checkSudoku fails the test unless the assignment is a complete valid
// grid honoring the givens.
func checkSudoku(t *testing.T, n int, cells []Variable, givens map[int]int, a Assignment) {
	t.Helper()
	if len(a) != n*n {
		t.Fatalf("assignment covers %d variables, want %d", len(a), n*n)
	}
	grid := make([]int, n*n)
	for i, v := range cells {
		val := a[v]
		if val < 1 || val > n {
			t.Fatalf("cell %d assigned %d, outside [1,%d]", i, val, n)
		}
		grid[i] = val
	}
	for idx, want := range givens {
		if grid[idx] != want {
			t.Errorf("given cell %d = %d, want %d", idx, grid[idx], want)
		}
	}
	box := int(math.Sqrt(float64(n)))
	for i := 0; i < n*n; i++ {
		for j := i + 1; j < n*n; j++ {
			ri, ci := i/n, i%n
			rj, cj := j/n, j%n
			sameRow := ri == rj
			sameCol := ci == cj
			sameBox := ri/box == rj/box && ci/box == cj/box
			if (sameRow || sameCol || sameBox) && grid[i] == grid[j] {
				t.Fatalf("cells %d and %d both hold %d", i, j, grid[i])
			}
		}
	}
}

var allConfigs = []struct {
	name string
	cfg  Config
}{
	{"mcv+ac3", Config{UseMCV: true, UseAC3: true}},
	{"mcv only", Config{UseMCV: true}},
	{"ac3 only", Config{UseAC3: true}},
	{"plain backtracking", Config{}},
}

func TestSolve4x4(t *testing.T) {
	// 4x4 grid with givens (1,1)=1, (1,2)=2, (2,1)=3
	givens := map[int]int{0: 1, 1: 2, 4: 3}
	for _, tc := range allConfigs {
		t.Run(tc.name, func(t *testing.T) {
			g, cells := sudokuGraph(4, givens)
			solver := NewSolver(tc.cfg)
			a, err := solver.Solve(context.Background(), g)
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			checkSudoku(t, 4, cells, givens, a)
		})
	}
}

func TestSolve4x4Contradictory(t *testing.T) {
	// same row, same value: unsatisfiable under the row rule
	givens := map[int]int{0: 1, 1: 1}
	for _, tc := range allConfigs {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := sudokuGraph(4, givens)
			solver := NewSolver(tc.cfg)
			_, err := solver.Solve(context.Background(), g)
			if !errors.Is(err, ErrUnsatisfiable) {
				t.Fatalf("Solve err = %v, want ErrUnsatisfiable", err)
			}
		})
	}
}

var puzzle9 = [81]int{
	5, 3, 0, 0, 7, 0, 0, 0, 0,
	6, 0, 0, 1, 9, 5, 0, 0, 0,
	0, 9, 8, 0, 0, 0, 0, 6, 0,

	8, 0, 0, 0, 6, 0, 0, 0, 3,
	4, 0, 0, 8, 0, 3, 0, 0, 1,
	7, 0, 0, 0, 2, 0, 0, 0, 6,

	0, 6, 0, 0, 0, 0, 2, 8, 0,
	0, 0, 0, 4, 1, 9, 0, 0, 5,
	0, 0, 0, 0, 8, 0, 0, 7, 9,
}

// solution9 is the unique solution of puzzle9.
var solution9 = [81]int{
	5, 3, 4, 6, 7, 8, 9, 1, 2,
	6, 7, 2, 1, 9, 5, 3, 4, 8,
	1, 9, 8, 3, 4, 2, 5, 6, 7,

	8, 5, 9, 7, 6, 1, 4, 2, 3,
	4, 2, 6, 8, 5, 3, 7, 9, 1,
	7, 1, 3, 9, 2, 4, 8, 5, 6,

	9, 6, 1, 5, 3, 7, 2, 8, 4,
	2, 8, 7, 4, 1, 9, 6, 3, 5,
	3, 4, 5, 2, 8, 6, 1, 7, 9,
}

func givens9() map[int]int {
	m := make(map[int]int)
	for i, v := range puzzle9 {
		if v != 0 {
			m[i] = v
		}
	}
	return m
}

func TestSolve9x9UniqueSolution(t *testing.T) {
	for _, tc := range allConfigs {
		t.Run(tc.name, func(t *testing.T) {
			g, cells := sudokuGraph(9, givens9())
			solver := NewSolver(tc.cfg)
			a, err := solver.Solve(context.Background(), g)
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			for i, v := range cells {
				if a[v] != solution9[i] {
					t.Fatalf("cell %d = %d, want %d", i, a[v], solution9[i])
				}
			}
		})
	}
}

func TestHeuristicsReduceWork(t *testing.T) {
	ops := make(map[string]int)
	for _, tc := range allConfigs {
		g, _ := sudokuGraph(9, givens9())
		solver := NewSolver(tc.cfg)
		if _, err := solver.Solve(context.Background(), g); err != nil {
			t.Fatalf("%s: Solve: %v", tc.name, err)
		}
		ops[tc.name] = solver.Stats().Operations
	}
	if ops["mcv+ac3"] >= ops["plain backtracking"] {
		t.Errorf("mcv+ac3 took %d operations, plain backtracking %d; heuristics must cost strictly less here",
			ops["mcv+ac3"], ops["plain backtracking"])
	}
	if ops["mcv only"] > ops["plain backtracking"] {
		t.Errorf("mcv took %d operations, static order %d; the heuristic must not increase search cost",
			ops["mcv only"], ops["plain backtracking"])
	}
}

func TestSolvePrefilledGridIsImmediate(t *testing.T) {
	givens := make(map[int]int)
	for i, v := range solution9 {
		givens[i] = v
	}
	g, cells := sudokuGraph(9, givens)
	solver := NewSolver(DefaultConfig())
	a, err := solver.Solve(context.Background(), g)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for i, v := range cells {
		if a[v] != solution9[i] {
			t.Fatalf("cell %d = %d, want %d", i, a[v], solution9[i])
		}
	}
	if bt := solver.Stats().Backtracks; bt != 0 {
		t.Errorf("Backtracks = %d, want 0 on an already-solved grid", bt)
	}
}

func TestSolveDeterministic(t *testing.T) {
	run := func() Assignment {
		g, _ := sudokuGraph(4, map[int]int{0: 1})
		solver := NewSolver(DefaultConfig())
		a, err := solver.Solve(context.Background(), g)
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		return a
	}
	first := run()
	for i := 0; i < 3; i++ {
		again := run()
		for v, val := range first {
			if again[v] != val {
				t.Fatalf("run %d differs at variable %d: %d vs %d", i, v, again[v], val)
			}
		}
	}
}

func TestSolveBestWeight(t *testing.T) {
	g := NewGraph()
	a := g.AddVariable([]int{1, 2})
	b := g.AddVariable([]int{1, 2})
	g.AddUnaryFactor(a, func(v int) float64 {
		if v == 1 {
			return 0.9
		}
		return 0.1
	})
	g.AddUnaryFactor(b, func(v int) float64 {
		if v == 1 {
			return 0.2
		}
		return 0.8
	})
	g.AddBinaryFactor(a, b, func(x, y int) float64 {
		if x == y {
			return 1
		}
		return 0.5
	})

	solver := NewSolver(Config{UseMCV: true, UseAC3: true, Objective: BestWeight})
	got, err := solver.Solve(context.Background(), g)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	// weights: (1,1)=.18 (1,2)=.36 (2,1)=.01 (2,2)=.08
	if got[a] != 1 || got[b] != 2 {
		t.Fatalf("best assignment = a:%d b:%d, want a:1 b:2", got[a], got[b])
	}
	st := solver.Stats()
	if math.Abs(st.BestWeight-0.36) > 1e-9 {
		t.Errorf("BestWeight = %v, want 0.36", st.BestWeight)
	}
	if st.SolutionsFound != 4 {
		t.Errorf("SolutionsFound = %d, want 4 (exhaustive search)", st.SolutionsFound)
	}
}

func TestSolveFirstSolutionStopsEarly(t *testing.T) {
	g := pairGraph(2, 3)
	solver := NewSolver(DefaultConfig())
	if _, err := solver.Solve(context.Background(), g); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if solver.Stats().SolutionsFound != 1 {
		t.Errorf("SolutionsFound = %d, want 1 under FirstSolution", solver.Stats().SolutionsFound)
	}
}

func TestSolveHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	g, _ := sudokuGraph(9, nil)
	solver := NewSolver(Config{}) // no pruning: plenty of search left to cancel
	_, err := solver.Solve(ctx, g)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Solve err = %v, want context.DeadlineExceeded", err)
	}
}

func TestSolverStatsPopulated(t *testing.T) {
	g, _ := sudokuGraph(4, map[int]int{0: 1})
	solver := NewSolver(DefaultConfig())
	if _, err := solver.Solve(context.Background(), g); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	st := solver.Stats()
	if st.Operations == 0 || st.Assignments == 0 {
		t.Errorf("counters not populated: %+v", st)
	}
	if st.FirstSolutionOps == 0 || st.FirstSolutionOps > st.Operations {
		t.Errorf("FirstSolutionOps = %d, Operations = %d", st.FirstSolutionOps, st.Operations)
	}
	if st.PeakTrailSize == 0 {
		t.Error("PeakTrailSize not tracked")
	}
	if st.BestWeight != 1 {
		t.Errorf("BestWeight = %v, want 1 for a boolean problem", st.BestWeight)
	}
}
