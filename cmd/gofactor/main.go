// Command gofactor solves Sudoku puzzles (and, through the library,
// arbitrary weighted CSPs) from plain-text init files.
//
// Usage:
//
//	gofactor puzzle.txt
//	gofactor --ac3=false --mcv=false --stats puzzle.txt
//	gofactor --workers 4 a.txt b.txt c.txt
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/gitrdm/gofactor/internal/parallel"
	"github.com/gitrdm/gofactor/pkg/csp"
	"github.com/gitrdm/gofactor/pkg/sudoku"
)

var (
	useMCV     bool
	useAC3     bool
	bestWeight bool
	showStats  bool
	workers    int
	cpuProfile bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gofactor <puzzle-file> [more puzzle files...]",
		Short: "Solve Sudoku puzzles by backtracking with AC-3 and MCV",
		Long: `gofactor reads one or more puzzle init files and solves them.

A puzzle file starts with the grid size (a perfect square), followed by
"row col value" triples for the given cells. Lines starting with '#'
are comments.`,
		Args: cobra.MinimumNArgs(1),
		RunE: run,
	}
	rootCmd.Flags().BoolVarP(&useMCV, "mcv", "m", true, "Use the most-constrained-variable heuristic")
	rootCmd.Flags().BoolVarP(&useAC3, "ac3", "a", true, "Propagate arc consistency after each assignment")
	rootCmd.Flags().BoolVar(&bestWeight, "best", false, "Search the whole space for the best-weight assignment")
	rootCmd.Flags().BoolVarP(&showStats, "stats", "s", false, "Print search statistics")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 1, "Concurrent puzzles when given several files (0 = all cores)")
	rootCmd.Flags().BoolVar(&cpuProfile, "cpuprofile", false, "Write a CPU profile to the current directory")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if cpuProfile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	if len(args) == 1 {
		out, err := solveFile(cmd.Context(), args[0])
		fmt.Print(out)
		return err
	}

	// Batch mode: independent solves run side by side, output is
	// collected per file so results never interleave.
	outputs := make([]string, len(args))
	errs := make([]error, len(args))
	var mu sync.Mutex
	pool := parallel.New(workers)
	for i, path := range args {
		i, path := i, path
		pool.Submit(func() {
			out, err := solveFile(cmd.Context(), path)
			mu.Lock()
			outputs[i], errs[i] = out, err
			mu.Unlock()
		})
	}
	pool.Wait()

	var failed error
	for i := range args {
		fmt.Print(outputs[i])
		if errs[i] != nil {
			failed = errs[i]
		}
	}
	return failed
}

func solveFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	puz, err := sudoku.Read(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %dx%d puzzle, %d givens\n", path, puz.Size, puz.Size, len(puz.Givens))
	sb.WriteString(puz.RenderGivens())

	cfg := csp.Config{UseMCV: useMCV, UseAC3: useAC3}
	if bestWeight {
		cfg.Objective = csp.BestWeight
	}
	model := puz.Model()
	solver := csp.NewSolver(cfg)
	assignment, err := solver.Solve(ctx, model.Graph)
	switch {
	case errors.Is(err, csp.ErrUnsatisfiable):
		sb.WriteString("unsatisfiable: no assignment exists under the rules\n")
	case err != nil:
		return sb.String(), fmt.Errorf("%s: %w", path, err)
	default:
		sb.WriteString("solution:\n")
		sb.WriteString(model.Render(assignment))
	}

	if showStats {
		st := solver.Stats()
		fmt.Fprintf(&sb, "operations=%d assignments=%d backtracks=%d time=%s\n",
			st.Operations, st.Assignments, st.Backtracks, st.SearchTime)
		if st.SolutionsFound > 0 {
			fmt.Fprintf(&sb, "first solution after %d operations (mcv=%v ac3=%v)\n",
				st.FirstSolutionOps, useMCV, useAC3)
		}
	}
	sb.WriteString("\n")
	return sb.String(), nil
}
