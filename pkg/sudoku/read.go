package sudoku

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Read parses the plain-text puzzle format: lines starting with '#'
// are comments, the first data line is the grid size, and every
// following data line is a space-separated "row col value" triple for
// one given cell. The parsed puzzle is validated exactly as by New.
//
// Example:
//
//	# 4x4 puzzle, three givens
//	4
//	1 1 1
//	1 2 2
//	2 1 3
func Read(r io.Reader) (*Puzzle, error) {
	scanner := bufio.NewScanner(r)
	size := 0
	var givens []Cell
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if size == 0 {
			if len(fields) != 1 {
				return nil, fmt.Errorf("sudoku: line %d: want a single grid size, got %q", lineNo, line)
			}
			n, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, fmt.Errorf("sudoku: line %d: bad grid size %q: %w", lineNo, fields[0], err)
			}
			size = n
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("sudoku: line %d: want \"row col value\", got %q", lineNo, line)
		}
		var nums [3]int
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("sudoku: line %d: bad number %q: %w", lineNo, f, err)
			}
			nums[i] = n
		}
		givens = append(givens, Cell{Row: nums[0], Col: nums[1], Value: nums[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sudoku: reading puzzle: %w", err)
	}
	if size == 0 {
		return nil, fmt.Errorf("sudoku: no grid size found in input")
	}
	return New(size, givens)
}
