// Package tsp implements the permutation/tour-minimization adapter: an
// instance is a set of 2D points, a solution is a cyclic permutation over
// them, and the cost is the closed tour length. Grounded in the pair-swap
// and segment-reverse (2-opt-style) move vocabulary spec.md §3 names for
// this adapter.
package tsp

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrMalformedHeader is returned when the city-count header line
	// cannot be parsed.
	ErrMalformedHeader = errors.New("tsp: malformed instance header")
	// ErrTruncatedInstance is returned when fewer coordinate lines are
	// present than the header declares.
	ErrTruncatedInstance = errors.New("tsp: truncated instance data")
)

// Point is one city's coordinates.
type Point struct {
	X, Y float64
}

// Instance is the immutable, shared-by-all-workers city set.
type Instance struct {
	Name   string
	Points []Point
}

// ReadInstance parses an instance file at path (N on line 1, N lines of
// "x y" thereafter) and constructs a random initial tour over it.
func ReadInstance(path string, name string) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tsp: opening instance file: %w", err)
	}
	defer f.Close()

	if name == "" {
		name = path
	}

	inst, err := parseInstance(f, name)
	if err != nil {
		return nil, err
	}
	return newRandomSolution(inst), nil
}

func parseInstance(f *os.File, name string) (*Instance, error) {
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: missing city count", ErrTruncatedInstance)
	}
	var n int
	if _, err := fmt.Sscanf(sc.Text(), "%d", &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	points := make([]Point, n)
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: got %d of %d city lines", ErrTruncatedInstance, i, n)
		}
		var p Point
		if _, err := fmt.Sscanf(sc.Text(), "%f %f", &p.X, &p.Y); err != nil {
			return nil, fmt.Errorf("%w: bad city line %q: %v", ErrMalformedHeader, sc.Text(), err)
		}
		points[i] = p
	}

	return &Instance{Name: name, Points: points}, nil
}
