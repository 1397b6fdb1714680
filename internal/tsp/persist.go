package tsp

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// Persist writes the solution to {directory}/{instance-name}-{cost:.4}.out:
// one line with the space-separated 0-based city permutation, then a
// second line with the tour cost formatted to 4 decimal places.
func (s *Solution) Persist(directory string) error {
	path := filepath.Join(directory, fmt.Sprintf("%s-%.4f.out", s.instance.Name, s.cost))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tsp: creating output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, city := range s.tour {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%d", city)
	}
	fmt.Fprint(w, "\n")
	fmt.Fprintf(w, "%.4f\n", s.cost)
	return w.Flush()
}
