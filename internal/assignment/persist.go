package assignment

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Persist writes the solution to {directory}/{instance-name}-{cost:.4}.out
// per spec.md §6: a line-1 count of non-empty groups, then one line per
// non-empty group: project_index mentor_index group_size student indices.
func (s *Solution) Persist(directory string) error {
	groups := make(map[int][]int)
	for st, p := range s.studentProject {
		groups[p] = append(groups[p], st)
	}

	nonEmpty := make([]int, 0, len(groups))
	for p := range groups {
		nonEmpty = append(nonEmpty, p)
	}
	sort.Ints(nonEmpty)

	path := filepath.Join(directory, fmt.Sprintf("%s-%.4f.out", s.instance.Name, s.cost))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("assignment: creating output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d\n", len(nonEmpty))
	for _, p := range nonEmpty {
		members := groups[p]
		sort.Ints(members)
		fmt.Fprintf(w, "%d %d %d", p, s.projectMentor[p], len(members))
		for _, st := range members {
			fmt.Fprintf(w, " %d", st)
		}
		fmt.Fprint(w, "\n")
	}
	return w.Flush()
}
