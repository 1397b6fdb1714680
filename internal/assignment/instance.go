// Package assignment implements the student/project/mentor assignment
// adapter: the normative problem instantiation for the search engine,
// reading an instance file, generating a feasible random initial solution,
// and exposing the student-swap and mentor-change local moves.
package assignment

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrMalformedHeader is returned when the S/P/M/T header line or the
	// cost-weight line cannot be parsed.
	ErrMalformedHeader = errors.New("assignment: malformed instance header")
	// ErrTruncatedInstance is returned when the file ends before all
	// declared sections have been read.
	ErrTruncatedInstance = errors.New("assignment: truncated instance data")
	// ErrInfeasibleInstance is returned when the declared project
	// capacities cannot accommodate every student.
	ErrInfeasibleInstance = errors.New("assignment: project capacities cannot seat every student")
)

// Weights holds the six cost-weighting scalars from instance line 2.
type Weights struct {
	CPer   float64
	CCoh   float64
	CWork  float64
	CMStu  float64
	CMProf float64
	CMNP   float64
}

// Instance is the immutable, shared-by-all-workers problem data: student
// count, project count, mentor count, topic count, cost weights, and the
// per-entity static data the cost function reads.
type Instance struct {
	Name string

	Students int
	Projects int
	Mentors  int
	Topics   int

	Weights Weights

	// ProjectCaps[p] is the maximum group size for project p.
	ProjectCaps []int
	// ProjectTopics[p] is the topic index project p is taught on.
	ProjectTopics []int

	// preferences[i][j] is student i's preference for student j, default 5.
	preferences [][]int
	// Grades[s][t] is student s's grade on topic t.
	Grades [][]float64
	// proficient[m][t] reports whether mentor m is proficient on topic t.
	proficient [][]bool
}

// Preference returns student i's preference for student j (5 if unset).
func (inst *Instance) Preference(i, j int) int {
	return inst.preferences[i][j]
}

// MentorProficient reports whether mentor m is proficient on topic.
func (inst *Instance) MentorProficient(m, topic int) bool {
	return inst.proficient[m][topic]
}

// ReadInstance parses an instance file at path into an Instance and
// constructs a feasible random initial Solution for it. name, if empty,
// defaults to the file's base name.
func ReadInstance(path string, name string) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assignment: opening instance file: %w", err)
	}
	defer f.Close()

	if name == "" {
		name = filepath.Base(path)
	}

	inst, err := parseInstance(bufio.NewReader(f), name)
	if err != nil {
		return nil, err
	}

	return newRandomSolution(inst), nil
}

type lineScanner struct {
	sc *bufio.Scanner
}

func newLineScanner(r io.Reader) *lineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &lineScanner{sc: sc}
}

// next returns the next non-blank-stripped line (blank separator lines are
// returned as empty strings, not skipped, since the format uses them as
// explicit section delimiters the caller consumes by position).
func (l *lineScanner) next() (string, bool) {
	if !l.sc.Scan() {
		return "", false
	}
	return l.sc.Text(), true
}

func parseInstance(r io.Reader, name string) (*Instance, error) {
	ls := newLineScanner(r)

	var s, p, m, t int
	line, ok := ls.next()
	if !ok {
		return nil, fmt.Errorf("%w: missing header line", ErrTruncatedInstance)
	}
	if _, err := fmt.Sscanf(line, "%d %d %d %d", &s, &p, &m, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	line, ok = ls.next()
	if !ok {
		return nil, fmt.Errorf("%w: missing weight line", ErrTruncatedInstance)
	}
	var w Weights
	if _, err := fmt.Sscanf(line, "%f %f %f %f %f %f", &w.CPer, &w.CCoh, &w.CWork, &w.CMStu, &w.CMProf, &w.CMNP); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	if _, ok := ls.next(); !ok { // blank separator
		return nil, fmt.Errorf("%w: missing separator before projects", ErrTruncatedInstance)
	}

	caps := make([]int, p)
	topics := make([]int, p)
	for i := 0; i < p; i++ {
		line, ok = ls.next()
		if !ok {
			return nil, fmt.Errorf("%w: truncated project list", ErrTruncatedInstance)
		}
		if _, err := fmt.Sscanf(line, "%d %d", &caps[i], &topics[i]); err != nil {
			return nil, fmt.Errorf("%w: bad project line %q: %v", ErrMalformedHeader, line, err)
		}
	}

	prefs := make([][]int, s)
	for i := range prefs {
		prefs[i] = make([]int, s)
		for j := range prefs[i] {
			prefs[i][j] = defaultPreference
		}
	}
	for i := 0; i < s; i++ {
		if _, ok := ls.next(); !ok { // blank separator
			return nil, fmt.Errorf("%w: missing separator before student %d prefs", ErrTruncatedInstance, i)
		}
		line, ok = ls.next()
		if !ok {
			return nil, fmt.Errorf("%w: missing preference count for student %d", ErrTruncatedInstance, i)
		}
		var k int
		if _, err := fmt.Sscanf(line, "%d", &k); err != nil {
			return nil, fmt.Errorf("%w: bad preference count %q: %v", ErrMalformedHeader, line, err)
		}
		for j := 0; j < k; j++ {
			line, ok = ls.next()
			if !ok {
				return nil, fmt.Errorf("%w: truncated preferences for student %d", ErrTruncatedInstance, i)
			}
			var other, pref int
			if _, err := fmt.Sscanf(line, "%d %d", &other, &pref); err != nil {
				return nil, fmt.Errorf("%w: bad preference line %q: %v", ErrMalformedHeader, line, err)
			}
			prefs[i][other] = pref
		}
	}

	if _, ok := ls.next(); !ok { // blank separator
		return nil, fmt.Errorf("%w: missing separator before grades", ErrTruncatedInstance)
	}
	grades := make([][]float64, s)
	for i := 0; i < s; i++ {
		line, ok = ls.next()
		if !ok {
			return nil, fmt.Errorf("%w: truncated grades", ErrTruncatedInstance)
		}
		grades[i] = make([]float64, t)
		fields := splitFields(line)
		if len(fields) != t {
			return nil, fmt.Errorf("%w: student %d has %d grades, want %d", ErrMalformedHeader, i, len(fields), t)
		}
		for j, field := range fields {
			if _, err := fmt.Sscanf(field, "%f", &grades[i][j]); err != nil {
				return nil, fmt.Errorf("%w: bad grade %q: %v", ErrMalformedHeader, field, err)
			}
		}
	}

	if _, ok := ls.next(); !ok { // blank separator
		return nil, fmt.Errorf("%w: missing separator before mentors", ErrTruncatedInstance)
	}
	proficient := make([][]bool, m)
	for i := 0; i < m; i++ {
		proficient[i] = make([]bool, t)
		line, ok = ls.next()
		if !ok {
			return nil, fmt.Errorf("%w: truncated mentor list", ErrTruncatedInstance)
		}
		fields := splitFields(line)
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: empty mentor line", ErrMalformedHeader)
		}
		var k int
		if _, err := fmt.Sscanf(fields[0], "%d", &k); err != nil {
			return nil, fmt.Errorf("%w: bad mentor proficiency count %q: %v", ErrMalformedHeader, fields[0], err)
		}
		if len(fields)-1 < k {
			return nil, fmt.Errorf("%w: mentor %d declares %d proficiencies but has %d", ErrTruncatedInstance, i, k, len(fields)-1)
		}
		for j := 0; j < k; j++ {
			var raw int
			if _, err := fmt.Sscanf(fields[j+1], "%d", &raw); err != nil {
				return nil, fmt.Errorf("%w: bad mentor topic %q: %v", ErrMalformedHeader, fields[j+1], err)
			}
			// Proficiency entries are 1-based topic numbers; non-positive
			// values are padding/sentinels and are ignored, per §6.
			topic := raw - 1
			if raw > 0 && topic < t {
				proficient[i][topic] = true
			}
		}
	}

	capSum := 0
	for _, c := range caps {
		capSum += c
	}
	if capSum < s {
		return nil, ErrInfeasibleInstance
	}

	return &Instance{
		Name:          name,
		Students:      s,
		Projects:      p,
		Mentors:       m,
		Topics:        t,
		Weights:       w,
		ProjectCaps:   caps,
		ProjectTopics: topics,
		preferences:   prefs,
		Grades:        grades,
		proficient:    proficient,
	}, nil
}

// splitFields is a tiny whitespace tokenizer kept local to avoid pulling in
// strings.Fields for what's otherwise a one-line helper used in several
// parse loops above.
func splitFields(line string) []string {
	var fields []string
	start := -1
	for i, r := range line {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				fields = append(fields, line[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, line[start:])
	}
	return fields
}
