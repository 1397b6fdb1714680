package assignment

import (
	"math/rand"
)

// defaultPreference is the preference value assumed when a student never
// listed a preference for another (or for themselves, in a singleton
// group).
const defaultPreference = 5

type moveKind int

const (
	moveStudentSwap moveKind = iota
	moveMentorChange
)

// undoToken is the tagged variant describing the most recently applied
// move, sized to invert either move kind without recomputing from
// scratch. studentB == -1 means the student-swap move moved studentA into
// an empty slot rather than trading places with another student.
type undoToken struct {
	kind moveKind

	studentA, studentB           int
	prevProjectA, prevProjectB   int

	project    int
	prevMentor int

	prevCost float64
}

// Solution is the mutable assignment candidate: which project each
// student is in, which mentor each project has, a cached cost, and the
// undo token for the last applied move.
type Solution struct {
	instance *Instance

	// studentProject[s] is the project index student s is currently
	// assigned to.
	studentProject []int
	// projectMentor[p] is the mentor index assigned to project p.
	projectMentor []int

	cost     float64
	lastUndo undoToken
}

// newRandomSolution builds a feasible random initial assignment: students
// are shuffled and greedily packed into projects respecting caps, mentors
// are assigned uniformly at random.
func newRandomSolution(inst *Instance) *Solution {
	rng := rand.New(rand.NewSource(1))

	order := rng.Perm(inst.Students)
	studentProject := make([]int, inst.Students)
	remaining := make([]int, inst.Projects)
	copy(remaining, inst.ProjectCaps)

	p := 0
	for _, s := range order {
		for remaining[p] == 0 {
			p = (p + 1) % inst.Projects
		}
		studentProject[s] = p
		remaining[p]--
	}

	projectMentor := make([]int, inst.Projects)
	for i := range projectMentor {
		if inst.Mentors > 0 {
			projectMentor[i] = rng.Intn(inst.Mentors)
		}
	}

	sol := &Solution{
		instance:       inst,
		studentProject: studentProject,
		projectMentor:  projectMentor,
	}
	sol.cost = sol.computeCost()
	return sol
}

// Cost returns the cached cost. O(1): the cache is refreshed by every move.
func (s *Solution) Cost() float64 {
	return s.cost
}

// Clone returns an independent deep copy sharing the immutable Instance.
func (s *Solution) Clone() *Solution {
	clone := &Solution{
		instance:       s.instance,
		studentProject: append([]int(nil), s.studentProject...),
		projectMentor:  append([]int(nil), s.projectMentor...),
		cost:           s.cost,
		lastUndo:       s.lastUndo,
	}
	return clone
}

// ApplyRandomMove picks uniformly between a student-swap move and a
// mentor-change move and applies it, recomputing the cached cost and
// recording an undo token.
func (s *Solution) ApplyRandomMove(rng *rand.Rand) {
	if rng.Intn(2) == 0 {
		s.applyStudentSwap(rng)
	} else {
		s.applyMentorChange(rng)
	}
}

// UndoLastMove inverts the most recently applied move.
func (s *Solution) UndoLastMove() {
	t := s.lastUndo
	switch t.kind {
	case moveMentorChange:
		s.projectMentor[t.project] = t.prevMentor
	default:
		s.studentProject[t.studentA] = t.prevProjectA
		if t.studentB >= 0 {
			s.studentProject[t.studentB] = t.prevProjectB
		}
	}
	s.cost = t.prevCost
}

// applyStudentSwap implements the {student-swap(project A, student a,
// project B, student-or-none b)} undo variant from spec.md §3: pick a
// student and a target project; if the target project already has a
// member, trade places with one of them (always capacity-safe, since group
// sizes are unchanged); otherwise move the student into the target
// project only if it has room, else treat the move as an infeasible no-op
// per spec.md §7.
func (s *Solution) applyStudentSwap(rng *rand.Rand) {
	prevCost := s.cost
	a := rng.Intn(s.instance.Students)
	projA := s.studentProject[a]
	projB := rng.Intn(s.instance.Projects)

	if projB == projA {
		s.lastUndo = undoToken{kind: moveStudentSwap, studentA: a, studentB: -1, prevProjectA: projA, prevCost: prevCost}
		return
	}

	members := s.groupMembers(projB)
	if len(members) > 0 {
		b := members[rng.Intn(len(members))]
		s.studentProject[a], s.studentProject[b] = projB, projA
		s.cost = s.computeCost()
		s.lastUndo = undoToken{kind: moveStudentSwap, studentA: a, studentB: b, prevProjectA: projA, prevProjectB: projB, prevCost: prevCost}
		return
	}

	if s.groupSize(projB) >= s.instance.ProjectCaps[projB] {
		// Infeasible: target is at (or over) its cap boundary with no
		// current member to trade with. Leave unchanged, still an
		// iteration.
		s.lastUndo = undoToken{kind: moveStudentSwap, studentA: a, studentB: -1, prevProjectA: projA, prevCost: prevCost}
		return
	}

	s.studentProject[a] = projB
	s.cost = s.computeCost()
	s.lastUndo = undoToken{kind: moveStudentSwap, studentA: a, studentB: -1, prevProjectA: projA, prevCost: prevCost}
}

// applyMentorChange implements the {mentor-change(project, old mentor, new
// mentor)} undo variant: reassign a random project's mentor uniformly.
func (s *Solution) applyMentorChange(rng *rand.Rand) {
	if s.instance.Mentors == 0 {
		return
	}
	prevCost := s.cost
	p := rng.Intn(s.instance.Projects)
	prevMentor := s.projectMentor[p]
	s.projectMentor[p] = rng.Intn(s.instance.Mentors)
	s.cost = s.computeCost()
	s.lastUndo = undoToken{kind: moveMentorChange, project: p, prevMentor: prevMentor, prevCost: prevCost}
}

// groupMembers returns the student indices currently assigned to project p.
func (s *Solution) groupMembers(p int) []int {
	var members []int
	for st, proj := range s.studentProject {
		if proj == p {
			members = append(members, st)
		}
	}
	return members
}

func (s *Solution) groupSize(p int) int {
	n := 0
	for _, proj := range s.studentProject {
		if proj == p {
			n++
		}
	}
	return n
}
