package assignment

// computeCost recomputes the full multi-term objective from scratch
// against the current decision variables, per the formula normative for
// this adapter. Called after every move rather than maintained
// incrementally: simpler to get right than tracking per-term deltas
// through both move kinds, at the cost of a full pass per move (linear in
// Students+Projects+Mentors plus the pairwise cohesion sum, quadratic in
// group size) instead of O(1).
func (s *Solution) computeCost() float64 {
	inst := s.instance

	groups := make([][]int, inst.Projects)
	for st, p := range s.studentProject {
		groups[p] = append(groups[p], st)
	}

	var gradeSum float64
	nonEmptyGroups := 0
	var cohesionSum float64

	for p, members := range groups {
		if len(members) == 0 {
			continue
		}
		nonEmptyGroups++

		topic := inst.ProjectTopics[p]
		var topicSum float64
		for _, st := range members {
			topicSum += inst.Grades[st][topic]
		}
		gradeSum += topicSum / float64(len(members))

		cohesionSum += groupCohesion(members, inst)
	}

	avgGrade := 0.0
	if nonEmptyGroups > 0 {
		avgGrade = gradeSum / float64(nonEmptyGroups)
	}
	perTerm := inst.Weights.CPer * (10 - avgGrade)

	avgCohesion := 0.0
	if inst.Students > 0 {
		avgCohesion = cohesionSum / float64(inst.Students)
	}
	cohTerm := inst.Weights.CCoh * (10 - avgCohesion)

	studentsSupervised := make([]int, inst.Mentors)
	matched := make([]int, inst.Mentors)
	mismatched := make([]int, inst.Mentors)
	for p := 0; p < inst.Projects; p++ {
		m := s.projectMentor[p]
		studentsSupervised[m] += len(groups[p])
		topic := inst.ProjectTopics[p]
		if inst.MentorProficient(m, topic) {
			matched[m]++
		} else {
			mismatched[m]++
		}
	}

	var workSumSquares float64
	for m := 0; m < inst.Mentors; m++ {
		work := inst.Weights.CMStu*float64(studentsSupervised[m]) +
			inst.Weights.CMProf*float64(matched[m]) +
			inst.Weights.CMNP*float64(mismatched[m])
		workSumSquares += work * work
	}
	workTerm := 0.0
	if inst.Mentors > 0 {
		workTerm = inst.Weights.CWork * (workSumSquares / float64(inst.Mentors))
	}

	return perTerm + cohTerm + workTerm
}

// groupCohesion computes (1/(k-1)) * sum of pairwise preferences within a
// multi-student group, or the self-preference (default 5) for a singleton.
func groupCohesion(members []int, inst *Instance) float64 {
	k := len(members)
	if k <= 1 {
		if k == 0 {
			return 0
		}
		return float64(inst.Preference(members[0], members[0]))
	}

	var sum float64
	for _, i := range members {
		for _, j := range members {
			if i == j {
				continue
			}
			sum += float64(inst.Preference(i, j))
		}
	}
	return sum / float64(k-1)
}
