package assignment

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// trivialInstance builds the E1 scenario from spec.md §8: S=1, P=1, M=1,
// T=1, cap=1, grade=10.0, no prefs, one proficiency matching the topic.
func trivialInstance() *Instance {
	return &Instance{
		Name:          "trivial",
		Students:      1,
		Projects:      1,
		Mentors:       1,
		Topics:        1,
		Weights:       Weights{CPer: 1, CCoh: 1, CWork: 1, CMStu: 1, CMProf: 1, CMNP: 1},
		ProjectCaps:   []int{1},
		ProjectTopics: []int{0},
		preferences:   [][]int{{defaultPreference}},
		Grades:        [][]float64{{10.0}},
		proficient:    [][]bool{{true}},
	}
}

// smallInstance builds a 4-student, 2-project, 2-mentor, 2-topic instance
// with caps loose enough to exercise both swap variants.
func smallInstance() *Instance {
	prefs := make([][]int, 4)
	for i := range prefs {
		prefs[i] = make([]int, 4)
		for j := range prefs[i] {
			prefs[i][j] = defaultPreference
		}
	}
	return &Instance{
		Name:          "small",
		Students:      4,
		Projects:      2,
		Mentors:       2,
		Topics:        2,
		Weights:       Weights{CPer: 1, CCoh: 1, CWork: 0.1, CMStu: 1, CMProf: 1, CMNP: 2},
		ProjectCaps:   []int{3, 3},
		ProjectTopics: []int{0, 1},
		preferences:   prefs,
		Grades: [][]float64{
			{8, 6}, {7, 9}, {5, 5}, {9, 4},
		},
		proficient: [][]bool{
			{true, false},
			{false, true},
		},
	}
}

func TestE1TrivialAssignment(t *testing.T) {
	Convey("Given the E1 trivial assignment instance", t, func() {
		sol := newRandomSolution(trivialInstance())

		Convey("The initial cost matches the formula", func() {
			// per: 1*(10-10)=0, coh: 1*(10-5)=5 (singleton default pref),
			// work: 1*((1*1 + 1*1 + 1*0)^2)/1 = 4.
			So(sol.Cost(), ShouldAlmostEqual, 9.0, 1e-9)
		})

		Convey("100 random moves leave the cost unchanged", func() {
			rng := rand.New(rand.NewSource(42))
			start := sol.Cost()
			for i := 0; i < 100; i++ {
				sol.ApplyRandomMove(rng)
			}
			// With one student and one project, every student-swap is a
			// same-project no-op and every mentor-change picks the same
			// sole mentor, so cost cannot move.
			So(sol.Cost(), ShouldAlmostEqual, start, 1e-9)
		})
	})
}

func TestUndoIsLeftInverse(t *testing.T) {
	Convey("Given a small instance", t, func() {
		rng := rand.New(rand.NewSource(7))

		Convey("apply then undo restores decision variables and cost", func() {
			for trial := 0; trial < 200; trial++ {
				sol := newRandomSolution(smallInstance())
				beforeStudents := append([]int(nil), sol.studentProject...)
				beforeMentors := append([]int(nil), sol.projectMentor...)
				beforeCost := sol.Cost()

				sol.ApplyRandomMove(rng)
				sol.UndoLastMove()

				So(sol.studentProject, ShouldResemble, beforeStudents)
				So(sol.projectMentor, ShouldResemble, beforeMentors)
				So(math.Abs(sol.Cost()-beforeCost), ShouldBeLessThan, 1e-9)
			}
		})
	})
}

func TestCostConsistency(t *testing.T) {
	Convey("Given a small instance under repeated random moves", t, func() {
		sol := newRandomSolution(smallInstance())
		rng := rand.New(rand.NewSource(99))

		Convey("the cached cost always matches a from-scratch recomputation", func() {
			for i := 0; i < 500; i++ {
				sol.ApplyRandomMove(rng)
				cached := sol.Cost()
				fresh := sol.computeCost()
				So(math.Abs(cached-fresh), ShouldBeLessThan, 1e-6)
			}
		})
	})
}

func TestCapacityNeverExceeded(t *testing.T) {
	Convey("Given a small instance under many random moves", t, func() {
		sol := newRandomSolution(smallInstance())
		rng := rand.New(rand.NewSource(3))

		Convey("no project ever exceeds its capacity", func() {
			for i := 0; i < 1000; i++ {
				sol.ApplyRandomMove(rng)
				for p := 0; p < sol.instance.Projects; p++ {
					So(sol.groupSize(p), ShouldBeLessThanOrEqualTo, sol.instance.ProjectCaps[p])
				}
			}
		})
	})
}

func TestReachability(t *testing.T) {
	Convey("Given the small instance's student-project assignment space", t, func() {
		Convey("student-swap moves connect every feasible assignment reachable by BFS", func() {
			inst := smallInstance()
			start := newRandomSolution(inst)

			type state string
			key := func(assign []int) state {
				var b []byte
				for _, a := range assign {
					b = append(b, byte('0'+a))
				}
				return state(b)
			}

			visited := map[state]bool{key(start.studentProject): true}
			queue := [][]int{append([]int(nil), start.studentProject...)}

			for len(queue) > 0 && len(visited) < 50 {
				cur := queue[0]
				queue = queue[1:]

				// Every pairwise swap of two students' projects is reachable
				// in one student-swap move (swap-with-member variant) and
				// stays capacity-feasible since group sizes are unchanged.
				for i := 0; i < inst.Students; i++ {
					for j := i + 1; j < inst.Students; j++ {
						next := append([]int(nil), cur...)
						next[i], next[j] = next[j], next[i]
						k := key(next)
						if !visited[k] {
							visited[k] = true
							queue = append(queue, next)
						}
					}
				}
			}

			So(len(visited), ShouldBeGreaterThan, 1)
		})
	})
}
