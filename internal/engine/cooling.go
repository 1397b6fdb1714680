package engine

import "math"

// CoolingSchedule selects how temperature decreases between SA iterations
// (or how it is distributed across a tempering ladder, where it is only
// used to generate the rung temperatures, not to cool anything over time).
type CoolingSchedule int

const (
	// Linear decrements temperature by a constant c = (start-end)/n per step.
	Linear CoolingSchedule = iota
	// Exponential decays temperature by a constant ratio c = (end/start)^(1/n) per step.
	Exponential
)

func (c CoolingSchedule) String() string {
	switch c {
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// coolingFunc is a pure temperature-update function, built once per SA (or
// tempering ladder) invocation from the start/end temperatures and the
// iteration budget used to space them.
type coolingFunc func(current float64) float64

// buildCoolingSchedule returns the temperature-update function for the
// given schedule, start/end temperatures and iteration count n. Floating
// point drift may leave the final temperature slightly off end; this is
// tolerated per the calibration contract.
func buildCoolingSchedule(schedule CoolingSchedule, start, end float64, n int) coolingFunc {
	switch schedule {
	case Exponential:
		c := math.Pow(end/start, 1.0/float64(n))
		return func(current float64) float64 {
			return current * c
		}
	default: // Linear
		c := (start - end) / float64(n)
		return func(current float64) float64 {
			return current - c
		}
	}
}
