package engine

import "sync/atomic"

// StopSignal is a process-wide, monotonic stop flag: once raised it never
// lowers. Reads inside the hot loop use relaxed ordering (the underlying
// atomic.Bool load); every write goes through Raise (from the interrupt
// handler, the supervisor's context watcher, or a caller) and is itself
// atomic, so no additional ordering is required for correctness,
// only for hot-path branch cost, which is why the driver only polls it at
// status-check intervals rather than every iteration.
type StopSignal struct {
	flag atomic.Bool
}

// NewStopSignal returns a freshly lowered stop signal.
func NewStopSignal() *StopSignal {
	return &StopSignal{}
}

// Raise sets the signal. Safe to call more than once or concurrently.
func (s *StopSignal) Raise() {
	s.flag.Store(true)
}

// Raised reports whether the signal has been set.
func (s *StopSignal) Raised() bool {
	return s.flag.Load()
}

// earlyReturnTimes is how many consecutive status checks must observe the
// same cost before a plateau is declared.
const earlyReturnTimes = 5

// floatPrecision is the tolerance below which two costs are considered equal
// for plateau detection.
const floatPrecision = 1e-6

// plateauDetector is per-worker: it tracks the cost seen at the previous
// status check and counts consecutive checks within floatPrecision of each
// other. After earlyReturnTimes consecutive plateaued checks it signals the
// caller to break out of the current SA round, letting the supervisor's
// outer loop restart with a fresh random run.
type plateauDetector struct {
	lastCost float64
	counter  int
	primed   bool
}

// newPlateauDetector seeds the detector with the solution's cost at the
// start of the round.
func newPlateauDetector(initialCost float64) *plateauDetector {
	return &plateauDetector{lastCost: initialCost, primed: true}
}

// check reports whether the detector has observed earlyReturnTimes
// consecutive near-equal costs and resets its state if the cost moved.
func (p *plateauDetector) check(currentCost float64) (plateaued bool) {
	if p.primed && absDiff(currentCost, p.lastCost) < floatPrecision {
		p.counter++
		if p.counter >= earlyReturnTimes {
			return true
		}
	} else {
		p.counter = 0
		p.lastCost = currentCost
		p.primed = true
	}
	return false
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}
