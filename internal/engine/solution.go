// Package engine implements the search core: the solution/move contract, the
// simulated-annealing driver, the parallel tempering orchestrator, and the
// worker supervisor that runs either of them to an iteration budget or an
// interrupt.
package engine

import "math/rand"

// RandomMover is the capability contract the engine consumes. T is the
// concrete solution type implementing it; the F-bounded shape (T implements
// RandomMover[T]) lets Clone return a concrete T instead of an interface,
// so the driver's best-so-far tracking never needs a type assertion and the
// compiler can specialize the drivers' bodies (RunSimulatedAnnealing,
// RunTempering) per instantiation.
//
// Implementations own their own undo bookkeeping: ApplyRandomMove must
// record enough state that a single following UndoLastMove restores the
// solution (including its cost) exactly. Calling UndoLastMove twice in a
// row without an intervening ApplyRandomMove is undefined.
type RandomMover[T any] interface {
	// Cost returns the current cached cost. Must be O(1) and consistent
	// with the decision variables between moves.
	Cost() float64

	// Clone returns an independent deep copy. The immutable instance data
	// backing the solution may be shared between clones.
	Clone() T

	// Persist writes the solution to directory, named after the instance
	// and current cost.
	Persist(directory string) error

	// ApplyRandomMove mutates the solution to a uniformly-sampled neighbor
	// and records an undo token for it.
	ApplyRandomMove(rng *rand.Rand)

	// UndoLastMove inverts the most recently applied move.
	UndoLastMove()
}
