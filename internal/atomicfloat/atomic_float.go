// Package atomicfloat provides a lock-free float64 for the engine's
// telemetry gauges (per-worker best cost, current temperature) that are
// written frequently by a worker goroutine and read occasionally by the
// dashboard/metrics layer.
package atomicfloat

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Float64 encapsulates a float64 for non-locking atomic operations. As with
// any use of unsafe, keep critical regions short: no unsafe pointer derived
// from &f.val should be retained across a statement that could let the GC
// move the backing Float64, since a moved value would leave a stale
// pointer behind.
type Float64 struct {
	val float64
}

// New returns a Float64 initialized to val.
func New(val float64) *Float64 {
	return &Float64{val: val}
}

// Load atomically reads the value.
func (f *Float64) Load() float64 {
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(&f.val)))
	return math.Float64frombits(bits)
}

// Store atomically overwrites the value, retrying the compare-and-swap
// against whatever the current value turns out to be. Unlike an add,
// an unconditional overwrite is commutative with a concurrent overwrite
// (the last one to land wins either way), so retrying on a failed CAS
// introduces no logical error here.
func (f *Float64) Store(newVal float64) {
	for {
		old := atomic.LoadUint64((*uint64)(unsafe.Pointer(&f.val)))
		if atomic.CompareAndSwapUint64((*uint64)(unsafe.Pointer(&f.val)), old, math.Float64bits(newVal)) {
			return
		}
	}
}

// Add atomically adds addend to the value. A single attempt only: if the
// value changed underneath the read, the caller should decide what to do
// (recompute, drop the update) rather than have Add paper over it by
// retrying against a value it never saw.
func (f *Float64) Add(addend float64) (newVal float64, succeeded bool) {
	old := f.Load()
	newVal = old + addend
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&f.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}

// UpdateMin retries until it either installs candidate (because it was
// lower than the current value) or observes a current value already at or
// below candidate. Safe to retry, unlike Add: whichever goroutine's
// candidate is lower always wins regardless of interleaving, so the loop
// converges to the true minimum rather than silently dropping an update.
func (f *Float64) UpdateMin(candidate float64) (updated bool) {
	for {
		old := f.Load()
		if candidate >= old {
			return false
		}
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&f.val)),
			math.Float64bits(old),
			math.Float64bits(candidate)) {
			return true
		}
	}
}
