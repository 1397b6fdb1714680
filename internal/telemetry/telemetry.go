// Package telemetry aggregates per-worker progress reports from the engine
// into gauges a dashboard or metrics endpoint can read concurrently with
// the workers publishing them.
package telemetry

import (
	"sort"
	"sync"

	"annealer/internal/atomicfloat"
	"annealer/internal/engine"
)

// Snapshot is one worker's most recently observed state.
type Snapshot struct {
	Worker   string  `json:"worker"`
	BestCost float64 `json:"best_cost"`
	Round    int     `json:"round"`
}

// Registry aggregates engine.WorkerReport updates into a per-worker
// best-cost gauge backed by atomicfloat, so readers never block a
// publishing worker and vice versa.
type Registry struct {
	mu     sync.RWMutex
	gauges map[string]*atomicfloat.Float64
	rounds map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		gauges: make(map[string]*atomicfloat.Float64),
		rounds: make(map[string]int),
	}
}

// Watch drains reports until the channel is closed, updating the
// registry's gauges. Run it in its own goroutine alongside
// engine.RunSupervisor, which is given the other end of the same channel.
func (r *Registry) Watch(reports <-chan engine.WorkerReport) {
	for report := range reports {
		r.mu.Lock()
		gauge, ok := r.gauges[report.Worker]
		if !ok {
			gauge = atomicfloat.New(report.Cost)
			r.gauges[report.Worker] = gauge
		}
		r.rounds[report.Worker] = report.Round
		r.mu.Unlock()

		gauge.UpdateMin(report.Cost)
	}
}

// Snapshots returns a worker-name-ordered copy of the current state, safe
// to call concurrently with Watch.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Snapshot, 0, len(r.gauges))
	for worker, gauge := range r.gauges {
		out = append(out, Snapshot{Worker: worker, BestCost: gauge.Load(), Round: r.rounds[worker]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Worker < out[j].Worker })
	return out
}
