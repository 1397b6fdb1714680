package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Heuristic selects which search driver each worker runs per round.
type Heuristic int

const (
	// HeuristicSimulatedAnnealing runs RunSimulatedAnnealing each round.
	HeuristicSimulatedAnnealing Heuristic = iota
	// HeuristicTempering runs RunTempering each round, spending the worker's
	// allotted thread budget on its own ladder rather than parallel workers.
	HeuristicTempering
)

// SupervisorConfig bundles the inputs shared by every worker spawned by
// RunSupervisor.
type SupervisorConfig struct {
	Heuristic   Heuristic
	NumWorkers  int
	SA          SAConfig
	Tempering   TemperingConfig
	PersistDir  string
	InstanceTag string
}

// WorkerReport is published by each worker to the supervisor's telemetry
// channel after every round, carrying enough to drive a status line or a
// dashboard row.
type WorkerReport struct {
	Worker string
	Round  int
	Cost   float64
}

// RunSupervisor spawns cfg.NumWorkers workers, each cloning initial and
// looping SA (or tempering) rounds until stop is raised, persisting its
// best solution to cfg.PersistDir after every round. A panic in one
// worker's round is recovered and logged; it does not abort the other
// workers or the supervisor itself, so the errgroup.Group used to fan the
// workers out never actually observes an error return - its only job is
// the coordinated wait.
//
// reports, if non-nil, is offered one WorkerReport per completed round from
// every worker; the send never blocks, so a report is dropped when the
// channel has no room. The caller drains it (a dashboard or metrics sink)
// or passes nil to skip publishing.
func RunSupervisor[T RandomMover[T]](
	ctx context.Context,
	initial T,
	cfg SupervisorConfig,
	stop *StopSignal,
	logger Logger,
	reports chan<- WorkerReport,
) T {
	var mu sync.Mutex
	best := initial.Clone()
	bestCost := best.Cost()

	group, groupCtx := errgroup.WithContext(ctx)

	// Cancelling groupCtx (the caller's interrupt context) raises the same
	// stop signal the workers already poll each round, so there's a single
	// shutdown path whether it's triggered by ctx or by a caller calling
	// stop.Raise() directly.
	go func() {
		<-groupCtx.Done()
		stop.Raise()
	}()

	for i := 0; i < cfg.NumWorkers; i++ {
		id := i
		group.Go(func() error {
			runWorker[T](id, initial.Clone(), cfg, stop, logger, reports, &mu, &best, &bestCost)
			return nil
		})
	}

	_ = group.Wait()

	mu.Lock()
	defer mu.Unlock()
	return best
}

// runWorker is the infinite-loop driver of spec.md §5: it repeatedly runs
// full search rounds against its own clone, persisting and reporting after
// each, until the shared stop signal trips. A panicking round is contained
// so that a bug or pathological instance in one worker cannot take down
// its siblings.
func runWorker[T RandomMover[T]](
	id int,
	solution T,
	cfg SupervisorConfig,
	stop *StopSignal,
	logger Logger,
	reports chan<- WorkerReport,
	mu *sync.Mutex,
	best *T,
	bestCost *float64,
) {
	workerName := fmt.Sprintf("%s-worker-%d", cfg.InstanceTag, id)
	rng := NewWorkerRand()

	for round := 0; !stop.Raised(); round++ {
		roundBest := runRoundSafely[T](solution, cfg, workerName, stop, rng, logger)

		if cfg.PersistDir != "" {
			if err := roundBest.Persist(cfg.PersistDir); err != nil {
				logger.Printf("%s - failed to persist round %d: %v", workerName, round, err)
			}
		}

		mu.Lock()
		if roundBest.Cost() < *bestCost {
			*bestCost = roundBest.Cost()
			*best = roundBest.Clone()
		}
		mu.Unlock()

		if reports != nil {
			select {
			case reports <- WorkerReport{Worker: workerName, Round: round, Cost: roundBest.Cost()}:
			default:
			}
		}

		solution = roundBest
	}
}

// runRoundSafely runs one SA or tempering round, recovering a panic into a
// logged message and returning the round's input solution in whatever
// state the panicking round left it (moves are applied in place, so this is
// not a pre-round snapshot), so the caller's loop can simply restart on the
// next iteration.
func runRoundSafely[T RandomMover[T]](
	solution T,
	cfg SupervisorConfig,
	workerName string,
	stop *StopSignal,
	rng *rand.Rand,
	logger Logger,
) (result T) {
	result = solution
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("%s - recovered from panic mid-round: %v", workerName, r)
			result = solution
		}
	}()

	switch cfg.Heuristic {
	case HeuristicTempering:
		result = RunTempering[T](solution, cfg.Tempering, workerName, stop, rng, logger)
	default:
		result = RunSimulatedAnnealing[T](solution, cfg.SA, workerName, stop, rng, logger)
	}
	return result
}
