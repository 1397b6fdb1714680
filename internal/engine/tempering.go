package engine

import (
	"math"
	"math/rand"

	channerics "github.com/niceyeti/channerics/channels"
)

// defaultExchangeInterval is the number of fixed-temperature iterations each
// rung runs between replica-exchange proposals, per spec.md §4.3 (E).
const defaultExchangeInterval = 50_000

// rungMessage is one replica's state as published to the exchange
// coordinator at the end of an exchange interval.
type rungMessage[T any] struct {
	id       int
	solution T
	cost     float64
}

// TemperingConfig bundles tempering's inputs besides the initial solution,
// worker name and stop signal.
type TemperingConfig struct {
	// NumThreads is the ladder size M, must be >= 2.
	NumThreads int
	// CalibrationIterations is K, used once to derive the ladder's
	// temperature range.
	CalibrationIterations int
	// Cooling is used only to space the ladder's rung temperatures, not to
	// cool any individual replica.
	Cooling CoolingSchedule
	// ExchangeInterval is E, the number of fixed-temperature iterations
	// between exchange proposals (0 means defaultExchangeInterval).
	ExchangeInterval int
}

func (cfg TemperingConfig) exchangeInterval() int {
	if cfg.ExchangeInterval <= 0 {
		return defaultExchangeInterval
	}
	return cfg.ExchangeInterval
}

// RunTempering spawns a fixed-temperature SA replica per rung of the
// ladder, exchanges neighboring replicas periodically per the Metropolis
// swap rule, and returns the best solution observed across the ladder.
// Panics if cfg.NumThreads < 2, mirroring the precondition in spec.md §4.3.
func RunTempering[T RandomMover[T]](
	solution T,
	cfg TemperingConfig,
	workerName string,
	stop *StopSignal,
	rng *rand.Rand,
	logger Logger,
) T {
	if cfg.NumThreads < 2 {
		panic("tempering requires at least 2 threads to run")
	}

	calib := calibrate[T](solution, rng, cfg.CalibrationIterations, false)
	cool := buildCoolingSchedule(cfg.Cooling, calib.startTemp, calib.endTemp, cfg.NumThreads)

	temps := make([]float64, cfg.NumThreads)
	temps[0] = calib.startTemp
	for i := 1; i < cfg.NumThreads; i++ {
		temps[i] = cool(temps[i-1])
	}
	logger.Printf("%s - running tempering on %d threads, temperatures %.3f", workerName, cfg.NumThreads, temps)

	done := make(chan struct{})
	readyChans := make([]<-chan rungMessage[T], cfg.NumThreads)
	resume := make([]chan T, cfg.NumThreads)
	for i := 0; i < cfg.NumThreads; i++ {
		ready := make(chan rungMessage[T])
		readyChans[i] = ready
		resume[i] = make(chan T)
		go runRung[T](i, solution.Clone(), temps[i], cfg.exchangeInterval(), ready, resume[i], done)
	}
	merged := channerics.Merge(done, readyChans...)

	states := make([]rungMessage[T], cfg.NumThreads)
	best := solution.Clone()

	for {
		for n := 0; n < cfg.NumThreads; n++ {
			msg := <-merged
			states[msg.id] = msg
		}

		for i := 0; i < cfg.NumThreads-1; i++ {
			a, b := states[i], states[i+1]
			logAcceptRatio := (1/temps[i] - 1/temps[i+1]) * (a.cost - b.cost)
			accept := logAcceptRatio >= 0 || rng.Float64() < math.Exp(logAcceptRatio)
			if accept {
				a.solution, b.solution = b.solution, a.solution
				a.cost, b.cost = b.cost, a.cost
				states[i], states[i+1] = a, b
			}
		}

		for _, s := range states {
			if s.cost < best.Cost() {
				best = s.solution.Clone()
			}
		}

		if stop.Raised() {
			logger.Printf("%s - stopping early", workerName)
			close(done)
			break
		}

		for i := 0; i < cfg.NumThreads; i++ {
			resume[i] <- states[i].solution
		}
	}

	logger.Printf("%s - final cost: %.4f", workerName, best.Cost())
	return best
}

// runRung runs exchangeInterval fixed-temperature SA-core steps, publishes
// its state to ready, then blocks for either a (possibly exchanged)
// solution to resume with or the done signal.
func runRung[T RandomMover[T]](
	id int,
	solution T,
	temperature float64,
	exchangeInterval int,
	ready chan<- rungMessage[T],
	resume <-chan T,
	done <-chan struct{},
) {
	rng := NewWorkerRand()
	cost := solution.Cost()

	for {
		for i := 0; i < exchangeInterval; i++ {
			cost = saCore(solution, cost, rng, temperature)
		}

		select {
		case ready <- rungMessage[T]{id: id, solution: solution, cost: cost}:
		case <-done:
			return
		}

		select {
		case solution = <-resume:
			cost = solution.Cost()
		case <-done:
			return
		}
	}
}
