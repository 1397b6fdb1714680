package engine

import (
	"math"
	"math/rand"
)

const (
	startingAcceptanceRandom = 0.5
	startingAcceptanceGreedy = 0.2
	endingAcceptance         = 1e-6

	// calibrationTrivialDelta is the cost-delta threshold below which a move
	// is treated as a no-op for calibration purposes, so a landscape full of
	// degenerate moves doesn't drag the smallest-delta estimate to zero.
	calibrationTrivialDelta = 1e-4

	// minTemperature is the clamp floor for any temperature fed to the
	// Metropolis rule, avoiding division by zero on a degenerate landscape.
	minTemperature = 1e-9

	// defaultReportInterval matches the teacher's/original's status-check
	// cadence; callers running short examples or tests should override it.
	defaultReportInterval = 10_000_000
)

// SAConfig bundles the inputs to RunSimulatedAnnealing besides the solution
// itself, the worker name and the stop signal.
type SAConfig struct {
	// Iterations is the main-loop budget N.
	Iterations int
	// CalibrationIterations is the temperature-determining budget K.
	CalibrationIterations int
	// Cooling selects Linear or Exponential decay.
	Cooling CoolingSchedule
	// GreedyStart lowers the starting acceptance probability, for solutions
	// seeded by a greedy constructor rather than a random one.
	GreedyStart bool
	// ReportInterval overrides the default status/plateau-check cadence (0
	// means defaultReportInterval).
	ReportInterval int
}

func (cfg SAConfig) reportInterval() int {
	if cfg.ReportInterval <= 0 {
		return defaultReportInterval
	}
	return cfg.ReportInterval
}

// calibrationResult holds the temperatures determined by calibrate, plus
// the raw statistics a caller (tempering's ladder construction) may want.
type calibrationResult struct {
	startTemp float64
	endTemp   float64
	avgDelta  float64
	minDelta  float64
	degenerate bool
}

// calibrate executes K random moves against solution, accumulating the
// statistics spec.md §4.2 defines, and returns the starting/ending
// temperatures. It intentionally does not undo the moves it makes: the
// solution is left wherever the random walk ends, which becomes the start
// state of the caller's main loop (this mirrors the reference
// implementation's behavior exactly).
func calibrate[T RandomMover[T]](solution T, rng *rand.Rand, k int, greedyStart bool) calibrationResult {
	var totalDelta float64
	minDelta := math.Inf(1)

	for i := 0; i < k; i++ {
		old := solution.Cost()
		solution.ApplyRandomMove(rng)
		delta := math.Abs(solution.Cost() - old)

		if delta <= calibrationTrivialDelta {
			continue
		}
		totalDelta += delta
		if delta < minDelta {
			minDelta = delta
		}
	}

	avgDelta := float64(0)
	if k > 0 {
		avgDelta = totalDelta / float64(k)
	}

	degenerate := avgDelta == 0
	if degenerate {
		return calibrationResult{
			startTemp:  minTemperature,
			endTemp:    minTemperature,
			avgDelta:   avgDelta,
			minDelta:   minDelta,
			degenerate: true,
		}
	}

	if math.IsInf(minDelta, 1) {
		minDelta = avgDelta
	}

	p0 := startingAcceptanceRandom
	if greedyStart {
		p0 = startingAcceptanceGreedy
	}

	startTemp := clampTemperature(-avgDelta / math.Log(p0))
	endTemp := clampTemperature(-minDelta / math.Log(endingAcceptance))

	return calibrationResult{
		startTemp: startTemp,
		endTemp:   endTemp,
		avgDelta:  avgDelta,
		minDelta:  minDelta,
	}
}

func clampTemperature(t float64) float64 {
	if t < minTemperature {
		return minTemperature
	}
	return t
}

// metropolisAccept is the Metropolis rule: probability of accepting a move
// whose cost difference is costDiff = previous-new (negative for a
// worsening move) at the given temperature.
func metropolisAccept(costDiff, temperature float64) float64 {
	return math.Exp(costDiff / temperature)
}

// RunSimulatedAnnealing runs calibration, builds the requested cooling
// schedule, and executes the accept/reject main loop of spec.md §4.2,
// returning the best solution observed. The stop signal and plateau
// detector are polled every cfg.reportInterval() iterations; on a trip,
// the loop exits early with whatever best has been found so far.
func RunSimulatedAnnealing[T RandomMover[T]](
	solution T,
	cfg SAConfig,
	workerName string,
	stop *StopSignal,
	rng *rand.Rand,
	logger Logger,
) T {
	if cfg.Iterations <= 0 {
		return solution
	}

	calib := calibrate[T](solution, rng, cfg.CalibrationIterations, cfg.GreedyStart)
	cool := buildCoolingSchedule(cfg.Cooling, calib.startTemp, calib.endTemp, cfg.Iterations)

	if calib.degenerate {
		logger.Printf("%s - calibration observed no usable cost deltas over %d moves; falling back to sentinel temperature %.2g", workerName, cfg.CalibrationIterations, calib.startTemp)
	}

	logger.Printf("%s - running simulated annealing for %d iterations, start temp %.4f, end temp %.4f", workerName, cfg.Iterations, calib.startTemp, calib.endTemp)

	temperature := calib.startTemp
	previousCost := solution.Cost()
	best := solution.Clone()
	plateau := newPlateauDetector(previousCost)
	reportEvery := cfg.reportInterval()

	for it := 0; it < cfg.Iterations; it++ {
		previousCost = saCore(solution, previousCost, rng, temperature)
		temperature = cool(temperature)

		if previousCost < best.Cost() {
			best = solution.Clone()
		}

		if it%reportEvery == 0 {
			percent := (float64(it) / float64(cfg.Iterations)) * 100
			logger.Printf("%s - %.0f%% - best cost: %.4f current cost: %.4f temp: %.4f", workerName, percent, best.Cost(), solution.Cost(), temperature)

			if stop.Raised() {
				logger.Printf("%s - stopping early", workerName)
				break
			}
			if plateau.check(solution.Cost()) {
				logger.Printf("%s - early return at iteration %d (%.0f%% done)", workerName, it, percent)
				break
			}
		}
	}

	logger.Printf("%s - final cost: %.4f", workerName, best.Cost())
	return best
}

// saCore applies one random move and the Metropolis accept/reject test,
// returning the resulting cost (either the new cost, if accepted, or the
// unchanged previous cost, if rejected and undone).
func saCore[T RandomMover[T]](solution T, previousCost float64, rng *rand.Rand, temperature float64) float64 {
	solution.ApplyRandomMove(rng)

	newCost := solution.Cost()
	costDiff := previousCost - newCost

	if costDiff < 0 {
		if rng.Float64() > metropolisAccept(costDiff, temperature) {
			solution.UndoLastMove()
			return previousCost
		}
	}

	return newCost
}
