package engine

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMetropolisAcceptance(t *testing.T) {
	Convey("Given a fixed temperature and a fixed worsening delta", t, func() {
		temperature := 2.0
		delta := 1.5 // cost increases by this much: previousCost - newCost = -delta
		rng := rand.New(rand.NewSource(1))

		Convey("Empirical acceptance frequency matches exp(-delta/T) within 3 standard errors", func() {
			trials := 200_000
			accepted := 0
			for i := 0; i < trials; i++ {
				if rng.Float64() <= metropolisAccept(-delta, temperature) {
					accepted++
				}
			}
			p := math.Exp(-delta / temperature)
			observed := float64(accepted) / float64(trials)
			stderr := math.Sqrt(p * (1 - p) / float64(trials))
			So(math.Abs(observed-p), ShouldBeLessThan, 3*stderr)
		})
	})
}

func TestCalibration(t *testing.T) {
	Convey("Given a solution whose random moves have a known delta distribution", t, func() {
		rng := rand.New(rand.NewSource(2))
		sol := &fakeSolution{value: 0}

		Convey("Start and end temperatures satisfy the acceptance-probability equations", func() {
			calib := calibrate[*fakeSolution](sol, rng, 20000, false)
			p0 := startingAcceptanceRandom
			gotP0 := math.Exp(-calib.avgDelta / calib.startTemp)
			So(math.Abs(p0-gotP0), ShouldBeLessThan, 1e-6)

			pN := endingAcceptance
			gotPN := math.Exp(-calib.minDelta / calib.endTemp)
			So(math.Abs(pN-gotPN), ShouldBeLessThan, 1e-6)
		})
	})

	Convey("Given a solution with a perfectly flat landscape", t, func() {
		rng := rand.New(rand.NewSource(3))
		sol := &flatSolution{}

		Convey("Calibration falls back to the sentinel temperature instead of dividing by zero", func() {
			calib := calibrate[*flatSolution](sol, rng, 1000, false)
			So(calib.degenerate, ShouldBeTrue)
			So(calib.startTemp, ShouldEqual, minTemperature)
			So(calib.endTemp, ShouldEqual, minTemperature)
		})
	})
}

// flatSolution never changes cost under a move, exercising calibration's
// degenerate-landscape branch.
type flatSolution struct{}

func (f *flatSolution) Cost() float64                     { return 0 }
func (f *flatSolution) Clone() *flatSolution               { return &flatSolution{} }
func (f *flatSolution) Persist(directory string) error     { return nil }
func (f *flatSolution) ApplyRandomMove(rng *rand.Rand)      {}
func (f *flatSolution) UndoLastMove()                       {}

func TestRunSimulatedAnnealingMonotoneBest(t *testing.T) {
	Convey("Given a quadratic-cost fake solution", t, func() {
		sol := &fakeSolution{value: 50}
		cfg := SAConfig{
			Iterations:            5000,
			CalibrationIterations: 200,
			Cooling:               Exponential,
			ReportInterval:        500,
		}
		rng := rand.New(rand.NewSource(4))
		stop := NewStopSignal()

		Convey("The run terminates and returns a best no worse than the start", func() {
			startCost := sol.Cost()
			best := RunSimulatedAnnealing[*fakeSolution](sol, cfg, "test-worker", stop, rng, NopLogger{})
			So(best.Cost(), ShouldBeLessThanOrEqualTo, startCost)
		})
	})

	Convey("Given N == 0", t, func() {
		sol := &fakeSolution{value: 5}
		cfg := SAConfig{Iterations: 0}
		rng := rand.New(rand.NewSource(5))
		stop := NewStopSignal()

		Convey("RunSimulatedAnnealing returns immediately with the unchanged solution", func() {
			best := RunSimulatedAnnealing[*fakeSolution](sol, cfg, "noop-worker", stop, rng, NopLogger{})
			So(best.Cost(), ShouldEqual, sol.Cost())
		})
	})
}

func TestRunSimulatedAnnealingStopResponsiveness(t *testing.T) {
	Convey("Given a stop signal raised before the run starts", t, func() {
		sol := &fakeSolution{value: 50}
		cfg := SAConfig{
			Iterations:            10_000_000,
			CalibrationIterations: 100,
			Cooling:               Linear,
			ReportInterval:        10,
		}
		rng := rand.New(rand.NewSource(6))
		stop := NewStopSignal()
		stop.Raise()

		Convey("The run exits at the first status check instead of running to completion", func() {
			best := RunSimulatedAnnealing[*fakeSolution](sol, cfg, "stopped-worker", stop, rng, NopLogger{})
			So(best, ShouldNotBeNil)
		})
	})
}
