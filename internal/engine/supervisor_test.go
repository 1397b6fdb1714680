package engine

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRunSupervisorJoinsAllWorkers(t *testing.T) {
	Convey("Given a supervisor running 4 workers against a fake solution", t, func() {
		sol := &fakeSolution{value: 30}
		cfg := SupervisorConfig{
			Heuristic:  HeuristicSimulatedAnnealing,
			NumWorkers: 4,
			SA: SAConfig{
				Iterations:            200,
				CalibrationIterations: 20,
				Cooling:               Linear,
				ReportInterval:        50,
			},
			InstanceTag: "fake",
		}
		ctx, cancel := context.WithCancel(context.Background())
		stop := NewStopSignal()

		Convey("Raising the stop signal after a short delay lets it return the global best", func() {
			go func() {
				time.Sleep(10 * time.Millisecond)
				stop.Raise()
			}()

			best := RunSupervisor[*fakeSolution](ctx, sol, cfg, stop, NopLogger{}, nil)
			cancel()
			So(best.Cost(), ShouldBeLessThanOrEqualTo, sol.Cost())
		})
	})

	Convey("Given a context that is cancelled immediately", t, func() {
		sol := &fakeSolution{value: 10}
		cfg := SupervisorConfig{
			Heuristic:  HeuristicSimulatedAnnealing,
			NumWorkers: 2,
			SA: SAConfig{
				Iterations:            1_000_000_000,
				CalibrationIterations: 100,
				Cooling:               Linear,
				ReportInterval:        10,
			},
			InstanceTag: "cancel",
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		stop := NewStopSignal()

		Convey("The supervisor raises the shared stop signal and returns promptly", func() {
			best := RunSupervisor[*fakeSolution](ctx, sol, cfg, stop, NopLogger{}, nil)
			So(best, ShouldNotBeNil)
			So(stop.Raised(), ShouldBeTrue)
		})
	})
}

func TestRunSupervisorReportsAndPersists(t *testing.T) {
	Convey("Given a supervisor with a reports channel and a persist directory", t, func() {
		dir := t.TempDir()
		sol := &fakeSolution{value: 15}
		cfg := SupervisorConfig{
			Heuristic:  HeuristicSimulatedAnnealing,
			NumWorkers: 1,
			SA: SAConfig{
				Iterations:            100,
				CalibrationIterations: 10,
				Cooling:               Linear,
				ReportInterval:        20,
			},
			PersistDir:  dir,
			InstanceTag: "persist",
		}
		ctx := context.Background()
		stop := NewStopSignal()
		reports := make(chan WorkerReport, 8)

		go func() {
			time.Sleep(5 * time.Millisecond)
			stop.Raise()
		}()

		Convey("It publishes at least one report before stopping", func() {
			done := make(chan struct{})
			var gotReport bool
			go func() {
				for range reports {
					gotReport = true
				}
				close(done)
			}()

			RunSupervisor[*fakeSolution](ctx, sol, cfg, stop, NopLogger{}, reports)
			close(reports)
			<-done
			So(gotReport, ShouldBeTrue)
		})
	})
}
