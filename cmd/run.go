package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"annealer/internal/assignment"
	"annealer/internal/config"
	"annealer/internal/dashboard"
	"annealer/internal/engine"
	"annealer/internal/telemetry"
	"annealer/internal/tsp"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

type runOptions struct {
	domain        string
	instancePath  string
	instanceName  string
	persistDir    string
	threads       int
	iterations    int
	calibration   int
	cooling       string
	dashboardAddr string
	greedyStart   bool
	exchangeEvery int
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	run := &cobra.Command{
		Use:   "run",
		Short: "run a search, prompting for anything not supplied by flags",
	}

	persistentFlags(run, opts)

	run.AddCommand(newHeuristicCommand("sa", "run simulated annealing", opts, engine.HeuristicSimulatedAnnealing))
	run.AddCommand(newHeuristicCommand("tempering", "run parallel tempering", opts, engine.HeuristicTempering))

	return run
}

func persistentFlags(cmd *cobra.Command, opts *runOptions) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.domain, "domain", "", "problem domain: assignment or tsp")
	flags.StringVar(&opts.instancePath, "instance", "", "path to the instance file")
	flags.StringVar(&opts.instanceName, "name", "", "instance name, used to tag persisted output (defaults to the file's base name)")
	flags.StringVar(&opts.persistDir, "persist-dir", "", "directory each worker persists its best solution into (empty disables persistence)")
	flags.IntVar(&opts.threads, "threads", 0, "worker count (0 prompts, falling back to config/hardware parallelism)")
	flags.IntVar(&opts.iterations, "iterations", 0, "iteration budget per round (0 prompts, falling back to config default)")
	flags.IntVar(&opts.calibration, "calibration-iterations", 0, "temperature-calibration move budget (0 uses config default)")
	flags.StringVar(&opts.cooling, "cooling", "linear", "cooling schedule: linear or exponential")
	flags.StringVar(&opts.dashboardAddr, "dashboard", "", "address to serve the live telemetry dashboard on (empty disables it)")
	flags.BoolVar(&opts.greedyStart, "greedy-start", false, "lower the starting acceptance probability for a greedily-constructed initial solution")
	flags.IntVar(&opts.exchangeEvery, "exchange-interval", 0, "tempering replica-exchange interval in iterations (0 uses the engine default)")
}

func newHeuristicCommand(use, short string, opts *runOptions, heuristic engine.Heuristic) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), opts, heuristic)
		},
	}
}

func runSearch(ctx context.Context, opts *runOptions, heuristic engine.Heuristic) error {
	cfg := loadConfigOrDefault()

	if err := promptMissing(opts, cfg); err != nil {
		return fmt.Errorf("annealer: reading prompts: %w", err)
	}

	cooling := engine.Linear
	if opts.cooling == "exponential" {
		cooling = engine.Exponential
	}

	saCfg := engine.SAConfig{
		Iterations:            opts.iterations,
		CalibrationIterations: opts.calibration,
		Cooling:               cooling,
		GreedyStart:           opts.greedyStart,
	}
	temperingCfg := engine.TemperingConfig{
		NumThreads:            opts.threads,
		CalibrationIterations: opts.calibration,
		Cooling:               cooling,
		ExchangeInterval:      opts.exchangeEvery,
	}

	// Tempering spends the thread budget on one worker's replica ladder
	// rather than on independent parallel workers (engine.HeuristicTempering
	// docs), so only SA fans the budget out across supervisor workers.
	numWorkers := opts.threads
	if heuristic == engine.HeuristicTempering {
		if opts.threads < 2 {
			return fmt.Errorf("annealer: tempering requires at least 2 threads, got %d", opts.threads)
		}
		temperingCfg.NumThreads = opts.threads
		numWorkers = 1
	}

	supervisorCfg := engine.SupervisorConfig{
		Heuristic:   heuristic,
		NumWorkers:  numWorkers,
		SA:          saCfg,
		Tempering:   temperingCfg,
		PersistDir:  opts.persistDir,
		InstanceTag: opts.instanceName,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	stop := engine.NewStopSignal()
	go func() {
		select {
		case <-sigCh:
			stop.Raise()
			cancel()
		case <-runCtx.Done():
		}
	}()

	logger := engine.NewStdLogger()
	reports := make(chan engine.WorkerReport, opts.threads*2+1)
	registry := telemetry.NewRegistry()
	go registry.Watch(reports)

	if opts.dashboardAddr != "" {
		dash := dashboard.NewServer(opts.dashboardAddr, registry)
		go func() {
			if err := dash.Serve(runCtx); err != nil {
				logger.Printf("dashboard: %v", err)
			}
		}()
	}

	switch opts.domain {
	case "assignment":
		initial, err := assignment.ReadInstance(opts.instancePath, opts.instanceName)
		if err != nil {
			return fmt.Errorf("annealer: loading assignment instance: %w", err)
		}
		best := engine.RunSupervisor[*assignment.Solution](runCtx, initial, supervisorCfg, stop, logger, reports)
		close(reports)
		logger.Printf("final best cost: %.4f", best.Cost())
	case "tsp":
		initial, err := tsp.ReadInstance(opts.instancePath, opts.instanceName)
		if err != nil {
			return fmt.Errorf("annealer: loading tsp instance: %w", err)
		}
		best := engine.RunSupervisor[*tsp.Solution](runCtx, initial, supervisorCfg, stop, logger, reports)
		close(reports)
		logger.Printf("final best cost: %.4f", best.Cost())
	default:
		return fmt.Errorf("annealer: unknown domain %q, want \"assignment\" or \"tsp\"", opts.domain)
	}

	return nil
}

// promptMissing fills in anything opts didn't get from flags using
// survey's interactive numeric/text prompts, per spec.md §6's CLI
// contract. Config/hardcoded defaults (cfg) seed the prompt defaults.
func promptMissing(opts *runOptions, cfg config.Search) error {
	var questions []*survey.Question

	if opts.domain == "" {
		questions = append(questions, &survey.Question{
			Name: "domain",
			Prompt: &survey.Select{
				Message: "Problem domain:",
				Options: []string{"assignment", "tsp"},
				Default: "assignment",
			},
		})
	}
	if opts.instancePath == "" {
		questions = append(questions, &survey.Question{
			Name:     "instancePath",
			Prompt:   &survey.Input{Message: "Instance file path:"},
			Validate: survey.Required,
		})
	}
	if opts.threads <= 0 {
		questions = append(questions, &survey.Question{
			Name:   "threads",
			Prompt: &survey.Input{Message: "Worker thread count:", Default: fmt.Sprint(cfg.Threads)},
		})
	}
	if opts.iterations <= 0 {
		questions = append(questions, &survey.Question{
			Name:   "iterations",
			Prompt: &survey.Input{Message: "Iteration budget per round:", Default: fmt.Sprint(cfg.Iterations)},
		})
	}

	if len(questions) > 0 {
		answers := struct {
			Domain       string
			InstancePath string
			Threads      string
			Iterations   string
		}{}
		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}
		if answers.Domain != "" {
			opts.domain = answers.Domain
		}
		if answers.InstancePath != "" {
			opts.instancePath = answers.InstancePath
		}
		if answers.Threads != "" {
			fmt.Sscanf(answers.Threads, "%d", &opts.threads)
		}
		if answers.Iterations != "" {
			fmt.Sscanf(answers.Iterations, "%d", &opts.iterations)
		}
	}

	if opts.threads <= 0 {
		opts.threads = cfg.Threads
	}
	if opts.iterations <= 0 {
		opts.iterations = cfg.Iterations
	}
	if opts.calibration <= 0 {
		opts.calibration = cfg.CalibrationIterations
	}
	if opts.instanceName == "" {
		opts.instanceName = filepath.Base(opts.instancePath)
	}

	return nil
}
