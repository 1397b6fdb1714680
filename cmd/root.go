// Package cmd wires the cobra command tree and survey prompts that form the
// CLI surface: prompts for problem domain, instance path, thread count and
// iteration count, backed by the config package's environment/file
// defaults. The heuristic is chosen by subcommand (run sa, run tempering);
// it is not prompted for.
package cmd

import (
	"fmt"
	"os"
	"runtime"

	"annealer/internal/config"

	"github.com/spf13/cobra"
)

var configPath string

// Execute runs the root command, returning the process exit code: 0 on
// clean shutdown (including interrupt-driven), non-zero only on
// unrecoverable startup errors, per spec.md §6.
func Execute() int {
	root := &cobra.Command{
		Use:   "annealer",
		Short: "generic simulated-annealing and parallel-tempering search driver",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "optional config file (yaml/json/toml) read via viper")
	root.AddCommand(newRunCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfigOrDefault() config.Search {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "annealer: %v; falling back to hardcoded defaults\n", err)
		return config.Search{
			Threads:               runtime.NumCPU(),
			Iterations:            500_000_000,
			CalibrationIterations: 1_000,
			ReportInterval:        0,
		}
	}
	return cfg
}
