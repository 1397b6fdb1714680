// Package config loads run defaults from environment variables and an
// optional config file via viper, providing the fallback layer beneath
// the cmd package's flags and interactive prompts.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Search holds the tunables a run needs before prompts/flags override
// them.
type Search struct {
	Threads               int
	Iterations            int
	CalibrationIterations int
	ReportInterval        time.Duration
}

// defaultThreads is the available hardware parallelism.
var defaultThreads = runtime.NumCPU()

const (
	defaultIterations             = 500_000_000
	defaultCalibrationIterations  = 1_000
	defaultReportInterval         = 5 * time.Second
	envPrefix                     = "SEARCH"
)

// Load reads SEARCH_* environment variables and, if present, a config
// file named by configPath (any format viper supports: yaml, json,
// toml...). An empty configPath skips the file and uses environment
// variables and defaults only.
func Load(configPath string) (Search, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("threads", defaultThreads)
	v.SetDefault("iterations", defaultIterations)
	v.SetDefault("calibration_iterations", defaultCalibrationIterations)
	v.SetDefault("report_interval", defaultReportInterval)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Search{}, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	reportInterval, err := time.ParseDuration(fmt.Sprint(v.Get("report_interval")))
	if err != nil {
		reportInterval = defaultReportInterval
	}

	cfg := Search{
		Threads:               v.GetInt("threads"),
		Iterations:            v.GetInt("iterations"),
		CalibrationIterations: v.GetInt("calibration_iterations"),
		ReportInterval:        reportInterval,
	}

	if cfg.Threads < 1 {
		return Search{}, fmt.Errorf("config: threads must be >= 1, got %d", cfg.Threads)
	}
	if cfg.Iterations < 1 {
		return Search{}, fmt.Errorf("config: iterations must be >= 1, got %d", cfg.Iterations)
	}

	return cfg, nil
}
