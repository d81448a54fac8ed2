package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/environment"
	"github.com/pthm-cable/forage/simulation"
	"github.com/pthm-cable/forage/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	days := flag.Int("days", 0, "Number of days to simulate (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for days.csv and config snapshot")
	scenarioPath := flag.String("scenario", "", "CSV file with kind,x,y rows placing first-day food and agents")
	logStats := flag.Bool("log-stats", false, "Log per-day stats via slog even if telemetry.log_days is off")
	printCSV := flag.Bool("csv", false, "Write per-day stats as CSV to stdout")
	logPerf := flag.Bool("perf", false, "Log average phase timings at the end of the run")

	flag.Parse()

	// Set up slog (JSON to stderr so stdout stays free for CSV)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *days > 0 {
		cfg.Simulation.Days = *days
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	opts := simulation.Options{
		LogDays: cfg.Telemetry.LogDays || *logStats,
		OnDay:   out.WriteDay,
	}
	if *scenarioPath != "" {
		entries, err := environment.LoadScenario(*scenarioPath)
		if err != nil {
			slog.Error("failed to load scenario", "error", err)
			os.Exit(1)
		}
		opts.Scenario = entries
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"days", cfg.Simulation.Days,
		"grid_size", cfg.World.GridSize,
		"agents", cfg.Population.Agents,
		"foods", cfg.Population.Foods,
		"policy", cfg.Feeding.Policy,
		"energy_unbounded", cfg.Derived.EnergyUnbounded,
	)

	start := time.Now()
	res, err := simulation.Run(cfg, rng, opts)
	if err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("simulation complete",
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
		"populations", res.Populations(),
	)
	if *logPerf {
		slog.Info("perf", "phases", res.Perf)
	}

	if *printCSV {
		if err := telemetry.WriteDays(os.Stdout, res.Days); err != nil {
			slog.Error("failed to write csv", "error", err)
			os.Exit(1)
		}
	}
}
