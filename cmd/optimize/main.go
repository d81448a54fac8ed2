// Package main searches founder traits with CMA-ES for the combination that
// keeps the largest population alive.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/forage/config"
)

// EvalRecord is one row of evaluations.csv.
type EvalRecord struct {
	Eval    int     `csv:"eval"`
	Fitness float64 `csv:"fitness"`
	MeanPop float64 `csv:"mean_population"`
	Speed   float64 `csv:"speed"`
	Size    float64 `csv:"size"`
	Sense   float64 `csv:"sense"`
}

// evalLog appends evaluation records, writing the header with the first one.
type evalLog struct {
	w       io.Writer
	started bool
}

func (l *evalLog) write(rec EvalRecord) error {
	rows := []EvalRecord{rec}
	if !l.started {
		l.started = true
		return gocsv.Marshal(rows, l.w)
	}
	return gocsv.MarshalWithoutHeaders(rows, l.w)
}

type options struct {
	configPath string
	seeds      int
	maxEvals   int
	population int
	outputDir  string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&opts.seeds, "seeds", 5, "Simulation seeds averaged per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = 4 + 1.5·dim)")
	flag.StringVar(&opts.outputDir, "output", "", "Directory for evaluations.csv and best_config.yaml")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("-output is required")
	}
	if opts.seeds < 1 {
		return fmt.Errorf("-seeds must be >= 1, got %d", opts.seeds)
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	baseCfg := config.Cfg()

	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, seeds, baseCfg)

	f, err := os.Create(filepath.Join(opts.outputDir, "evaluations.csv"))
	if err != nil {
		return fmt.Errorf("creating evaluation log: %w", err)
	}
	defer f.Close()
	evals := &evalLog{w: f}

	var (
		count       int
		bestFitness = 1e9
		bestParams  []float64
		start       = time.Now()
	)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			traits := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(traits)
			count++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = traits
			}

			rec := EvalRecord{
				Eval:    count,
				Fitness: fitness,
				MeanPop: evaluator.LastMeanPopulation(),
				Speed:   traits[0],
				Size:    traits[1],
				Sense:   traits[2],
			}
			if err := evals.write(rec); err != nil {
				slog.Warn("failed to log evaluation", "eval", count, "error", err)
			}

			elapsed := time.Since(start)
			eta := time.Duration(opts.maxEvals-count) * (elapsed / time.Duration(count))
			slog.Info("evaluation",
				"eval", count,
				"fitness", fitness,
				"mean_pop", rec.MeanPop,
				"best", bestFitness,
				"elapsed", elapsed.Round(time.Second).String(),
				"eta", eta.Round(time.Second).String(),
			)
			return fitness
		},
	}

	dim := params.Dim()
	popSize := opts.population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	// Evaluations run one at a time; the seeds inside each run in parallel
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	slog.Info("starting CMA-ES",
		"params", dim,
		"population", popSize,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"days", baseCfg.Simulation.Days,
	)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		// Hitting the evaluation budget is reported as an error; keep the best so far
		slog.Info("optimization stopped", "reason", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return errors.New("no evaluations completed")
	}

	best := baseCfg.Clone()
	params.ApplyToConfig(best, bestParams)

	attrs := []any{"evals", count, "fitness", bestFitness, "elapsed", time.Since(start).Round(time.Second).String()}
	for i, p := range params.Params {
		attrs = append(attrs, p.Name, bestParams[i])
	}
	slog.Info("optimization complete", attrs...)

	path := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := best.WriteYAML(path); err != nil {
		return err
	}
	slog.Info("best config saved", "path", path)
	return nil
}
