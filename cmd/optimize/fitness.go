package main

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/simulation"
	"github.com/pthm-cable/forage/telemetry"
)

// defaultStepCap bounds each day when the base config leaves it unlimited,
// so an unreachable food item cannot stall an evaluation.
const defaultStepCap = 10000

// FitnessEvaluator runs simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	lastMeanPop float64 // mean population from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastMeanPopulation returns the mean daily population from the most recent evaluation.
func (fe *FitnessEvaluator) LastMeanPopulation() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMeanPop
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	meanPop float64
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds run in parallel; each run owns its config copy, environment and RNG.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSeed(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalPop float64
	for _, r := range results {
		totalFitness += r.fitness
		totalPop += r.meanPop
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.lastMeanPop = totalPop / n
	fe.mu.Unlock()

	return avgFitness
}

// runSeed executes one simulation run.
func (fe *FitnessEvaluator) runSeed(x []float64, seed int64) seedResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	if cfg.Simulation.MaxStepsPerDay == 0 {
		cfg.Simulation.MaxStepsPerDay = defaultStepCap
	}

	res, err := simulation.Run(cfg, rand.New(rand.NewSource(seed)), simulation.Options{})
	if err != nil {
		slog.Warn("evaluation failed", "seed", seed, "error", err)
		return seedResult{fitness: math.Inf(1)}
	}
	return seedResult{
		fitness: computeFitness(res.Days),
		meanPop: meanPopulation(res.Days),
	}
}

// computeFitness rewards populations that persist: the negated final
// population, with the mean population as a tie-breaker among extinct runs.
func computeFitness(days []telemetry.DayStats) float64 {
	if len(days) == 0 {
		return 0
	}
	last := days[len(days)-1]
	final := float64(last.Survivors + last.Births)
	return -(final + 0.01*meanPopulation(days))
}

func meanPopulation(days []telemetry.DayStats) float64 {
	if len(days) == 0 {
		return 0
	}
	var sum float64
	for _, d := range days {
		sum += float64(d.Population)
	}
	return sum / float64(len(days))
}
