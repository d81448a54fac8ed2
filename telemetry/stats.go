// Package telemetry collects per-day population statistics and writes them out.
package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DayStats holds aggregated statistics for one day cycle.
// Population, Foods and the trait columns describe the population before the
// day's step loop; the remaining columns describe what happened during it.
type DayStats struct {
	Day        int `csv:"day"`
	Population int `csv:"population"`
	Foods      int `csv:"foods"`

	// Step loop
	Steps     int  `csv:"steps"`
	FoodEaten int  `csv:"food_eaten"`
	Truncated bool `csv:"truncated"` // stopped by max_steps_per_day

	// End-of-day turnover
	Survivors int `csv:"survivors"`
	Births    int `csv:"births"`
	Deaths    int `csv:"deaths"`

	// Trait distribution
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SizeMean  float64 `csv:"size_mean"`
	SizeStd   float64 `csv:"size_std"`
	SizeP10   float64 `csv:"size_p10"`
	SizeP50   float64 `csv:"size_p50"`
	SizeP90   float64 `csv:"size_p90"`
	SenseMean float64 `csv:"sense_mean"`
	SenseStd  float64 `csv:"sense_std"`

	// Lineage
	MaxGeneration int     `csv:"max_generation"`
	MeanLifespan  float64 `csv:"mean_lifespan"` // days lived by agents that died today
}

// TraitStats summarizes one trait across a population.
type TraitStats struct {
	Mean, Std     float64
	Min, Max      float64
	P10, P50, P90 float64
}

// ComputeTraitStats calculates mean, population standard deviation, range and
// empirical percentiles. Returns zeros for an empty slice.
func ComputeTraitStats(values []float64) TraitStats {
	if len(values) == 0 {
		return TraitStats{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return TraitStats{
		Mean: mean,
		Std:  std,
		Min:  floats.Min(sorted),
		Max:  floats.Max(sorted),
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s DayStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("day", s.Day),
		slog.Int("population", s.Population),
		slog.Int("foods", s.Foods),
		slog.Int("steps", s.Steps),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Bool("truncated", s.Truncated),
		slog.Int("survivors", s.Survivors),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("size_mean", s.SizeMean),
		slog.Float64("sense_mean", s.SenseMean),
		slog.Int("max_generation", s.MaxGeneration),
		slog.Float64("mean_lifespan", s.MeanLifespan),
	)
}

// LogStats logs the day stats using slog.
func (s DayStats) LogStats() {
	slog.Info("day", "stats", s)
}
