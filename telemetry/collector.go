package telemetry

// Collector accumulates events within one day and produces DayStats.
type Collector struct {
	current DayStats

	lifespanSum int
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// BeginDay starts a new record with the population as it stands before the
// step loop.
func (c *Collector) BeginDay(day, population, foods, maxGeneration int) {
	c.current = DayStats{
		Day:           day,
		Population:    population,
		Foods:         foods,
		MaxGeneration: maxGeneration,
	}
	c.lifespanSum = 0
}

// RecordTraits records the trait distribution of the day's population.
func (c *Collector) RecordTraits(speed, size, sense []float64) {
	sp := ComputeTraitStats(speed)
	sz := ComputeTraitStats(size)
	se := ComputeTraitStats(sense)

	c.current.SpeedMean, c.current.SpeedStd = sp.Mean, sp.Std
	c.current.SpeedP10, c.current.SpeedP50, c.current.SpeedP90 = sp.P10, sp.P50, sp.P90
	c.current.SizeMean, c.current.SizeStd = sz.Mean, sz.Std
	c.current.SizeP10, c.current.SizeP50, c.current.SizeP90 = sz.P10, sz.P50, sz.P90
	c.current.SenseMean, c.current.SenseStd = se.Mean, se.Std
}

// RecordSteps records how many steps the day ran.
func (c *Collector) RecordSteps(steps int, truncated bool) {
	c.current.Steps = steps
	c.current.Truncated = truncated
}

// RecordFoodEaten adds to the day's consumed food count.
func (c *Collector) RecordFoodEaten(n int) {
	c.current.FoodEaten += n
}

// RecordSurvivors records how many agents survived the day.
func (c *Collector) RecordSurvivors(n int) {
	c.current.Survivors = n
}

// RecordBirth records a child spawned at the end of the day.
func (c *Collector) RecordBirth() {
	c.current.Births++
}

// RecordDeath records an agent removed at the end of the day and the number
// of days it lived.
func (c *Collector) RecordDeath(lifespanDays int) {
	c.current.Deaths++
	c.lifespanSum += lifespanDays
}

// Flush finalizes and returns the current day's stats.
func (c *Collector) Flush() DayStats {
	stats := c.current
	if stats.Deaths > 0 {
		stats.MeanLifespan = float64(c.lifespanSum) / float64(stats.Deaths)
	}
	return stats
}
