package simulation

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/environment"
	"github.com/pthm-cable/forage/telemetry"
)

// Options configures a simulation run.
type Options struct {
	LogDays    bool // log every day's stats via slog
	KeepStates bool // keep a snapshot of the population at the start of every day

	// Scenario, if non-empty, replaces the randomly placed first-day entities.
	Scenario []environment.ScenarioEntry

	// OnDay, if set, receives every day's stats; an error aborts the run.
	OnDay func(stats telemetry.DayStats) error
	// OnStep, if set, observes the environment after every step.
	OnStep func(env *environment.Environment, step int)
}

// Result holds the per-day time series of a run.
type Result struct {
	Days   []telemetry.DayStats
	States [][]environment.AgentState // only with Options.KeepStates
	Perf   *PerfStats                 // phase timings over the last days

	Bookmarks []telemetry.Bookmark
}

// Populations returns the population at the start of every day.
func (r *Result) Populations() []int {
	pops := make([]int, len(r.Days))
	for i, d := range r.Days {
		pops[i] = d.Population
	}
	return pops
}

// Simulation runs day cycles over one environment.
type Simulation struct {
	env       *environment.Environment
	loop      *DayLoop
	collector *telemetry.Collector
	lifetime  *telemetry.LifetimeTracker
	bookmarks *telemetry.BookmarkDetector
	perf      *PerfStats
	opts      Options
	day       int
}

const (
	perfWindow      = 512 // samples kept per phase
	bookmarkHistory = 10  // days of history for bookmark detection
)

// Run validates cfg, builds an environment and plays cfg.Simulation.Days days.
// Extinction is not an error: remaining days report zero population.
func Run(cfg *config.Config, rng *rand.Rand, opts Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.ComputeDerived()

	env := environment.New(cfg, rng)
	if len(opts.Scenario) > 0 {
		if err := env.Seed(opts.Scenario); err != nil {
			return nil, err
		}
	}

	return New(env, opts).Run(cfg.Simulation.Days)
}

// New creates a simulation over an existing environment.
func New(env *environment.Environment, opts Options) *Simulation {
	s := &Simulation{
		env:       env,
		loop:      NewDayLoop(env),
		collector: telemetry.NewCollector(),
		lifetime:  telemetry.NewLifetimeTracker(),
		bookmarks: telemetry.NewBookmarkDetector(bookmarkHistory),
		perf:      NewPerfStats(perfWindow),
		opts:      opts,
	}
	s.loop.OnStep = opts.OnStep
	s.loop.BeforeUpdate = s.recordForaging
	s.loop.Perf = s.perf

	for _, a := range env.AgentStates() {
		s.lifetime.Register(a.Lineage)
	}
	return s
}

// Lifetime returns the per-agent lifetime tracker.
func (s *Simulation) Lifetime() *telemetry.LifetimeTracker {
	return s.lifetime
}

// Run plays the given number of days and returns their stats.
func (s *Simulation) Run(days int) (*Result, error) {
	res := &Result{Days: make([]telemetry.DayStats, 0, days), Perf: s.perf}
	for i := 0; i < days; i++ {
		stats, states := s.RunDay()
		res.Days = append(res.Days, stats)
		for _, b := range s.bookmarks.Check(stats) {
			if s.opts.LogDays {
				b.LogBookmark()
			}
			res.Bookmarks = append(res.Bookmarks, b)
		}
		if s.opts.KeepStates {
			res.States = append(res.States, states)
		}
		if s.opts.OnDay != nil {
			if err := s.opts.OnDay(stats); err != nil {
				return res, fmt.Errorf("day %d: %w", stats.Day, err)
			}
		}
	}
	return res, nil
}

// RunDay plays the next day. It returns the day's stats and the population
// snapshot taken before the step loop.
func (s *Simulation) RunDay() (telemetry.DayStats, []environment.AgentState) {
	s.day++
	states := s.env.AgentStates()

	maxGen := 0
	for _, a := range states {
		maxGen = max(maxGen, a.Lineage.Generation)
	}
	s.collector.BeginDay(s.day, len(states), s.env.NumFoods(), maxGen)
	s.collector.RecordTraits(s.env.TraitSamples())

	report := s.loop.Run(s.day)
	s.collector.RecordSteps(report.Steps, report.Truncated)
	s.collector.RecordFoodEaten(report.FoodEaten)
	s.collector.RecordSurvivors(report.Outcome.Survivors)

	for _, lin := range report.Outcome.Died {
		lived := 0
		if st := s.lifetime.Remove(lin.ID); st != nil {
			lived = st.DaysLived
		}
		s.collector.RecordDeath(lived)
	}
	for i, child := range report.Outcome.Children {
		s.lifetime.RecordChild(report.Outcome.Parents[i])
		s.lifetime.Register(child)
		s.collector.RecordBirth()
	}

	stats := s.collector.Flush()
	if report.Truncated {
		slog.Warn("day stopped at step cap", "day", s.day, "steps", report.Steps, "foods_left", stats.Foods-stats.FoodEaten)
	}
	if s.opts.LogDays {
		stats.LogStats()
	}
	return stats, states
}

// recordForaging credits every agent with the day's food before the
// end-of-day reset clears the counters.
func (s *Simulation) recordForaging(env *environment.Environment) {
	for _, a := range env.AgentStates() {
		s.lifetime.RecordDay(a.Lineage.ID, a.FoodEaten)
	}
}
