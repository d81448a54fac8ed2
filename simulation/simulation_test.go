package simulation

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/environment"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
)

// endToEndConfig mirrors the reference run: 10 agents, 5 foods on a 10x10 grid.
func endToEndConfig() *config.Config {
	cfg := config.Default()
	cfg.World.GridSize = 10
	cfg.World.EatingThreshold = 1
	cfg.Population.Agents = 10
	cfg.Population.Foods = 5
	cfg.Agent.BaseEnergy = math.Inf(1)
	cfg.Agent.Speed = 1
	cfg.Agent.Size = 100
	cfg.Simulation.Days = 30
	// Food off every agent's lattice can be unreachable; keep tests bounded
	cfg.Simulation.MaxStepsPerDay = 20000
	cfg.ComputeDerived()
	return cfg
}

func TestDayLoop_EmptyDayEndsImmediately(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Population.Foods = 0
	env := environment.New(cfg, rand.New(rand.NewSource(1)))
	loop := NewDayLoop(env)

	loop.Begin()
	if loop.State() != StateDone {
		t.Fatalf("state = %v, want done for a day without food", loop.State())
	}
	if loop.Step() != StateDone || loop.Steps() != 0 {
		t.Error("Step advanced a finished day")
	}

	report := loop.Run(1)
	if report.Steps != 0 || report.FoodEaten != 0 {
		t.Errorf("report = %+v, want no steps", report)
	}
	// Nobody ate, so everyone dies
	if report.Outcome.Deaths != cfg.Population.Agents || env.NumAgents() != 0 {
		t.Errorf("deaths = %d, agents left = %d", report.Outcome.Deaths, env.NumAgents())
	}
}

func TestDayLoop_StepTransitions(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Population.Foods = 0
	env := environment.NewEmpty(cfg, rand.New(rand.NewSource(1)))
	env.AddFood(components.Position{X: 5, Y: 5})
	env.AddAgent(components.Position{X: 5, Y: 5}, components.Traits{BaseEnergy: 10, Speed: 0.5, Size: 1, Sense: 0})
	loop := NewDayLoop(env)

	loop.Begin()
	if loop.State() != StateRunning {
		t.Fatalf("state = %v, want running", loop.State())
	}

	// Any move of 0.5 keeps the agent within reach of the food
	if got := loop.Step(); got != StateDone {
		t.Fatalf("state after step = %v, want done", got)
	}
	if env.NumFoods() != 0 {
		t.Errorf("food left = %d, want 0", env.NumFoods())
	}
	if loop.Steps() != 1 {
		t.Errorf("steps = %d, want 1", loop.Steps())
	}

	// A new day without food is over before it starts
	report := loop.Run(1)
	if report.Steps != 0 || report.FoodEaten != 0 {
		t.Errorf("report = %+v, want an empty day", report)
	}
}

func TestDayLoop_StepCapTruncates(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Simulation.MaxStepsPerDay = 3
	cfg.Population.Foods = 0
	env := environment.NewEmpty(cfg, rand.New(rand.NewSource(1)))
	// A step as long as the grid wraps the agent back to the origin, far from the food
	env.AddFood(components.Position{X: 5.5, Y: 5.5})
	env.AddAgent(components.Position{X: 0, Y: 0}, components.Traits{BaseEnergy: 10, Speed: 10, Size: 1})

	report := NewDayLoop(env).Run(1)
	if !report.Truncated || report.Steps != 3 {
		t.Errorf("report = %+v, want truncated after 3 steps", report)
	}
}

func TestReproductionThreshold(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Population.Agents = 0
	cfg.Population.Foods = 0
	env := environment.NewEmpty(cfg, rand.New(rand.NewSource(12)))

	// Two foods within reach of every position the agent can take in two steps
	env.AddFood(components.Position{X: 5, Y: 5})
	env.AddFood(components.Position{X: 5.05, Y: 5})
	parentTraits := components.Traits{BaseEnergy: math.Inf(1), Speed: 0.1, Size: 1, Sense: 1}
	env.AddAgent(components.Position{X: 5, Y: 5}, parentTraits)

	sim := New(env, Options{KeepStates: true})
	res, err := sim.Run(3)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if got, want := res.Populations(), []int{1, 2, 0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("populations = %v, want %v", got, want)
	}

	day1 := res.Days[0]
	if day1.Steps != 2 || day1.FoodEaten != 2 || day1.Births != 1 || day1.Survivors != 1 {
		t.Errorf("day 1 stats = %+v", day1)
	}

	day2 := res.States[1]
	parent, child := day2[0], day2[1]
	if child.Lineage.ParentID != parent.Lineage.ID || child.Lineage.Generation != 1 {
		t.Errorf("child lineage = %+v, parent = %+v", child.Lineage, parent.Lineage)
	}
	for _, pair := range [][2]float64{
		{parentTraits.Speed, child.Traits.Speed},
		{parentTraits.Size, child.Traits.Size},
		{parentTraits.Sense, child.Traits.Sense},
	} {
		r := pair[1] / pair[0]
		if math.Abs(r-0.9) > 1e-12 && math.Abs(r-1) > 1e-12 && math.Abs(r-1.1) > 1e-12 {
			t.Errorf("child trait ratio %v not in {0.9, 1.0, 1.1}", r)
		}
	}
	if !systems.OnEdge(child.Position, cfg.World.GridSize) {
		t.Errorf("child at %+v not on an edge", child.Position)
	}

	// Day 2 has no food: both die having eaten nothing
	if res.Days[1].Deaths != 2 || res.Days[1].Steps != 0 {
		t.Errorf("day 2 stats = %+v", res.Days[1])
	}
	if res.Days[1].MaxGeneration != 1 {
		t.Errorf("day 2 max generation = %d, want 1", res.Days[1].MaxGeneration)
	}
	if sim.Lifetime().Len() != 0 {
		t.Errorf("lifetime tracker still holds %d agents", sim.Lifetime().Len())
	}
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := endToEndConfig()
	res, err := Run(cfg, rand.New(rand.NewSource(2024)), Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	pops := res.Populations()
	if len(pops) != 30 {
		t.Fatalf("len(populations) = %d, want 30", len(pops))
	}
	if pops[0] != 10 {
		t.Errorf("day 1 population = %d, want 10", pops[0])
	}
	// At most one survivor per food item plus one child per two items
	for d := 1; d < len(pops); d++ {
		if pops[d] > 7 {
			t.Errorf("day %d population = %d, exceeds 5 survivors + 2 births", d+1, pops[d])
		}
	}
	for d, day := range res.Days {
		if day.Day != d+1 {
			t.Errorf("day index %d has Day=%d", d, day.Day)
		}
		if day.Population == 0 && d+1 < len(res.Days) && res.Days[d+1].Population != 0 {
			t.Errorf("population recovered from extinction on day %d", d+2)
		}
		if day.Population-day.Deaths+day.Births != nextPopulation(res.Days, d, day) {
			t.Errorf("day %d: population %d - deaths %d + births %d inconsistent", day.Day, day.Population, day.Deaths, day.Births)
		}
	}
}

// nextPopulation returns the population the day after d, or the computed
// value for the last day.
func nextPopulation(days []telemetry.DayStats, d int, day telemetry.DayStats) int {
	if d+1 < len(days) {
		return days[d+1].Population
	}
	return day.Survivors + day.Births
}

func TestRun_EnergyPressureCausesExtinction(t *testing.T) {
	cfg := endToEndConfig()
	// One step costs size³·speed + sense = 1e6 + 1, more than the budget
	cfg.Agent.BaseEnergy = 1e6
	cfg.ComputeDerived()

	res, err := Run(cfg, rand.New(rand.NewSource(5)), Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	pops := res.Populations()
	if pops[0] != 10 {
		t.Errorf("day 1 population = %d, want 10", pops[0])
	}
	for d := 1; d < len(pops); d++ {
		if pops[d] != 0 {
			t.Fatalf("populations = %v, want extinction after day 1", pops)
		}
	}
}

func TestRun_NonPositiveThresholdExtinction(t *testing.T) {
	cfg := endToEndConfig()
	cfg.World.EatingThreshold = 0
	cfg.Simulation.MaxStepsPerDay = 50
	cfg.Simulation.Days = 4
	cfg.ComputeDerived()

	res, err := Run(cfg, rand.New(rand.NewSource(5)), Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got, want := res.Populations(), []int{10, 0, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("populations = %v, want %v", got, want)
	}
	if !res.Days[0].Truncated || res.Days[0].FoodEaten != 0 {
		t.Errorf("day 1 = %+v, want truncated with nothing eaten", res.Days[0])
	}
}

func TestRun_ZeroAgents(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Population.Agents = 0
	cfg.Simulation.Days = 5

	res, err := Run(cfg, rand.New(rand.NewSource(1)), Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got, want := res.Populations(), []int{0, 0, 0, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("populations = %v, want %v", got, want)
	}
}

func TestRun_Deterministic(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Agent.Size = 1
	cfg.Agent.BaseEnergy = 400
	cfg.Population.Foods = 20
	cfg.Simulation.Days = 10
	cfg.ComputeDerived()

	a, err := Run(cfg, rand.New(rand.NewSource(77)), Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(cfg, rand.New(rand.NewSource(77)), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Days, b.Days) {
		t.Error("identically seeded runs diverged")
	}
}

func TestRun_EnergyMonotonicWithinDay(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Agent.Size = 1
	cfg.Agent.BaseEnergy = 500
	cfg.Population.Foods = 15
	cfg.Simulation.Days = 5
	cfg.Simulation.MaxStepsPerDay = 2000
	cfg.ComputeDerived()

	last := map[uint32]float64{}
	violations := 0
	opts := Options{
		OnStep: func(env *environment.Environment, step int) {
			if step == 1 {
				clear(last)
			}
			for _, a := range env.AgentStates() {
				if prev, ok := last[a.Lineage.ID]; ok && a.Energy > prev {
					violations++
				}
				last[a.Lineage.ID] = a.Energy
				if a.Position.X < 0 || a.Position.X > cfg.World.GridSize || a.Position.Y < 0 || a.Position.Y > cfg.World.GridSize {
					violations++
				}
			}
		},
	}

	if _, err := Run(cfg, rand.New(rand.NewSource(3)), opts); err != nil {
		t.Fatal(err)
	}
	if violations != 0 {
		t.Errorf("%d energy or position violations", violations)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := endToEndConfig()
	cfg.World.GridSize = 0
	if _, err := Run(cfg, rand.New(rand.NewSource(1)), Options{}); err == nil {
		t.Error("expected error for zero grid size")
	}
}

func TestRun_OnDayErrorAborts(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Simulation.Days = 5
	errStop := errors.New("stop")
	calls := 0

	res, err := Run(cfg, rand.New(rand.NewSource(1)), Options{
		OnDay: func(stats telemetry.DayStats) error {
			calls++
			if stats.Day == 2 {
				return errStop
			}
			return nil
		},
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("err = %v, want errStop", err)
	}
	if calls != 2 || len(res.Days) != 2 {
		t.Errorf("calls = %d, days = %d, want 2 and 2", calls, len(res.Days))
	}
}

func TestRun_Scenario(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Simulation.Days = 1
	scenario := []environment.ScenarioEntry{
		{Kind: environment.KindAgent, X: 0, Y: 3},
		{Kind: environment.KindFood, X: 4, Y: 4},
	}

	res, err := Run(cfg, rand.New(rand.NewSource(1)), Options{Scenario: scenario})
	if err != nil {
		t.Fatal(err)
	}
	if res.Days[0].Population != 1 || res.Days[0].Foods != 1 {
		t.Errorf("day 1 = %+v, want scenario population", res.Days[0])
	}

	bad := []environment.ScenarioEntry{{Kind: "tree", X: 1, Y: 1}}
	if _, err := Run(cfg, rand.New(rand.NewSource(1)), Options{Scenario: bad}); err == nil {
		t.Error("expected error for invalid scenario")
	}
}

func TestRun_RecordsPerf(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Simulation.Days = 2

	res, err := Run(cfg, rand.New(rand.NewSource(9)), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Perf.Count(PhaseEndOfDay); got != 2 {
		t.Errorf("end_of_day samples = %d, want 2", got)
	}
	if res.Days[0].Steps > 0 && res.Perf.Count(PhaseForage) == 0 {
		t.Error("no forage samples recorded")
	}
}

func TestRun_BookmarksExtinction(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Agent.BaseEnergy = 1e6
	cfg.Simulation.Days = 3
	cfg.ComputeDerived()

	res, err := Run(cfg, rand.New(rand.NewSource(5)), Options{})
	if err != nil {
		t.Fatal(err)
	}

	var extinct []telemetry.Bookmark
	for _, b := range res.Bookmarks {
		if b.Type == telemetry.BookmarkExtinction {
			extinct = append(extinct, b)
		}
	}
	if len(extinct) != 1 || extinct[0].Day != 2 {
		t.Errorf("extinction bookmarks = %+v, want one on day 2", extinct)
	}
}
