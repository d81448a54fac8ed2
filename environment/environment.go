// Package environment owns the grid, its food and its agent population, and
// the rules for repopulating them between days.
package environment

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/systems"
)

// AgentState is a value snapshot of one agent.
type AgentState struct {
	Lineage   components.Lineage
	Position  components.Position
	Home      components.Position
	Energy    float64
	FoodEaten int
	Traits    components.Traits
}

// FoodState is a value snapshot of one food item.
type FoodState struct {
	Position components.Position
	Eaten    bool
}

// DayOutcome summarizes an end-of-day update.
type DayOutcome struct {
	Survivors int
	Deaths    int
	Births    int
	Died      []components.Lineage // lineage of every agent removed, in population order
	Parents   []uint32             // parent ID of every child born, in birth order
	Children  []components.Lineage
}

// Environment holds the simulation world.
// Agent and food iteration order is the order of the agents and foods slices;
// ECS storage order is never relied on.
type Environment struct {
	cfg    *config.Config
	rng    *rand.Rand
	policy systems.MatchPolicy

	world    *ecs.World
	agentMap *ecs.Map4[components.Position, components.Forager, components.Traits, components.Lineage]
	foodMap  *ecs.Map2[components.Position, components.Food]
	eatenMap *ecs.Map1[components.Food]

	agents []ecs.Entity
	foods  []ecs.Entity
	grid   *systems.FoodGrid

	nextID uint32
	eaten  int // food eaten since the last purge
}

// New creates an environment populated per config: food first, then founders.
// cfg must have passed Validate.
func New(cfg *config.Config, rng *rand.Rand) *Environment {
	env := NewEmpty(cfg, rng)
	env.spawnFoods(cfg.Population.Foods)
	for i := 0; i < cfg.Population.Agents; i++ {
		env.AddAgent(systems.EdgePlacement(cfg.World.GridSize, rng), systems.FounderTraits(cfg.Agent))
	}
	return env
}

// NewEmpty creates an environment with no food and no agents.
func NewEmpty(cfg *config.Config, rng *rand.Rand) *Environment {
	world := ecs.NewWorld()
	policy, err := systems.ParseMatchPolicy(cfg.Feeding.Policy)
	if err != nil {
		policy = systems.MatchFirst
	}

	return &Environment{
		cfg:      cfg,
		rng:      rng,
		policy:   policy,
		world:    world,
		agentMap: ecs.NewMap4[components.Position, components.Forager, components.Traits, components.Lineage](world),
		foodMap:  ecs.NewMap2[components.Position, components.Food](world),
		eatenMap: ecs.NewMap1[components.Food](world),
		grid:     systems.NewFoodGrid(cfg.World.GridSize, cfg.World.EatingThreshold),
		nextID:   1,
	}
}

// Config returns the configuration the environment was built with.
func (env *Environment) Config() *config.Config {
	return env.cfg
}

// Agents returns the live agents in population order.
// The slice is owned by the environment and valid until the next update.
func (env *Environment) Agents() []ecs.Entity {
	return env.agents
}

// Foods returns the active food in iteration order.
func (env *Environment) Foods() []ecs.Entity {
	return env.foods
}

// NumAgents returns the current population size.
func (env *Environment) NumAgents() int {
	return len(env.agents)
}

// NumFoods returns the number of active food items.
func (env *Environment) NumFoods() int {
	return len(env.foods)
}

// Agent returns the components of an agent. Pointers are invalidated by any
// entity creation or removal.
func (env *Environment) Agent(e ecs.Entity) (*components.Position, *components.Forager, *components.Traits, *components.Lineage) {
	return env.agentMap.Get(e)
}

// FoodAt returns the components of a food item.
func (env *Environment) FoodAt(e ecs.Entity) (*components.Position, *components.Food) {
	return env.foodMap.Get(e)
}

// AddAgent places a founder at pos with the given traits and returns it.
func (env *Environment) AddAgent(pos components.Position, traits components.Traits) ecs.Entity {
	lin := components.Lineage{ID: env.takeID()}
	return env.spawnAgent(pos, traits, lin)
}

// AddFood places an unconsumed food item at pos and returns it.
func (env *Environment) AddFood(pos components.Position) ecs.Entity {
	food := components.Food{}
	e := env.foodMap.NewEntity(&pos, &food)
	env.grid.Insert(e, len(env.foods), pos.X, pos.Y)
	env.foods = append(env.foods, e)
	return e
}

// MoveAgent performs one random step for agent e.
func (env *Environment) MoveAgent(e ecs.Entity) systems.Axis {
	pos, forager, traits, _ := env.agentMap.Get(e)
	return systems.Move(pos, forager, *traits, env.cfg.World.GridSize, env.rng)
}

// Feed lets agent e eat at most one unconsumed food within reach. The food is
// flagged eaten immediately, so no other agent can match it, and leaves the
// active set at the next PurgeEaten.
func (env *Environment) Feed(e ecs.Entity) bool {
	pos, forager, _, _ := env.agentMap.Get(e)

	food, ok := env.grid.Match(pos.X, pos.Y, env.cfg.World.EatingThreshold, env.policy, env.isEaten)
	if !ok {
		return false
	}

	env.eatenMap.Get(food).Eaten = true
	forager.FoodEaten++
	env.eaten++
	return true
}

func (env *Environment) isEaten(e ecs.Entity) bool {
	return env.eatenMap.Get(e).Eaten
}

// PurgeEaten removes consumed food from the active set and returns how many
// were removed.
func (env *Environment) PurgeEaten() int {
	if env.eaten == 0 {
		return 0
	}

	kept := env.foods[:0]
	removed := 0
	for _, e := range env.foods {
		if env.isEaten(e) {
			env.world.RemoveEntity(e)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	env.foods = kept
	env.eaten = 0
	env.rebuildGrid()
	return removed
}

// DayOver reports whether the day's step loop should stop.
func (env *Environment) DayOver() bool {
	return len(env.foods) == 0 || len(env.agents) == 0
}

// EndOfDay applies the day's verdicts: food is regenerated, dead agents are
// removed, survivors are reset and every survivor that ate at least the
// reproduction threshold spawns one child. The next population is the
// survivors in their previous order followed by the children in parent order.
func (env *Environment) EndOfDay(day int) DayOutcome {
	env.clearFoods()
	env.spawnFoods(env.cfg.Population.Foods)

	var out DayOutcome
	survivors := env.agents[:0]
	var parents []components.Lineage
	var parentTraits []components.Traits

	for _, e := range env.agents {
		_, forager, traits, lin := env.agentMap.Get(e)
		if systems.IsDead(*forager) {
			out.Died = append(out.Died, *lin)
			env.world.RemoveEntity(e)
			continue
		}
		if systems.CanReproduce(*forager, env.cfg.Reproduction.FoodThreshold) {
			// Value copies: the child never references the parent entity
			parents = append(parents, *lin)
			parentTraits = append(parentTraits, *traits)
		}
		survivors = append(survivors, e)
	}
	env.agents = survivors

	for _, e := range env.agents {
		pos, forager, traits, _ := env.agentMap.Get(e)
		systems.ResetForager(pos, forager, *traits)
	}

	for i, parent := range parents {
		traits := systems.InheritTraits(parentTraits[i], env.cfg.Mutation.Multipliers, env.rng)
		pos := systems.EdgePlacement(env.cfg.World.GridSize, env.rng)
		lin := systems.ChildLineage(env.takeID(), parent, day)
		env.spawnAgent(pos, traits, lin)
		out.Parents = append(out.Parents, parent.ID)
		out.Children = append(out.Children, lin)
	}

	out.Survivors = len(survivors)
	out.Deaths = len(out.Died)
	out.Births = len(parents)
	return out
}

// ResetAgents applies the morning reset to every live agent.
func (env *Environment) ResetAgents() {
	for _, e := range env.agents {
		pos, forager, traits, _ := env.agentMap.Get(e)
		systems.ResetForager(pos, forager, *traits)
	}
}

// AgentStates returns value snapshots of the population in order.
func (env *Environment) AgentStates() []AgentState {
	states := make([]AgentState, len(env.agents))
	for i, e := range env.agents {
		pos, forager, traits, lin := env.agentMap.Get(e)
		states[i] = AgentState{
			Lineage:   *lin,
			Position:  *pos,
			Home:      forager.Home,
			Energy:    forager.Energy,
			FoodEaten: forager.FoodEaten,
			Traits:    *traits,
		}
	}
	return states
}

// FoodStates returns value snapshots of the active food in order.
func (env *Environment) FoodStates() []FoodState {
	states := make([]FoodState, len(env.foods))
	for i, e := range env.foods {
		pos, food := env.foodMap.Get(e)
		states[i] = FoodState{Position: *pos, Eaten: food.Eaten}
	}
	return states
}

// TraitSamples returns the speed, size and sense of every live agent.
func (env *Environment) TraitSamples() (speed, size, sense []float64) {
	filter := ecs.NewFilter1[components.Traits](env.world)
	query := filter.Query()
	n := query.Count()
	speed = make([]float64, 0, n)
	size = make([]float64, 0, n)
	sense = make([]float64, 0, n)
	for query.Next() {
		t := query.Get()
		speed = append(speed, t.Speed)
		size = append(size, t.Size)
		sense = append(sense, t.Sense)
	}
	return speed, size, sense
}

func (env *Environment) spawnAgent(pos components.Position, traits components.Traits, lin components.Lineage) ecs.Entity {
	forager := systems.NewForager(pos, traits)
	e := env.agentMap.NewEntity(&pos, &forager, &traits, &lin)
	env.agents = append(env.agents, e)
	return e
}

func (env *Environment) spawnFoods(n int) {
	for i := 0; i < n; i++ {
		env.AddFood(systems.UniformPlacement(env.cfg.World.GridSize, env.rng))
	}
}

func (env *Environment) clearFoods() {
	for _, e := range env.foods {
		env.world.RemoveEntity(e)
	}
	env.foods = env.foods[:0]
	env.eaten = 0
	env.grid.Clear()
}

func (env *Environment) clearAgents() {
	for _, e := range env.agents {
		env.world.RemoveEntity(e)
	}
	env.agents = env.agents[:0]
}

func (env *Environment) rebuildGrid() {
	env.grid.Clear()
	for i, e := range env.foods {
		pos, _ := env.foodMap.Get(e)
		env.grid.Insert(e, i, pos.X, pos.Y)
	}
}

func (env *Environment) takeID() uint32 {
	id := env.nextID
	env.nextID++
	return id
}
