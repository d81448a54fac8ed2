// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Feeding policies for resolving several foods within reach of one agent.
const (
	PolicyFirst   = "first"   // first food in iteration order wins
	PolicyNearest = "nearest" // closest food wins, ties broken by iteration order
)

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Population   PopulationConfig   `yaml:"population"`
	Agent        AgentConfig        `yaml:"agent"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Feeding      FeedingConfig      `yaml:"feeding"`
	Simulation   SimulationConfig   `yaml:"simulation"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and reach.
type WorldConfig struct {
	GridSize        float64 `yaml:"grid_size"`        // Side length of the square grid
	EatingThreshold float64 `yaml:"eating_threshold"` // Max center distance (exclusive) at which food is reached
}

// PopulationConfig holds initial entity counts.
type PopulationConfig struct {
	Agents int `yaml:"agents"` // Founders placed at initialization
	Foods  int `yaml:"foods"`  // Food items placed at the start of every day
}

// AgentConfig holds the founder trait baseline.
type AgentConfig struct {
	BaseEnergy float64 `yaml:"base_energy"` // Energy at day start; .inf disables energy death
	Speed      float64 `yaml:"speed"`       // Step length per move
	Size       float64 `yaml:"size"`        // Body size; cost grows with size cubed
	Sense      float64 `yaml:"sense"`       // Heritable, adds a flat per-step cost
}

// MutationConfig holds trait inheritance parameters.
type MutationConfig struct {
	Multipliers []float64 `yaml:"multipliers"` // Per-trait factor drawn uniformly at each birth
}

// ReproductionConfig holds reproduction parameters.
type ReproductionConfig struct {
	FoodThreshold int `yaml:"food_threshold"` // Food eaten in one day required to spawn a child
}

// FeedingConfig holds food matching parameters.
type FeedingConfig struct {
	Policy string `yaml:"policy"`
}

// SimulationConfig holds run length parameters.
type SimulationConfig struct {
	Days           int `yaml:"days"`
	MaxStepsPerDay int `yaml:"max_steps_per_day"` // 0 = unlimited
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogDays bool `yaml:"log_days"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	EnergyUnbounded bool // Agent.BaseEnergy is +Inf; agents die only of hunger
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate reports every parameter that would make the simulation ill-defined.
// Degenerate but well-defined settings (zero agents, zero food, a non-positive
// eating threshold) are accepted; they simply lead to extinction.
func (c *Config) Validate() error {
	var errs []error
	if !(c.World.GridSize > 0) || math.IsInf(c.World.GridSize, 0) {
		errs = append(errs, fmt.Errorf("world.grid_size must be positive and finite, got %v", c.World.GridSize))
	}
	if math.IsNaN(c.World.EatingThreshold) {
		errs = append(errs, errors.New("world.eating_threshold is NaN"))
	}
	if c.Population.Agents < 0 {
		errs = append(errs, fmt.Errorf("population.agents must be >= 0, got %d", c.Population.Agents))
	}
	if c.Population.Foods < 0 {
		errs = append(errs, fmt.Errorf("population.foods must be >= 0, got %d", c.Population.Foods))
	}
	if math.IsNaN(c.Agent.BaseEnergy) {
		errs = append(errs, errors.New("agent.base_energy is NaN"))
	}
	if !(c.Agent.Speed > 0) {
		errs = append(errs, fmt.Errorf("agent.speed must be positive, got %v", c.Agent.Speed))
	}
	if !(c.Agent.Size >= 1) {
		errs = append(errs, fmt.Errorf("agent.size must be >= 1, got %v", c.Agent.Size))
	}
	if !(c.Agent.Sense >= 0) {
		errs = append(errs, fmt.Errorf("agent.sense must be >= 0, got %v", c.Agent.Sense))
	}
	if len(c.Mutation.Multipliers) == 0 {
		errs = append(errs, errors.New("mutation.multipliers must not be empty"))
	}
	for i, m := range c.Mutation.Multipliers {
		if !(m > 0) {
			errs = append(errs, fmt.Errorf("mutation.multipliers[%d] must be positive, got %v", i, m))
		}
	}
	if c.Reproduction.FoodThreshold < 1 {
		errs = append(errs, fmt.Errorf("reproduction.food_threshold must be >= 1, got %d", c.Reproduction.FoodThreshold))
	}
	switch c.Feeding.Policy {
	case PolicyFirst, PolicyNearest:
	default:
		errs = append(errs, fmt.Errorf("feeding.policy must be %q or %q, got %q", PolicyFirst, PolicyNearest, c.Feeding.Policy))
	}
	if c.Simulation.Days < 1 {
		errs = append(errs, fmt.Errorf("simulation.days must be >= 1, got %d", c.Simulation.Days))
	}
	if c.Simulation.MaxStepsPerDay < 0 {
		errs = append(errs, fmt.Errorf("simulation.max_steps_per_day must be >= 0, got %d", c.Simulation.MaxStepsPerDay))
	}
	return errors.Join(errs...)
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after changing fields programmatically.
func (c *Config) ComputeDerived() {
	c.Derived.EnergyUnbounded = math.IsInf(c.Agent.BaseEnergy, 1)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Mutation.Multipliers = append([]float64(nil), c.Mutation.Multipliers...)
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
