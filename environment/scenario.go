package environment

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/systems"
)

// Scenario entry kinds.
const (
	KindFood  = "food"
	KindAgent = "agent"
)

// ScenarioEntry is one row of a scenario file: an entity kind and its position.
type ScenarioEntry struct {
	Kind string  `csv:"kind"`
	X    float64 `csv:"x"`
	Y    float64 `csv:"y"`
}

// ReadScenario parses scenario rows from CSV with a kind,x,y header.
func ReadScenario(r io.Reader) ([]ScenarioEntry, error) {
	var rows []ScenarioEntry
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return rows, nil
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) ([]ScenarioEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()
	return ReadScenario(f)
}

// Seed replaces the current food and agents with the scenario's entities, in
// file order. Agents are founders with baseline traits. Only the first day is
// affected; food is regenerated randomly at the end of it as usual.
func (env *Environment) Seed(entries []ScenarioEntry) error {
	size := env.cfg.World.GridSize
	var errs []error
	for i, entry := range entries {
		if entry.Kind != KindFood && entry.Kind != KindAgent {
			errs = append(errs, fmt.Errorf("row %d: unknown kind %q", i+1, entry.Kind))
		}
		if entry.X < 0 || entry.X > size || entry.Y < 0 || entry.Y > size {
			errs = append(errs, fmt.Errorf("row %d: position (%v, %v) outside [0, %v]", i+1, entry.X, entry.Y, size))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}

	env.clearFoods()
	env.clearAgents()

	founder := systems.FounderTraits(env.cfg.Agent)
	for _, entry := range entries {
		pos := components.Position{X: entry.X, Y: entry.Y}
		if entry.Kind == KindFood {
			env.AddFood(pos)
		} else {
			env.AddAgent(pos, founder)
		}
	}
	return nil
}
