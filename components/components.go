// Package components defines ECS components for the simulation.
package components

// Position represents an entity's grid position.
type Position struct {
	X, Y float64
}

// Traits holds the heritable parameters of an agent.
// Immutable once the agent exists; children get a mutated copy.
type Traits struct {
	BaseEnergy float64 // Not mutated; restored every day
	Speed      float64 // Step length
	Size       float64 // Configured as an integer, fractional after mutation
	Sense      float64 // Flat per-step cost; no perceptual effect
}

// Forager holds an agent's per-day foraging state.
type Forager struct {
	Home      Position // Position the agent returns to every morning
	Energy    float64  // Non-increasing within a day
	FoodEaten int      // Non-decreasing within a day
}

// Food marks a consumable item.
type Food struct {
	Eaten bool
}

// Lineage holds identity and ancestry.
// ParentID is a copy taken at birth; no reference to the parent is kept.
type Lineage struct {
	ID         uint32
	ParentID   uint32 // 0 for founders
	Generation int    // 0 for founders
	BirthDay   int
}

// IsFounder reports whether the agent was created without a parent.
func (l Lineage) IsFounder() bool {
	return l.ParentID == 0
}
