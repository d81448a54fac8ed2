package systems

import "github.com/pthm-cable/forage/components"

// IsDead reports the end-of-day verdict: an agent dies if it ate nothing or
// ran out of energy. Either condition alone is sufficient.
func IsDead(f components.Forager) bool {
	return f.FoodEaten == 0 || f.Energy <= 0
}

// ResetForager prepares a survivor for the next day: counters cleared, energy
// restored to the trait baseline and position returned home. Idempotent.
func ResetForager(pos *components.Position, f *components.Forager, t components.Traits) {
	f.FoodEaten = 0
	f.Energy = t.BaseEnergy
	*pos = f.Home
}

// NewForager returns the foraging state of an agent placed at home.
func NewForager(home components.Position, t components.Traits) components.Forager {
	return components.Forager{
		Home:   home,
		Energy: t.BaseEnergy,
	}
}
