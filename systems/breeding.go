package systems

import (
	"math/rand"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
)

// FounderTraits returns the population baseline traits from config.
func FounderTraits(cfg config.AgentConfig) components.Traits {
	return components.Traits{
		BaseEnergy: cfg.BaseEnergy,
		Speed:      cfg.Speed,
		Size:       cfg.Size,
		Sense:      cfg.Sense,
	}
}

// InheritTraits derives a child's traits from its parent. Speed, size and
// sense are each scaled by an independent uniform draw from multipliers.
// BaseEnergy is copied unchanged.
func InheritTraits(parent components.Traits, multipliers []float64, rng *rand.Rand) components.Traits {
	speed := parent.Speed * pickMultiplier(multipliers, rng)
	size := parent.Size * pickMultiplier(multipliers, rng)
	sense := parent.Sense * pickMultiplier(multipliers, rng)

	return components.Traits{
		BaseEnergy: parent.BaseEnergy,
		Speed:      speed,
		Size:       size,
		Sense:      sense,
	}
}

func pickMultiplier(multipliers []float64, rng *rand.Rand) float64 {
	if len(multipliers) == 0 {
		return 1
	}
	return multipliers[rng.Intn(len(multipliers))]
}

// CanReproduce reports whether a surviving agent ate enough today to spawn a child.
func CanReproduce(f components.Forager, threshold int) bool {
	return f.FoodEaten >= threshold
}

// ChildLineage returns the lineage record of a child born at the end of day.
func ChildLineage(id uint32, parent components.Lineage, day int) components.Lineage {
	return components.Lineage{
		ID:         id,
		ParentID:   parent.ID,
		Generation: parent.Generation + 1,
		BirthDay:   day,
	}
}
