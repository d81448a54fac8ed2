package telemetry

import "github.com/pthm-cable/forage/components"

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	BirthDay   int
	ParentID   uint32
	Generation int

	DaysLived int // days completed, survived or not
	FoodTotal int
	BestDay   int // most food eaten in one day
	Children  int
}

// LifetimeTracker manages per-agent lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new agent.
func (lt *LifetimeTracker) Register(lin components.Lineage) {
	lt.stats[lin.ID] = &LifetimeStats{
		BirthDay:   lin.BirthDay,
		ParentID:   lin.ParentID,
		Generation: lin.Generation,
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an agent's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// Len returns the number of tracked agents.
func (lt *LifetimeTracker) Len() int {
	return len(lt.stats)
}

// RecordDay adds one completed day with the food the agent ate in it.
func (lt *LifetimeTracker) RecordDay(id uint32, foodEaten int) {
	if s := lt.stats[id]; s != nil {
		s.DaysLived++
		s.FoodTotal += foodEaten
		if foodEaten > s.BestDay {
			s.BestDay = foodEaten
		}
	}
}

// RecordChild increments the parent's child count.
func (lt *LifetimeTracker) RecordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}
