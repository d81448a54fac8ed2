// Package simulation drives day cycles over an Environment.
package simulation

import (
	"time"

	"github.com/pthm-cable/forage/environment"
)

// DayState is the state of a DayLoop.
type DayState uint8

const (
	StateRunning DayState = iota // stepping
	StateDone                    // terminal; end-of-day update pending or applied
)

func (s DayState) String() string {
	if s == StateRunning {
		return "running"
	}
	return "done"
}

// DayReport describes one completed day.
type DayReport struct {
	Day       int
	Steps     int
	FoodEaten int
	Truncated bool // stopped by max_steps_per_day rather than by the environment
	Outcome   environment.DayOutcome
}

// DayLoop steps every agent until the day ends, then applies the
// environment's end-of-day update. A day always runs to completion inside Run.
type DayLoop struct {
	env      *environment.Environment
	maxSteps int

	state     DayState
	steps     int
	eaten     int
	truncated bool

	// OnStep, if set, observes the environment after every step.
	OnStep func(env *environment.Environment, step int)
	// BeforeUpdate, if set, observes the environment after the last step and
	// before the end-of-day update resets it.
	BeforeUpdate func(env *environment.Environment)
	// Perf, if set, receives phase timings.
	Perf *PerfStats
}

// NewDayLoop creates a day loop over env using its configured step cap.
func NewDayLoop(env *environment.Environment) *DayLoop {
	return &DayLoop{
		env:      env,
		maxSteps: env.Config().Simulation.MaxStepsPerDay,
		state:    StateDone,
	}
}

// State returns the current loop state.
func (d *DayLoop) State() DayState {
	return d.state
}

// Steps returns the number of steps taken in the current day.
func (d *DayLoop) Steps() int {
	return d.steps
}

// Begin starts a new day. A day with no food or no agents is over before its
// first step.
func (d *DayLoop) Begin() {
	d.steps = 0
	d.eaten = 0
	d.truncated = false
	d.state = StateRunning
	if d.env.DayOver() {
		d.state = StateDone
	}
}

// Step performs one transition. Every agent, in population order, moves and
// then tries to eat; consumed food is purged after the whole pass and the
// termination condition is tested.
func (d *DayLoop) Step() DayState {
	if d.state == StateDone {
		return d.state
	}

	start := time.Now()
	for _, e := range d.env.Agents() {
		d.env.MoveAgent(e)
		if d.env.Feed(e) {
			d.eaten++
		}
	}
	d.Perf.Record(PhaseForage, time.Since(start))

	start = time.Now()
	d.env.PurgeEaten()
	d.Perf.Record(PhasePurge, time.Since(start))
	d.steps++

	if d.OnStep != nil {
		d.OnStep(d.env, d.steps)
	}

	switch {
	case d.env.DayOver():
		d.state = StateDone
	case d.maxSteps > 0 && d.steps >= d.maxSteps:
		d.state = StateDone
		d.truncated = true
	}
	return d.state
}

// Run plays one full day and applies the end-of-day update.
func (d *DayLoop) Run(day int) DayReport {
	d.Begin()
	for d.state == StateRunning {
		d.Step()
	}

	if d.BeforeUpdate != nil {
		d.BeforeUpdate(d.env)
	}
	start := time.Now()
	outcome := d.env.EndOfDay(day)
	d.Perf.Record(PhaseEndOfDay, time.Since(start))

	return DayReport{
		Day:       day,
		Steps:     d.steps,
		FoodEaten: d.eaten,
		Truncated: d.truncated,
		Outcome:   outcome,
	}
}
