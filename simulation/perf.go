package simulation

import (
	"cmp"
	"log/slog"
	"slices"
	"time"
)

// Phase names recorded by DayLoop.
const (
	PhaseForage   = "forage"     // move and feed pass over all agents
	PhasePurge    = "purge"      // removal of eaten food
	PhaseEndOfDay = "end_of_day" // deaths, resets and births
)

// PerfStats tracks execution time per phase over a rolling window of samples.
// A nil *PerfStats records nothing.
type PerfStats struct {
	samples    map[string][]time.Duration
	maxSamples int
}

// NewPerfStats creates a tracker keeping the last window samples per phase.
func NewPerfStats(window int) *PerfStats {
	return &PerfStats{
		samples:    make(map[string][]time.Duration),
		maxSamples: max(window, 1),
	}
}

// Record adds a duration sample for the named phase.
func (p *PerfStats) Record(phase string, d time.Duration) {
	if p == nil {
		return
	}
	s := append(p.samples[phase], d)
	if len(s) > p.maxSamples {
		s = s[len(s)-p.maxSamples:]
	}
	p.samples[phase] = s
}

// Count returns how many samples are held for the phase.
func (p *PerfStats) Count(phase string) int {
	if p == nil {
		return 0
	}
	return len(p.samples[phase])
}

// Avg returns the average duration for the named phase.
func (p *PerfStats) Avg(phase string) time.Duration {
	if p == nil {
		return 0
	}
	s := p.samples[phase]
	if len(s) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total / time.Duration(len(s))
}

// Total returns the sum of all phase averages.
func (p *PerfStats) Total() time.Duration {
	var total time.Duration
	for _, phase := range p.Phases() {
		total += p.Avg(phase)
	}
	return total
}

// Phases returns phase names sorted by average duration, slowest first.
func (p *PerfStats) Phases() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.samples))
	for name := range p.samples {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(p.Avg(b), p.Avg(a)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return names
}

// LogValue implements slog.LogValuer.
func (p *PerfStats) LogValue() slog.Value {
	phases := p.Phases()
	attrs := make([]slog.Attr, 0, len(phases)+1)
	attrs = append(attrs, slog.Duration("total", p.Total()))
	for _, phase := range phases {
		attrs = append(attrs, slog.Duration(phase, p.Avg(phase)))
	}
	return slog.GroupValue(attrs...)
}
