package main

import (
	"github.com/pthm-cable/forage/config"
)

// Param is one founder trait the optimizer may set.
type Param struct {
	Name     string
	Min, Max float64

	field func(cfg *config.Config) *float64
}

// ParamVector maps between optimizer space, where every trait lies in [0, 1],
// and config values.
type ParamVector struct {
	Params []Param
}

// NewParamVector returns the searchable founder traits. Base energy is not
// searched: it is either unbounded or a fixed budget set by the base config.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Params: []Param{
			{Name: "agent.speed", Min: 0.1, Max: 3.0, field: func(c *config.Config) *float64 { return &c.Agent.Speed }},
			{Name: "agent.size", Min: 1.0, Max: 4.0, field: func(c *config.Config) *float64 { return &c.Agent.Size }},
			{Name: "agent.sense", Min: 0.0, Max: 2.0, field: func(c *config.Config) *float64 { return &c.Agent.Sense }},
		},
	}
}

// Dim returns the search dimension.
func (pv *ParamVector) Dim() int {
	return len(pv.Params)
}

// Normalize maps config values into [0, 1] per trait bounds.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Params))
	for i, p := range pv.Params {
		out[i] = (raw[i] - p.Min) / (p.Max - p.Min)
	}
	return out
}

// Denormalize maps optimizer coordinates back to config values.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	out := make([]float64, len(pv.Params))
	for i, p := range pv.Params {
		out[i] = p.Min + unit[i]*(p.Max-p.Min)
	}
	return out
}

// Clamp bounds every value to its trait range. CMA-ES samples are unbounded.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Params))
	for i, p := range pv.Params {
		out[i] = min(max(v[i], p.Min), p.Max)
	}
	return out
}

// ApplyToConfig writes clamped values into cfg and refreshes derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Params[i].field(cfg) = v
	}
	cfg.ComputeDerived()
}

// ExtractFromConfig reads the current trait values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Params))
	for i, p := range pv.Params {
		out[i] = *p.field(cfg)
	}
	return out
}
