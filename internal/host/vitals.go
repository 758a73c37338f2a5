// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package host

import (
	"math"
	"sort"
)

// AttributeName identifies a simulated vital statistic.
type AttributeName string

// Vital attributes tracked for every player.
const (
	Health          AttributeName = "health"
	Bleeding        AttributeName = "bleeding"
	Calories        AttributeName = "calories"
	Comfort         AttributeName = "comfort"
	Dirtyness       AttributeName = "dirtyness"
	HeartRate       AttributeName = "heartrate"
	Hydration       AttributeName = "hydration"
	Oxygen          AttributeName = "oxygen"
	Poison          AttributeName = "poison"
	RadiationLevel  AttributeName = "radiation_level"
	RadiationPoison AttributeName = "radiation_poison"
	Temperature     AttributeName = "temperature"
	Wetness         AttributeName = "wetness"
)

// Attribute is a bounded value. Value is always kept within [Min, Max].
type Attribute struct {
	Min   float64
	Max   float64
	Value float64
}

// SetMin moves the lower bound and re-clamps the value.
func (a *Attribute) SetMin(v float64) {
	a.Min = v
	a.clamp()
}

// SetMax moves the upper bound and re-clamps the value.
func (a *Attribute) SetMax(v float64) {
	a.Max = v
	a.clamp()
}

// SetValue sets the value, clamped to the current bounds. NaN is ignored.
func (a *Attribute) SetValue(v float64) {
	if math.IsNaN(v) {
		return
	}
	a.Value = v
	a.clamp()
}

// Add shifts the value by delta, clamped to the current bounds.
func (a *Attribute) Add(delta float64) {
	a.SetValue(a.Value + delta)
}

// clamp keeps Value within bounds. A lower bound above the upper bound wins
// and a NaN value falls to the lower bound.
func (a *Attribute) clamp() {
	if math.IsNaN(a.Value) {
		a.Value = a.Min
	}
	if a.Value > a.Max {
		a.Value = a.Max
	}
	if a.Value < a.Min {
		a.Value = a.Min
	}
}

// Vitals is the set of a player's vital attributes.
type Vitals struct {
	attrs map[AttributeName]*Attribute
}

// NewVitals returns vitals at the host's spawn defaults.
func NewVitals() *Vitals {
	return &Vitals{attrs: map[AttributeName]*Attribute{
		Health:          {Min: 0, Max: 100, Value: 100},
		Bleeding:        {Min: 0, Max: 1, Value: 0},
		Calories:        {Min: 0, Max: 500, Value: 250},
		Comfort:         {Min: 0, Max: 1, Value: 0},
		Dirtyness:       {Min: 0, Max: 100, Value: 0},
		HeartRate:       {Min: 0, Max: 1, Value: 0.5},
		Hydration:       {Min: 0, Max: 250, Value: 150},
		Oxygen:          {Min: 0, Max: 1, Value: 1},
		Poison:          {Min: 0, Max: 100, Value: 0},
		RadiationLevel:  {Min: 0, Max: 100, Value: 0},
		RadiationPoison: {Min: 0, Max: 500, Value: 0},
		Temperature:     {Min: -100, Max: 100, Value: 20},
		Wetness:         {Min: 0, Max: 1, Value: 0},
	}}
}

// Get returns the named attribute, creating an unbounded zero attribute for
// names the host does not know about.
func (v *Vitals) Get(name AttributeName) *Attribute {
	a, ok := v.attrs[name]
	if !ok {
		a = &Attribute{}
		v.attrs[name] = a
	}
	return a
}

// Names returns the attribute names in sorted order.
func (v *Vitals) Names() []AttributeName {
	names := make([]AttributeName, 0, len(v.attrs))
	for name := range v.attrs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Endurance decay rates per simulated second.
const (
	caloriesDecayPerSecond  = 0.05
	hydrationDecayPerSecond = 0.1

	// exhaustionThreshold is the calories or hydration level below which the
	// player can no longer sprint.
	exhaustionThreshold = 20
)

// Decay applies the default endurance loss for dt seconds and reports
// whether the player is now exhausted.
func (v *Vitals) Decay(dt float64) (exhausted bool) {
	calories := v.Get(Calories)
	hydration := v.Get(Hydration)
	calories.Add(-caloriesDecayPerSecond * dt)
	hydration.Add(-hydrationDecayPerSecond * dt)
	return calories.Value < exhaustionThreshold || hydration.Value < exhaustionThreshold
}
